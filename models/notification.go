// models/notification.go
package models

import (
	"time"
)

// NotificationType is the closed set of notification categories.
type NotificationType string

const (
	NotificationTaskAssigned       NotificationType = "task_assigned"
	NotificationTaskUpdated        NotificationType = "task_updated"
	NotificationTaskCompleted      NotificationType = "task_completed"
	NotificationTaskOverdue        NotificationType = "task_overdue"
	NotificationTaskDeadlineSoon   NotificationType = "task_deadline_soon"
	NotificationGroupJoined        NotificationType = "group_joined"
	NotificationGroupRemoved       NotificationType = "group_removed"
	NotificationGroupJoinRequest   NotificationType = "group_join_request"
	NotificationGroupJoinApproved  NotificationType = "group_join_approved"
	NotificationGroupJoinRejected  NotificationType = "group_join_rejected"
	NotificationRoleChanged        NotificationType = "role_changed"
	NotificationReportGenerated    NotificationType = "report_generated"
	NotificationSystemAnnouncement NotificationType = "system_announcement"
)

type Notification struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	UserID  uint             `gorm:"not null;index" json:"user_id"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `gorm:"not null" json:"message"`
	Type    NotificationType `gorm:"type:varchar(40);not null" json:"type"`

	// At most one of these context references is set.
	TaskID   *uint `json:"task_id"`
	GroupID  *uint `json:"group_id"`
	ReportID *uint `json:"report_id"`

	IsRead      bool `gorm:"default:false" json:"is_read"`
	IsImportant bool `gorm:"default:false" json:"is_important"`

	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
