// models/join_request.go
package models

import (
	"time"
)

// JoinRequestStatus is the closed set of join-request states.
// A request starts pending and transitions exactly once to approved
// or rejected.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

func (s JoinRequestStatus) Valid() bool {
	switch s {
	case JoinRequestPending, JoinRequestApproved, JoinRequestRejected:
		return true
	}
	return false
}

type JoinRequest struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       uint              `gorm:"not null;index" json:"user_id"`
	GroupID      uint              `gorm:"not null;index" json:"group_id"`
	Status       JoinRequestStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	Message      string            `json:"message"`
	AdminMessage string            `json:"admin_message"`

	ProcessedByID *uint      `json:"processed_by_id"`
	ProcessedAt   *time.Time `json:"processed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User        User  `gorm:"foreignKey:UserID" json:"-"`
	Group       Group `gorm:"foreignKey:GroupID" json:"-"`
	ProcessedBy *User `gorm:"foreignKey:ProcessedByID" json:"-"`
}

func (JoinRequest) TableName() string {
	return "join_requests"
}
