// services/deadline_service.go - Scheduled deadline sweeps
package services

import (
	"fmt"
	"log"
	"time"
	"worktrack/models"

	"gorm.io/gorm"
)

type DeadlineService struct {
	db     *gorm.DB
	notify *NotificationService
}

func NewDeadlineService(db *gorm.DB) *DeadlineService {
	return &DeadlineService{db: db, notify: NewNotificationService(db)}
}

// CheckDeadlines warns assignees of open tasks due within 24 hours and
// flags overdue ones. Overdue alerts are sent at most once per day per
// task; the approaching-deadline warning repeats on every sweep.
func (s *DeadlineService) CheckDeadlines() error {
	now := time.Now().UTC()
	tomorrow := now.Add(24 * time.Hour)
	openStatuses := []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusDoing}

	var upcoming []models.Task
	if err := s.db.Where("deadline <= ? AND deadline > ? AND status IN ?", tomorrow, now, openStatuses).
		Find(&upcoming).Error; err != nil {
		return err
	}
	for i := range upcoming {
		task := &upcoming[i]
		if task.AssigneeID == nil {
			continue
		}
		s.notify.Notify(*task.AssigneeID,
			fmt.Sprintf("Task deadline approaching: %s", task.Title),
			fmt.Sprintf("Task '%s' is due within 24 hours", task.Title),
			models.NotificationTaskDeadlineSoon,
			NotifyOptions{TaskID: &task.ID, Important: true})
	}

	var overdue []models.Task
	if err := s.db.Where("deadline < ? AND status IN ?", now, openStatuses).Find(&overdue).Error; err != nil {
		return err
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := range overdue {
		task := &overdue[i]
		if task.AssigneeID == nil {
			continue
		}

		var alreadySent int64
		s.db.Model(&models.Notification{}).
			Where("user_id = ? AND task_id = ? AND type = ? AND created_at >= ?",
				*task.AssigneeID, task.ID, models.NotificationTaskOverdue, todayStart).
			Count(&alreadySent)
		if alreadySent > 0 {
			continue
		}

		s.notify.Notify(*task.AssigneeID,
			fmt.Sprintf("Task overdue: %s", task.Title),
			fmt.Sprintf("Task '%s' is overdue", task.Title),
			models.NotificationTaskOverdue,
			NotifyOptions{TaskID: &task.ID, Important: true})
	}

	return nil
}

// CleanupOldNotifications deletes notifications older than 30 days.
func (s *DeadlineService) CleanupOldNotifications() error {
	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	log.Printf("🧹 Cleaned up %d old notifications", result.RowsAffected)
	return nil
}
