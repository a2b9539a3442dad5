// services/notification_service.go - Notification issuing and queries
package services

import (
	"errors"
	"time"
	"worktrack/models"

	"gorm.io/gorm"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotifyOptions carries the optional context references for a
// notification. At most one of the ids is expected to be set.
type NotifyOptions struct {
	TaskID    *uint
	GroupID   *uint
	ReportID  *uint
	Important bool
}

// Notify inserts one notification row synchronously. It is invoked
// inline by the workflows; failures are returned, never retried.
func (s *NotificationService) Notify(userID uint, title, message string, typ models.NotificationType, opts NotifyOptions) (*models.Notification, error) {
	n := &models.Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Type:        typ,
		TaskID:      opts.TaskID,
		GroupID:     opts.GroupID,
		ReportID:    opts.ReportID,
		IsImportant: opts.Important,
	}
	if err := s.db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// List returns a page of the user's notifications plus totals.
func (s *NotificationService) List(userID uint, limit, offset int, unreadOnly bool) ([]models.Notification, int64, int64, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return nil, 0, 0, err
	}

	var unread int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, 0, 0, err
	}

	return notifications, total, unread, nil
}

// MarkRead flips one notification to read and stamps read_at.
func (s *NotificationService) MarkRead(notificationID uint) *Error {
	var n models.Notification
	if err := s.db.First(&n, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Notification not found")
		}
		return Internal("Error loading notification: %v", err)
	}

	now := time.Now().UTC()
	n.IsRead = true
	n.ReadAt = &now
	if err := s.db.Save(&n).Error; err != nil {
		return Internal("Error updating notification: %v", err)
	}
	return nil
}

// MarkAllRead marks every unread notification for the user and reports
// how many rows were affected. Calling it again is a no-op returning 0.
func (s *NotificationService) MarkAllRead(userID uint) (int64, *Error) {
	now := time.Now().UTC()
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return 0, Internal("Error updating notifications: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes one notification.
func (s *NotificationService) Delete(notificationID uint) *Error {
	var n models.Notification
	if err := s.db.First(&n, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Notification not found")
		}
		return Internal("Error loading notification: %v", err)
	}
	if err := s.db.Delete(&n).Error; err != nil {
		return Internal("Error deleting notification: %v", err)
	}
	return nil
}

// ClearAll removes every notification for the user and reports the
// count removed.
func (s *NotificationService) ClearAll(userID uint) (int64, *Error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, Internal("Error counting notifications: %v", err)
	}
	if err := s.db.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
		return 0, Internal("Error clearing notifications: %v", err)
	}
	return count, nil
}
