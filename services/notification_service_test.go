package services

import (
	"testing"
	"worktrack/models"
)

func seedNotifications(t *testing.T, svc *NotificationService, userID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := svc.Notify(userID, "Heads up", "something happened",
			models.NotificationSystemAnnouncement, NotifyOptions{}); err != nil {
			t.Fatalf("seeding notification: %v", err)
		}
	}
}

func TestMarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)
	seedNotifications(t, svc, worker.ID, 3)

	marked, err := svc.MarkAllRead(worker.ID)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if marked != 3 {
		t.Errorf("marked = %d, want 3", marked)
	}

	marked, err = svc.MarkAllRead(worker.ID)
	if err != nil {
		t.Fatalf("second mark all read: %v", err)
	}
	if marked != 0 {
		t.Errorf("second pass marked = %d, want 0", marked)
	}

	_, _, unread, lerr := svc.List(worker.ID, 20, 0, false)
	if lerr != nil {
		t.Fatalf("list: %v", lerr)
	}
	if unread != 0 {
		t.Errorf("unread after mark all = %d, want 0", unread)
	}
}

func TestMarkReadStampsReadAt(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	n, err := svc.Notify(worker.ID, "Heads up", "something happened",
		models.NotificationSystemAnnouncement, NotifyOptions{})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if serr := svc.MarkRead(n.ID); serr != nil {
		t.Fatalf("mark read: %v", serr)
	}

	var fresh models.Notification
	if err := db.First(&fresh, n.ID).Error; err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if !fresh.IsRead || fresh.ReadAt == nil {
		t.Errorf("notification not marked read: is_read=%v read_at=%v", fresh.IsRead, fresh.ReadAt)
	}

	if serr := svc.MarkRead(9999); serr == nil || serr.Message != "Notification not found" {
		t.Errorf("unknown id: got %v", serr)
	}
}

func TestClearAll(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)
	other := createTestUser(t, db, "Other", models.RoleEmployee, nil)
	seedNotifications(t, svc, worker.ID, 2)
	seedNotifications(t, svc, other.ID, 1)

	cleared, err := svc.ClearAll(worker.ID)
	if err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if cleared != 2 {
		t.Errorf("cleared = %d, want 2", cleared)
	}

	var remaining int64
	db.Model(&models.Notification{}).Count(&remaining)
	if remaining != 1 {
		t.Errorf("remaining notifications = %d, want the other user's 1", remaining)
	}
}

func TestListUnreadOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)
	seedNotifications(t, svc, worker.ID, 3)

	all, total, unread, err := svc.List(worker.ID, 20, 0, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || total != 3 || unread != 3 {
		t.Fatalf("list = %d/%d/%d, want 3/3/3", len(all), total, unread)
	}

	if serr := svc.MarkRead(all[0].ID); serr != nil {
		t.Fatalf("mark read: %v", serr)
	}

	unreadOnly, total, unread, err := svc.List(worker.ID, 20, 0, true)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unreadOnly) != 2 || total != 2 || unread != 2 {
		t.Errorf("unread list = %d/%d/%d, want 2/2/2", len(unreadOnly), total, unread)
	}
}
