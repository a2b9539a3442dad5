package services

import (
	"testing"
	"time"
	"worktrack/models"
)

func seedDeadlineTask(t *testing.T, svc *TaskService, assigneeID uint, title string, deadline time.Time) *models.Task {
	t.Helper()
	task, err := svc.Create(TaskCreateInput{
		Title:      title,
		Deadline:   deadline.Format("2006-01-02 15:04:05"),
		AssigneeID: &assigneeID,
	})
	if err != nil {
		t.Fatalf("creating task %s: %v", title, err)
	}
	return task
}

func TestCheckDeadlinesOverdueDedupe(t *testing.T) {
	db := setupTestDB(t)
	tasks := NewTaskService(db)
	svc := NewDeadlineService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	overdue := seedDeadlineTask(t, tasks, worker.ID, "Late", time.Now().UTC().Add(-48*time.Hour))

	if err := svc.CheckDeadlines(); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if err := svc.CheckDeadlines(); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND task_id = ? AND type = ?", worker.ID, overdue.ID, models.NotificationTaskOverdue).
		Count(&count)
	if count != 1 {
		t.Errorf("overdue notifications after two sweeps = %d, want 1", count)
	}
}

func TestCheckDeadlinesUpcomingRepeats(t *testing.T) {
	db := setupTestDB(t)
	tasks := NewTaskService(db)
	svc := NewDeadlineService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	soon := seedDeadlineTask(t, tasks, worker.ID, "Due soon", time.Now().UTC().Add(6*time.Hour))

	if err := svc.CheckDeadlines(); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if err := svc.CheckDeadlines(); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND task_id = ? AND type = ?", worker.ID, soon.ID, models.NotificationTaskDeadlineSoon).
		Count(&count)
	if count != 2 {
		t.Errorf("deadline-soon notifications after two sweeps = %d, want 2", count)
	}
}

func TestCheckDeadlinesSkipsDoneTasks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeadlineService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	past := time.Now().UTC().Add(-48 * time.Hour)
	done := models.Task{
		Title:      "Finished late",
		Status:     models.TaskStatusDone,
		Priority:   models.TaskPriorityMedium,
		Deadline:   &past,
		AssigneeID: &worker.ID,
	}
	if err := db.Create(&done).Error; err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	if err := svc.CheckDeadlines(); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", worker.ID).Count(&count)
	if count != 0 {
		t.Errorf("notifications for done task = %d, want 0", count)
	}
}

func TestCleanupOldNotifications(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeadlineService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	old := models.Notification{
		UserID:  worker.ID,
		Title:   "Stale",
		Message: "old news",
		Type:    models.NotificationSystemAnnouncement,
	}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("seeding notification: %v", err)
	}
	if err := db.Model(&old).Update("created_at", time.Now().UTC().AddDate(0, 0, -45)).Error; err != nil {
		t.Fatalf("backdating notification: %v", err)
	}

	recent := models.Notification{
		UserID:  worker.ID,
		Title:   "Fresh",
		Message: "new news",
		Type:    models.NotificationSystemAnnouncement,
	}
	if err := db.Create(&recent).Error; err != nil {
		t.Fatalf("seeding notification: %v", err)
	}

	if err := svc.CleanupOldNotifications(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	var remaining []models.Notification
	db.Find(&remaining)
	if len(remaining) != 1 || remaining[0].Title != "Fresh" {
		t.Errorf("remaining notifications = %d, want only the fresh one", len(remaining))
	}
}
