package services

import (
	"testing"
	"time"
	"worktrack/models"
)

func TestTaskProgress(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)
	assignee := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	done := models.Task{Title: "Done", Status: models.TaskStatusDone, Priority: models.TaskPriorityMedium, AssigneeID: &assignee.ID}
	if err := db.Create(&done).Error; err != nil {
		t.Fatalf("creating task: %v", err)
	}
	if got := svc.Progress(&done); got != 100 {
		t.Errorf("done progress = %d, want 100", got)
	}

	doing := models.Task{Title: "Doing", Status: models.TaskStatusDoing, Priority: models.TaskPriorityMedium, AssigneeID: &assignee.ID}
	if err := db.Create(&doing).Error; err != nil {
		t.Fatalf("creating task: %v", err)
	}
	if got := svc.Progress(&doing); got != 50 {
		t.Errorf("doing progress without subtasks = %d, want 50", got)
	}

	statuses := []models.TaskStatus{models.TaskStatusDone, models.TaskStatusTodo, models.TaskStatusTodo}
	for _, status := range statuses {
		sub := models.Task{Title: "Sub", Status: status, Priority: models.TaskPriorityLow, ParentTaskID: &doing.ID}
		if err := db.Create(&sub).Error; err != nil {
			t.Fatalf("creating subtask: %v", err)
		}
	}
	if got := svc.Progress(&doing); got != 33 {
		t.Errorf("doing progress with 1/3 subtasks done = %d, want 33", got)
	}

	todo := models.Task{Title: "Todo", Status: models.TaskStatusTodo, Priority: models.TaskPriorityMedium}
	if err := db.Create(&todo).Error; err != nil {
		t.Fatalf("creating task: %v", err)
	}
	if got := svc.Progress(&todo); got != 0 {
		t.Errorf("todo progress = %d, want 0", got)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	if _, err := svc.Create(TaskCreateInput{Title: ""}); err == nil || err.Message != "Missing title" {
		t.Errorf("empty title: got %v, want Missing title", err)
	}

	_, err := svc.Create(TaskCreateInput{Title: "X", Priority: "urgent"})
	if err == nil || err.Message != "Invalid priority. Must be low, medium, or high" {
		t.Errorf("invalid priority: got %v", err)
	}

	_, err = svc.Create(TaskCreateInput{Title: "X", Status: "blocked"})
	if err == nil || err.Message != "Invalid status. Must be todo, doing, or done" {
		t.Errorf("invalid status: got %v", err)
	}

	_, err = svc.Create(TaskCreateInput{Title: "X", Deadline: "next friday"})
	if err == nil || err.Status != 400 {
		t.Errorf("invalid deadline: got %v, want 400", err)
	}

	missing := uint(9999)
	_, err = svc.Create(TaskCreateInput{Title: "X", AssigneeID: &missing})
	if err == nil || err.Status != 400 {
		t.Errorf("unknown assignee: got %v, want 400", err)
	}
}

func TestCreateTaskNotifiesAssignee(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	if _, err := svc.Create(TaskCreateInput{
		Title:      "Ship it",
		Priority:   "high",
		AssignerID: &leader.ID,
		AssigneeID: &worker.ID,
	}); err != nil {
		t.Fatalf("creating task: %v", err)
	}

	var notifications []models.Notification
	db.Where("user_id = ? AND type = ?", worker.ID, models.NotificationTaskAssigned).Find(&notifications)
	if len(notifications) != 1 {
		t.Fatalf("assignee notifications = %d, want 1", len(notifications))
	}
	if !notifications[0].IsImportant {
		t.Error("high priority assignment should be marked important")
	}

	// Self-assignment stays silent.
	if _, err := svc.Create(TaskCreateInput{
		Title:      "My own",
		AssignerID: &worker.ID,
		AssigneeID: &worker.ID,
	}); err != nil {
		t.Fatalf("creating self-assigned task: %v", err)
	}
	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", worker.ID).Count(&count)
	if count != 1 {
		t.Errorf("notifications after self-assignment = %d, want 1", count)
	}
}

func TestVisibleToRoleScoping(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)
	group := createTestGroup(t, db, "Alpha", &leader.ID)
	leader.GroupID = &group.ID
	member := createTestUser(t, db, "Member", models.RoleEmployee, &group.ID)
	outsider := createTestUser(t, db, "Outsider", models.RoleEmployee, nil)

	seed := []models.Task{
		{Title: "member task", AssigneeID: &member.ID, GroupID: &group.ID},
		{Title: "leader task", AssigneeID: &leader.ID, GroupID: &group.ID},
		{Title: "outsider task", AssigneeID: &outsider.ID},
		{Title: "assigned out by leader", AssigneeID: &outsider.ID, AssignerID: &leader.ID},
	}
	for i := range seed {
		seed[i].Status = models.TaskStatusTodo
		seed[i].Priority = models.TaskPriorityMedium
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seeding task: %v", err)
		}
	}

	adminTasks, err := svc.VisibleTo(admin)
	if err != nil {
		t.Fatalf("admin VisibleTo: %v", err)
	}
	if len(adminTasks) != 4 {
		t.Errorf("admin sees %d tasks, want 4", len(adminTasks))
	}

	leaderTasks, err := svc.VisibleTo(leader)
	if err != nil {
		t.Fatalf("leader VisibleTo: %v", err)
	}
	if len(leaderTasks) != 3 {
		t.Errorf("leader sees %d tasks, want 3 (group members plus own assignments)", len(leaderTasks))
	}

	memberTasks, err := svc.VisibleTo(member)
	if err != nil {
		t.Fatalf("member VisibleTo: %v", err)
	}
	if len(memberTasks) != 1 || memberTasks[0].Title != "member task" {
		t.Errorf("member sees %d tasks, want only their own", len(memberTasks))
	}

	outsiderTasks, err := svc.VisibleTo(outsider)
	if err != nil {
		t.Fatalf("outsider VisibleTo: %v", err)
	}
	if len(outsiderTasks) != 2 {
		t.Errorf("outsider sees %d tasks, want 2", len(outsiderTasks))
	}
}

func TestBulkCreateLeaderScope(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)
	group := createTestGroup(t, db, "Alpha", &leader.ID)
	leader.GroupID = &group.ID
	member := createTestUser(t, db, "Member", models.RoleEmployee, &group.ID)
	outsider := createTestUser(t, db, "Stray", models.RoleEmployee, nil)

	_, err := svc.BulkCreate(leader, BulkCreateInput{
		Title:       "Sprint work",
		AssigneeIDs: []uint{member.ID, outsider.ID},
	})
	if err == nil || err.Status != 403 {
		t.Fatalf("cross-group bulk create: got %v, want 403", err)
	}
	if err.Message != "User Stray is not in your group" {
		t.Errorf("message = %q", err.Message)
	}

	var count int64
	db.Model(&models.Task{}).Count(&count)
	if count != 0 {
		t.Errorf("tasks after rejected bulk create = %d, want 0", count)
	}

	created, serr := svc.BulkCreate(leader, BulkCreateInput{
		Title:       "Sprint work",
		Priority:    "high",
		AssigneeIDs: []uint{member.ID, leader.ID},
	})
	if serr != nil {
		t.Fatalf("bulk create: %v", serr)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
	db.Model(&models.Task{}).Where("assigner_id = ?", leader.ID).Count(&count)
	if count != 2 {
		t.Errorf("persisted tasks = %d, want 2", count)
	}
}

func TestBulkCreateRequiresRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	if _, err := svc.BulkCreate(worker, BulkCreateInput{Title: "X", AssigneeIDs: []uint{worker.ID}}); err == nil ||
		err.Message != "Only admin and leaders can assign tasks" {
		t.Errorf("employee bulk create: got %v", err)
	}

	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	if _, err := svc.BulkCreate(admin, BulkCreateInput{Title: "X"}); err == nil ||
		err.Message != "No assignees specified" {
		t.Errorf("empty assignees: got %v", err)
	}

	if _, err := svc.BulkCreate(admin, BulkCreateInput{Title: "X", AssigneeIDs: []uint{9999}}); err == nil ||
		err.Message != "Some assignees not found" {
		t.Errorf("unknown assignees: got %v", err)
	}
}

func TestSearchByWeek(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	// 2025-W28 runs Monday July 7 through Sunday July 13.
	inWeek := models.Task{
		Title:      "inside",
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityMedium,
		AssigneeID: &worker.ID,
		CreatedAt:  time.Date(2025, 7, 9, 12, 0, 0, 0, time.UTC),
	}
	outOfWeek := models.Task{
		Title:      "outside",
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityMedium,
		AssigneeID: &worker.ID,
		CreatedAt:  time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&inWeek).Error; err != nil {
		t.Fatalf("seeding task: %v", err)
	}
	if err := db.Create(&outOfWeek).Error; err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	tasks, serr := svc.Search(SearchFilters{Week: "2025-W28"})
	if serr != nil {
		t.Fatalf("search: %v", serr)
	}
	if len(tasks) != 1 || tasks[0].Title != "inside" {
		t.Fatalf("week search returned %d tasks, want only the in-week one", len(tasks))
	}

	if _, serr := svc.Search(SearchFilters{Week: "week28"}); serr == nil ||
		serr.Message != "Invalid week format. Use YYYY-WXX (e.g., 2025-W28)" {
		t.Errorf("malformed week: got %v", serr)
	}

	if _, serr := svc.Search(SearchFilters{DateFrom: "07/01/2025"}); serr == nil ||
		serr.Message != "Invalid date_from format. Use YYYY-MM-DD" {
		t.Errorf("malformed date_from: got %v", serr)
	}
}

func TestUpdateStatusNotifications(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)
	worker := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	task, serr := svc.Create(TaskCreateInput{
		Title:      "Review",
		AssignerID: &leader.ID,
		AssigneeID: &worker.ID,
	})
	if serr != nil {
		t.Fatalf("creating task: %v", serr)
	}

	doing := "doing"
	if serr := svc.Update(task.ID, TaskUpdateInput{Status: &doing}); serr != nil {
		t.Fatalf("update to doing: %v", serr)
	}
	done := "done"
	if serr := svc.Update(task.ID, TaskUpdateInput{Status: &done}); serr != nil {
		t.Fatalf("update to done: %v", serr)
	}

	var completed int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", leader.ID, models.NotificationTaskCompleted).
		Count(&completed)
	if completed != 1 {
		t.Errorf("completion notifications to assigner = %d, want 1", completed)
	}

	var fresh models.Task
	if err := db.First(&fresh, task.ID).Error; err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	if fresh.Status != models.TaskStatusDone {
		t.Errorf("status = %s, want done", fresh.Status)
	}
}
