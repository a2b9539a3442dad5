// services/task_service.go - Task workflow
package services

import (
	"fmt"
	"time"
	"worktrack/models"
	"worktrack/utils"

	"gorm.io/gorm"
)

type TaskService struct {
	db     *gorm.DB
	authz  *AuthzService
	notify *NotificationService
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{
		db:     db,
		authz:  NewAuthzService(db),
		notify: NewNotificationService(db),
	}
}

// TaskCreateInput carries the create-task fields after parsing.
type TaskCreateInput struct {
	Title        string
	Description  string
	Status       string
	Priority     string
	Deadline     string
	AssignerID   *uint
	AssigneeID   *uint
	ParentTaskID *uint
	GroupID      *uint
}

// Create validates references and inserts one task, notifying the
// assignee when assigned by someone else.
func (s *TaskService) Create(input TaskCreateInput) (*models.Task, *Error) {
	if input.Title == "" {
		return nil, Invalid("Missing title")
	}

	status := models.TaskStatusTodo
	if input.Status != "" {
		status = models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, Invalid("Invalid status. Must be todo, doing, or done")
		}
	}

	priority := models.TaskPriorityMedium
	if input.Priority != "" {
		priority = models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, Invalid("Invalid priority. Must be low, medium, or high")
		}
	}

	var assigner *models.User
	if input.AssignerID != nil {
		var u models.User
		if err := s.db.First(&u, *input.AssignerID).Error; err != nil {
			return nil, Invalid("Assigner with ID %d not found", *input.AssignerID)
		}
		assigner = &u
	}

	if input.AssigneeID != nil {
		var u models.User
		if err := s.db.First(&u, *input.AssigneeID).Error; err != nil {
			return nil, Invalid("Assignee with ID %d not found", *input.AssigneeID)
		}
	}

	if input.ParentTaskID != nil {
		var parent models.Task
		if err := s.db.First(&parent, *input.ParentTaskID).Error; err != nil {
			return nil, Invalid("Parent task with ID %d not found", *input.ParentTaskID)
		}
	}

	if input.GroupID != nil {
		var group models.Group
		if err := s.db.First(&group, *input.GroupID).Error; err != nil {
			return nil, Invalid("Group with ID %d not found", *input.GroupID)
		}
	}

	var deadline *time.Time
	if input.Deadline != "" {
		t, err := utils.ParseDeadline(input.Deadline)
		if err != nil {
			return nil, Invalid("Invalid deadline format. Use YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
		}
		deadline = &t
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		Status:       status,
		Priority:     priority,
		Deadline:     deadline,
		AssignerID:   input.AssignerID,
		AssigneeID:   input.AssigneeID,
		ParentTaskID: input.ParentTaskID,
		GroupID:      input.GroupID,
	}
	if err := s.db.Create(task).Error; err != nil {
		return nil, Internal("Error creating task: %v", err)
	}

	if input.AssigneeID != nil && (input.AssignerID == nil || *input.AssigneeID != *input.AssignerID) {
		assignerName := "System"
		if assigner != nil {
			assignerName = assigner.Name
		}
		s.notify.Notify(*input.AssigneeID,
			fmt.Sprintf("New task assigned: %s", task.Title),
			fmt.Sprintf("You have been assigned a new task '%s' by %s", task.Title, assignerName),
			models.NotificationTaskAssigned,
			NotifyOptions{TaskID: &task.ID, Important: priority == models.TaskPriorityHigh})
	}

	return task, nil
}

// Progress derives a completion percentage: done is 100, doing is the
// subtask completion ratio (or 50 with no subtasks), todo is 0.
func (s *TaskService) Progress(task *models.Task) int {
	switch task.Status {
	case models.TaskStatusDone:
		return 100
	case models.TaskStatusDoing:
		var total, completed int64
		s.db.Model(&models.Task{}).Where("parent_task_id = ?", task.ID).Count(&total)
		if total == 0 {
			return 50
		}
		s.db.Model(&models.Task{}).Where("parent_task_id = ? AND status = ?", task.ID, models.TaskStatusDone).Count(&completed)
		return int(completed * 100 / total)
	default:
		return 0
	}
}

// SearchFilters are the conjunctive task filters; all optional.
type SearchFilters struct {
	AssigneeID *uint
	AssignerID *uint
	GroupID    *uint
	Status     string
	Priority   string
	Title      string
	DateFrom   string // YYYY-MM-DD
	DateTo     string // YYYY-MM-DD
	Week       string // YYYY-Wnn
}

// Search applies every supplied filter with logical AND.
func (s *TaskService) Search(filters SearchFilters) ([]models.Task, *Error) {
	query := s.db.Model(&models.Task{})

	if filters.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filters.AssigneeID)
	}
	if filters.AssignerID != nil {
		query = query.Where("assigner_id = ?", *filters.AssignerID)
	}
	if filters.GroupID != nil {
		query = query.Where("group_id = ?", *filters.GroupID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		query = query.Where("priority = ?", filters.Priority)
	}
	if filters.Title != "" {
		query = query.Where("title LIKE ?", "%"+filters.Title+"%")
	}

	if filters.DateFrom != "" {
		from, err := time.Parse(utils.DateFormat, filters.DateFrom)
		if err != nil {
			return nil, Invalid("Invalid date_from format. Use YYYY-MM-DD")
		}
		query = query.Where("created_at >= ?", from)
	}
	if filters.DateTo != "" {
		to, err := time.Parse(utils.DateFormat, filters.DateTo)
		if err != nil {
			return nil, Invalid("Invalid date_to format. Use YYYY-MM-DD")
		}
		query = query.Where("created_at <= ?", to.AddDate(0, 0, 1))
	}

	if filters.Week != "" {
		start, end, err := utils.WeekWindow(filters.Week)
		if err != nil {
			return nil, Invalid("Invalid week format. Use YYYY-WXX (e.g., 2025-W28)")
		}
		query = query.Where("created_at >= ? AND created_at <= ?", start, utils.WeekQueryEnd(end))
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, Internal("Error searching tasks: %v", err)
	}
	return tasks, nil
}

// ByUser lists tasks assigned to the user, newest first.
func (s *TaskService) ByUser(userID uint) ([]models.Task, *Error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFound("User not found")
	}

	var tasks []models.Task
	if err := s.db.Where("assignee_id = ?", userID).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, Internal("Error loading tasks: %v", err)
	}
	return tasks, nil
}

// VisibleTo lists tasks scoped by the caller's role: admins see all;
// leaders see tasks assigned within their group plus tasks they
// created; everyone else sees tasks they are assignee or assigner on.
func (s *TaskService) VisibleTo(caller *models.User) ([]models.Task, error) {
	var tasks []models.Task

	switch caller.Role {
	case models.RoleAdmin:
		if err := s.db.Order("created_at DESC").Find(&tasks).Error; err != nil {
			return nil, err
		}

	case models.RoleLeader:
		if caller.GroupID != nil {
			var memberIDs []uint
			if err := s.db.Model(&models.User{}).Where("group_id = ?", *caller.GroupID).
				Pluck("id", &memberIDs).Error; err != nil {
				return nil, err
			}
			if err := s.db.Where("assignee_id IN ? OR assigner_id = ?", memberIDs, caller.ID).
				Order("created_at DESC").Find(&tasks).Error; err != nil {
				return nil, err
			}
		} else {
			if err := s.db.Where("assignee_id = ? OR assigner_id = ?", caller.ID, caller.ID).
				Order("created_at DESC").Find(&tasks).Error; err != nil {
				return nil, err
			}
		}

	default:
		if err := s.db.Where("assignee_id = ? OR assigner_id = ?", caller.ID, caller.ID).
			Order("created_at DESC").Find(&tasks).Error; err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// ByGroup lists a group's tasks.
func (s *TaskService) ByGroup(groupID uint) ([]models.Task, *Error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		return nil, NotFound("Group not found")
	}

	var tasks []models.Task
	if err := s.db.Where("group_id = ?", groupID).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, Internal("Error loading tasks: %v", err)
	}
	return tasks, nil
}

// Subtasks lists the direct children of a task.
func (s *TaskService) Subtasks(taskID uint) ([]models.Task, *Error) {
	var parent models.Task
	if err := s.db.First(&parent, taskID).Error; err != nil {
		return nil, NotFound("Parent task not found")
	}

	var subtasks []models.Task
	if err := s.db.Where("parent_task_id = ?", taskID).Find(&subtasks).Error; err != nil {
		return nil, Internal("Error loading subtasks: %v", err)
	}
	return subtasks, nil
}

// Get loads one task.
func (s *TaskService) Get(taskID uint) (*models.Task, *Error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		return nil, NotFound("Task not found")
	}
	return &task, nil
}

// TaskUpdateInput carries the optional update fields.
type TaskUpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Deadline    *string
	AssigneeID  *uint
	GroupID     *uint
}

// Update applies a partial update. A transition into done notifies the
// assigner with a completion; any other status change with an update.
func (s *TaskService) Update(taskID uint, input TaskUpdateInput) *Error {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		return NotFound("Task not found")
	}

	oldStatus := task.Status

	if input.Deadline != nil && *input.Deadline != "" {
		t, err := utils.ParseDeadline(*input.Deadline)
		if err != nil {
			return Invalid("Invalid deadline format")
		}
		task.Deadline = &t
	}

	if input.Priority != nil {
		priority := models.TaskPriority(*input.Priority)
		if !priority.Valid() {
			return Invalid("Invalid priority. Must be low, medium, or high")
		}
		task.Priority = priority
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		if !status.Valid() {
			return Invalid("Invalid status. Must be todo, doing, or done")
		}
		task.Status = status
	}
	if input.AssigneeID != nil {
		task.AssigneeID = input.AssigneeID
	}
	if input.GroupID != nil {
		task.GroupID = input.GroupID
	}

	if err := s.db.Save(&task).Error; err != nil {
		return Internal("Error updating task: %v", err)
	}

	if oldStatus != models.TaskStatusDone && task.Status == models.TaskStatusDone {
		if task.AssignerID != nil && (task.AssigneeID == nil || *task.AssignerID != *task.AssigneeID) {
			assigneeName := "assignee"
			if task.AssigneeID != nil {
				var assignee models.User
				if err := s.db.First(&assignee, *task.AssigneeID).Error; err == nil {
					assigneeName = assignee.Name
				}
			}
			s.notify.Notify(*task.AssignerID,
				fmt.Sprintf("Task completed: %s", task.Title),
				fmt.Sprintf("Task '%s' has been completed by %s", task.Title, assigneeName),
				models.NotificationTaskCompleted,
				NotifyOptions{TaskID: &task.ID})
		}
	} else if oldStatus != task.Status {
		if task.AssignerID != nil && (task.AssigneeID == nil || *task.AssignerID != *task.AssigneeID) {
			assigneeName := "assignee"
			if task.AssigneeID != nil {
				var assignee models.User
				if err := s.db.First(&assignee, *task.AssigneeID).Error; err == nil {
					assigneeName = assignee.Name
				}
			}
			s.notify.Notify(*task.AssignerID,
				fmt.Sprintf("Task updated: %s", task.Title),
				fmt.Sprintf("Task '%s' status changed from %s to %s by %s", task.Title, oldStatus, task.Status, assigneeName),
				models.NotificationTaskUpdated,
				NotifyOptions{TaskID: &task.ID})
		}
	}

	return nil
}

// Delete removes one task.
func (s *TaskService) Delete(taskID uint) *Error {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		return NotFound("Task not found")
	}
	if err := s.db.Delete(&task).Error; err != nil {
		return Internal("Error deleting task: %v", err)
	}
	return nil
}

// DashboardStats aggregates the dashboard counters.
type DashboardStats struct {
	TotalTasks        int64            `json:"total_tasks"`
	StatusBreakdown   map[string]int64 `json:"status_breakdown"`
	PriorityBreakdown map[string]int64 `json:"priority_breakdown"`
	DeadlineStatus    map[string]int64 `json:"deadline_status"`
	CompletionRate    string           `json:"completion_rate"`
}

// Dashboard computes task statistics, optionally scoped by assignee
// and group. Upcoming covers deadlines within the next 3 days.
func (s *TaskService) Dashboard(assigneeID, groupID *uint) (*DashboardStats, error) {
	query := s.db.Model(&models.Task{})
	if assigneeID != nil {
		query = query.Where("assignee_id = ?", *assigneeID)
	}
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		StatusBreakdown:   map[string]int64{"completed": 0, "in_progress": 0, "todo": 0},
		PriorityBreakdown: map[string]int64{"high": 0, "medium": 0, "low": 0},
		DeadlineStatus:    map[string]int64{"overdue": 0, "upcoming": 0},
	}

	now := time.Now().UTC()
	upcoming := now.AddDate(0, 0, 3)

	for i := range tasks {
		task := &tasks[i]
		stats.TotalTasks++

		switch task.Status {
		case models.TaskStatusDone:
			stats.StatusBreakdown["completed"]++
		case models.TaskStatusDoing:
			stats.StatusBreakdown["in_progress"]++
		case models.TaskStatusTodo:
			stats.StatusBreakdown["todo"]++
		}

		switch task.Priority {
		case models.TaskPriorityHigh:
			stats.PriorityBreakdown["high"]++
		case models.TaskPriorityMedium:
			stats.PriorityBreakdown["medium"]++
		case models.TaskPriorityLow:
			stats.PriorityBreakdown["low"]++
		}

		if task.Deadline != nil {
			if task.Deadline.Before(now) && task.Status != models.TaskStatusDone {
				stats.DeadlineStatus["overdue"]++
			} else if task.Deadline.After(now) && !task.Deadline.After(upcoming) {
				stats.DeadlineStatus["upcoming"]++
			}
		}
	}

	stats.CompletionRate = percent(stats.StatusBreakdown["completed"], stats.TotalTasks)
	return stats, nil
}

// BulkCreateInput carries the shared parameters for a batch of tasks.
type BulkCreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Deadline    string
	GroupID     *uint
	AssigneeIDs []uint
}

// BulkCreate inserts one identical task per assignee in a single
// transaction. A leader may only target members of the group they
// lead; any failure rolls back the whole batch.
func (s *TaskService) BulkCreate(caller *models.User, input BulkCreateInput) (int, *Error) {
	if len(input.AssigneeIDs) == 0 {
		return 0, Invalid("No assignees specified")
	}

	if caller.Role != models.RoleAdmin && caller.Role != models.RoleLeader {
		return 0, Forbidden("Only admin and leaders can assign tasks")
	}

	var led *models.Group
	if caller.Role == models.RoleLeader {
		var err error
		led, err = s.authz.LedGroup(caller.ID)
		if err != nil {
			return 0, Internal("Error checking permissions: %v", err)
		}
		if led == nil {
			return 0, Forbidden("You are not leading any group")
		}
		if input.GroupID != nil && *input.GroupID != led.ID {
			return 0, Forbidden("You can only assign tasks within your group")
		}
	}

	var assignees []models.User
	if err := s.db.Where("id IN ?", input.AssigneeIDs).Find(&assignees).Error; err != nil {
		return 0, Internal("Error loading assignees: %v", err)
	}
	if len(assignees) != len(input.AssigneeIDs) {
		return 0, NotFound("Some assignees not found")
	}

	if led != nil {
		for _, assignee := range assignees {
			if assignee.GroupID == nil || *assignee.GroupID != led.ID {
				return 0, Forbidden("User %s is not in your group", assignee.Name)
			}
		}
	}

	status := models.TaskStatusTodo
	if input.Status != "" {
		status = models.TaskStatus(input.Status)
		if !status.Valid() {
			return 0, Invalid("Invalid status. Must be todo, doing, or done")
		}
	}
	priority := models.TaskPriorityMedium
	if input.Priority != "" {
		priority = models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return 0, Invalid("Invalid priority. Must be low, medium, or high")
		}
	}

	var deadline *time.Time
	if input.Deadline != "" {
		t, err := utils.ParseDeadline(input.Deadline)
		if err != nil {
			return 0, Invalid("Invalid deadline format. Use YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
		}
		deadline = &t
	}

	created := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, assigneeID := range input.AssigneeIDs {
			id := assigneeID
			task := models.Task{
				Title:       input.Title,
				Description: input.Description,
				Status:      status,
				Priority:    priority,
				Deadline:    deadline,
				AssigneeID:  &id,
				AssignerID:  &caller.ID,
				GroupID:     input.GroupID,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, Internal("Error creating tasks: %v", err)
	}

	return created, nil
}

// ParentOptionFilters scope the parent-candidate listing.
type ParentOptionFilters struct {
	GroupID    *uint
	AssigneeID *uint
	Statuses   []string // defaults to todo,doing
	Limit      int      // defaults to 50
}

// ParentOptions lists top-level tasks eligible to become parents.
func (s *TaskService) ParentOptions(filters ParentOptionFilters) ([]models.Task, error) {
	query := s.db.Model(&models.Task{}).Where("parent_task_id IS NULL")

	if filters.GroupID != nil {
		query = query.Where("group_id = ?", *filters.GroupID)
	}
	if filters.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filters.AssigneeID)
	}

	statuses := filters.Statuses
	if len(statuses) == 0 {
		statuses = []string{string(models.TaskStatusTodo), string(models.TaskStatusDoing)}
	}
	query = query.Where("status IN ?", statuses)

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// SubtaskCount counts a task's direct children.
func (s *TaskService) SubtaskCount(taskID uint) int64 {
	var count int64
	s.db.Model(&models.Task{}).Where("parent_task_id = ?", taskID).Count(&count)
	return count
}
