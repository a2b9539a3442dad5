// handlers/tasks.go - Task CRUD, search, dashboard, and bulk assignment
package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"worktrack/database"
	"worktrack/models"
	"worktrack/services"
	"worktrack/utils"

	"github.com/gofiber/fiber/v2"
)

var taskService *services.TaskService

// InitTaskHandlers initializes the task service
func InitTaskHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitTaskHandlers")
	}
	taskService = services.NewTaskService(db)
}

func userRef(id *uint, fields ...string) fiber.Map {
	if id == nil {
		return nil
	}
	var user models.User
	if err := database.GetDB().First(&user, *id).Error; err != nil {
		return nil
	}
	ref := fiber.Map{"id": user.ID, "name": user.Name}
	for _, f := range fields {
		switch f {
		case "email":
			ref["email"] = user.Email
		case "employee_code":
			ref["employee_code"] = user.EmployeeCode
		case "role":
			ref["role"] = user.Role
		}
	}
	return ref
}

func groupRef(id *uint, withDescription bool) fiber.Map {
	if id == nil {
		return nil
	}
	var group models.Group
	if err := database.GetDB().First(&group, *id).Error; err != nil {
		return nil
	}
	ref := fiber.Map{"id": group.ID, "name": group.Name}
	if withDescription {
		ref["description"] = group.Description
	}
	return ref
}

func parentTaskRef(id *uint) fiber.Map {
	if id == nil {
		return nil
	}
	var parent models.Task
	if err := database.GetDB().First(&parent, *id).Error; err != nil {
		return nil
	}
	return fiber.Map{"id": parent.ID, "title": parent.Title}
}

// CreateTask creates one task
// POST /api/tasks/create
func CreateTask(c *fiber.Ctx) error {
	var req struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Status       string `json:"status"`
		Priority     string `json:"priority"`
		Deadline     string `json:"deadline"`
		AssignerID   *uint  `json:"assigner_id"`
		AssigneeID   *uint  `json:"assignee_id"`
		ParentTaskID *uint  `json:"parent_task_id"`
		GroupID      *uint  `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	task, serr := taskService.Create(services.TaskCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		Deadline:     req.Deadline,
		AssignerID:   req.AssignerID,
		AssigneeID:   req.AssigneeID,
		ParentTaskID: req.ParentTaskID,
		GroupID:      req.GroupID,
	})
	if serr != nil {
		return fail(c, serr)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Task created successfully",
		"task": fiber.Map{
			"id":         task.ID,
			"title":      task.Title,
			"status":     task.Status,
			"priority":   task.Priority,
			"group_id":   task.GroupID,
			"created_at": utils.FormatTime(task.CreatedAt),
		},
	})
}

// SearchTasks filters tasks with logical AND across every parameter
// GET /api/tasks/search
func SearchTasks(c *fiber.Ctx) error {
	filters := services.SearchFilters{
		AssigneeID: queryUint(c, "assignee_id"),
		AssignerID: queryUint(c, "assigner_id"),
		GroupID:    queryUint(c, "group_id"),
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Title:      c.Query("title"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Week:       c.Query("week"),
	}

	tasks, serr := taskService.Search(filters)
	if serr != nil {
		return fail(c, serr)
	}

	result := make([]fiber.Map, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		result = append(result, fiber.Map{
			"id":             task.ID,
			"title":          task.Title,
			"description":    task.Description,
			"status":         task.Status,
			"priority":       task.Priority,
			"deadline":       utils.FormatTimePtr(task.Deadline),
			"parent_task_id": task.ParentTaskID,
			"assigner":       userRef(task.AssignerID, "email"),
			"assignee":       userRef(task.AssigneeID, "email", "employee_code"),
			"group":          groupRef(task.GroupID, false),
			"created_at":     utils.FormatTime(task.CreatedAt),
			"updated_at":     utils.FormatTime(task.UpdatedAt),
		})
	}

	return c.JSON(fiber.Map{
		"tasks":       result,
		"total_count": len(result),
		"filters_applied": fiber.Map{
			"assignee_id": c.Query("assignee_id"),
			"assigner_id": c.Query("assigner_id"),
			"group_id":    c.Query("group_id"),
			"status":      filters.Status,
			"priority":    filters.Priority,
			"date_from":   filters.DateFrom,
			"date_to":     filters.DateTo,
			"week":        filters.Week,
			"title":       filters.Title,
		},
	})
}

// GetTasksByUser lists tasks assigned to one user
// GET /api/tasks/user/:id
func GetTasksByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	tasks, serr := taskService.ByUser(userID)
	if serr != nil {
		return fail(c, serr)
	}

	result := make([]fiber.Map, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		result = append(result, fiber.Map{
			"id":             task.ID,
			"title":          task.Title,
			"description":    task.Description,
			"status":         task.Status,
			"priority":       task.Priority,
			"deadline":       utils.FormatTimePtr(task.Deadline),
			"parent_task_id": task.ParentTaskID,
			"assigner":       userRef(task.AssignerID),
			"group":          groupRef(task.GroupID, false),
			"created_at":     utils.FormatTime(task.CreatedAt),
		})
	}
	return c.JSON(result)
}

// GetAllTasks lists tasks scoped by the caller's role
// GET /api/tasks/all
func GetAllTasks(c *fiber.Ctx) error {
	callerID := queryUint(c, "user_id")
	if callerID == nil {
		return c.Status(400).JSON(fiber.Map{"message": "Missing user_id parameter"})
	}
	caller, err := currentUser(callerID)
	if err != nil {
		return fail(c, err)
	}

	tasks, err := taskService.VisibleTo(caller)
	if err != nil {
		return fail(c, err)
	}

	result := make([]fiber.Map, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		result = append(result, fiber.Map{
			"id":             task.ID,
			"title":          task.Title,
			"description":    task.Description,
			"status":         task.Status,
			"priority":       task.Priority,
			"deadline":       utils.FormatTimePtr(task.Deadline),
			"created_at":     utils.FormatTime(task.CreatedAt),
			"updated_at":     utils.FormatTime(task.UpdatedAt),
			"assigner":       userRef(task.AssignerID, "employee_code"),
			"assignee":       userRef(task.AssigneeID, "employee_code", "role"),
			"group":          groupRef(task.GroupID, false),
			"parent_task":    parentTaskRef(task.ParentTaskID),
			"subtasks_count": taskService.SubtaskCount(task.ID),
			"progress":       taskService.Progress(task),
		})
	}
	return c.JSON(result)
}

// GetTasksByGroup lists one group's tasks
// GET /api/tasks/group/:id
func GetTasksByGroup(c *fiber.Ctx) error {
	groupID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	tasks, serr := taskService.ByGroup(groupID)
	if serr != nil {
		return fail(c, serr)
	}

	result := make([]fiber.Map, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		result = append(result, fiber.Map{
			"id":             task.ID,
			"title":          task.Title,
			"description":    task.Description,
			"status":         task.Status,
			"priority":       task.Priority,
			"deadline":       utils.FormatTimePtr(task.Deadline),
			"parent_task_id": task.ParentTaskID,
			"assigner":       userRef(task.AssignerID),
			"assignee":       userRef(task.AssigneeID, "employee_code"),
			"created_at":     utils.FormatTime(task.CreatedAt),
		})
	}
	return c.JSON(result)
}

// GetSubtasks lists a task's direct children
// GET /api/tasks/:id/subtasks
func GetSubtasks(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	subtasks, serr := taskService.Subtasks(taskID)
	if serr != nil {
		return fail(c, serr)
	}

	result := make([]fiber.Map, 0, len(subtasks))
	for i := range subtasks {
		task := &subtasks[i]
		result = append(result, fiber.Map{
			"id":          task.ID,
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"priority":    task.Priority,
			"deadline":    utils.FormatTimePtr(task.Deadline),
			"assignee":    userRef(task.AssigneeID),
			"created_at":  utils.FormatTime(task.CreatedAt),
		})
	}
	return c.JSON(result)
}

// UpdateTask applies a partial update
// PUT /api/tasks/:id
func UpdateTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
		Deadline    *string `json:"deadline"`
		AssigneeID  *uint   `json:"assignee_id"`
		GroupID     *uint   `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	input := services.TaskUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		AssigneeID:  req.AssigneeID,
		GroupID:     req.GroupID,
	}
	if serr := taskService.Update(taskID, input); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": "Task updated successfully"})
}

// DeleteTask removes one task
// DELETE /api/tasks/:id
func DeleteTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if serr := taskService.Delete(taskID); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

// GetTaskDetail returns one task with its subtasks
// GET /api/tasks/:id
func GetTaskDetail(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	task, serr := taskService.Get(taskID)
	if serr != nil {
		return fail(c, serr)
	}

	subtasks, serr := taskService.Subtasks(taskID)
	if serr != nil {
		return fail(c, serr)
	}
	subtaskList := make([]fiber.Map, 0, len(subtasks))
	for i := range subtasks {
		sub := &subtasks[i]
		subtaskList = append(subtaskList, fiber.Map{
			"id":       sub.ID,
			"title":    sub.Title,
			"status":   sub.Status,
			"priority": sub.Priority,
			"assignee": userRef(sub.AssigneeID),
		})
	}

	return c.JSON(fiber.Map{
		"id":          task.ID,
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"deadline":    utils.FormatTimePtr(task.Deadline),
		"assigner":    userRef(task.AssignerID, "email"),
		"assignee":    userRef(task.AssigneeID, "email", "employee_code"),
		"group":       groupRef(task.GroupID, true),
		"parent_task": parentTaskRef(task.ParentTaskID),
		"subtasks":    subtaskList,
		"created_at":  utils.FormatTime(task.CreatedAt),
		"updated_at":  utils.FormatTime(task.UpdatedAt),
	})
}

// GetDashboardStats aggregates task counters
// GET /api/tasks/dashboard
func GetDashboardStats(c *fiber.Ctx) error {
	stats, err := taskService.Dashboard(queryUint(c, "user_id"), queryUint(c, "group_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// BulkCreateTasks creates one task per assignee atomically
// POST /api/tasks/bulk-create
func BulkCreateTasks(c *fiber.Ctx) error {
	var req struct {
		AssignerID  *uint  `json:"assigner_id"`
		AssigneeIDs []uint `json:"assignee_ids"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
		Deadline    string `json:"deadline"`
		GroupID     *uint  `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	if len(req.AssigneeIDs) == 0 {
		return c.Status(400).JSON(fiber.Map{"message": "No assignees specified"})
	}
	if req.AssignerID == nil {
		return c.Status(404).JSON(fiber.Map{"message": "Assigner not found"})
	}
	var assigner models.User
	if err := database.GetDB().First(&assigner, *req.AssignerID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Assigner not found"})
	}

	created, serr := taskService.BulkCreate(&assigner, services.BulkCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		GroupID:     req.GroupID,
		AssigneeIDs: req.AssigneeIDs,
	})
	if serr != nil {
		return fail(c, serr)
	}

	return c.JSON(fiber.Map{
		"message":       fmt.Sprintf("Successfully created %d tasks", created),
		"tasks_created": created,
	})
}

// GetParentTaskOptions lists top-level tasks eligible to be parents
// GET /api/tasks/parent-options
func GetParentTaskOptions(c *fiber.Ctx) error {
	filters := services.ParentOptionFilters{
		GroupID:    queryUint(c, "group_id"),
		AssigneeID: queryUint(c, "assignee_id"),
	}
	status := c.Query("status", "todo,doing")
	if status != "" {
		filters.Statuses = strings.Split(status, ",")
	}
	if limit, err := strconv.Atoi(c.Query("limit", "50")); err == nil {
		filters.Limit = limit
	}

	tasks, err := taskService.ParentOptions(filters)
	if err != nil {
		return fail(c, err)
	}

	result := make([]fiber.Map, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		assignee := "Unassigned"
		if ref := userRef(task.AssigneeID); ref != nil {
			assignee = ref["name"].(string)
		}
		result = append(result, fiber.Map{
			"id":         task.ID,
			"title":      task.Title,
			"status":     task.Status,
			"priority":   task.Priority,
			"assignee":   assignee,
			"created_at": utils.FormatTime(task.CreatedAt),
		})
	}
	return c.JSON(result)
}
