// models/task.go
package models

import (
	"time"
)

// TaskStatus is the closed set of task states.
type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "todo"
	TaskStatusDoing TaskStatus = "doing"
	TaskStatusDone  TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority is the closed set of task priorities.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:todo" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:medium" json:"priority"`
	Deadline    *time.Time   `json:"deadline"`

	// Hierarchy is id-referenced; subtasks are fetched by querying
	// parent_task_id rather than preloading a children collection.
	ParentTaskID *uint `gorm:"index" json:"parent_task_id"`

	AssignerID *uint `gorm:"index" json:"assigner_id"`
	AssigneeID *uint `gorm:"index" json:"assignee_id"`
	GroupID    *uint `gorm:"index" json:"group_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Files []File `gorm:"foreignKey:TaskID" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}
