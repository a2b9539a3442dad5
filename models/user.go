// models/user.go
package models

import (
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleLeader   Role = "leader"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleLeader, RoleAdmin:
		return true
	}
	return false
}

// CodePrefix returns the employee-code prefix for the role.
func (r Role) CodePrefix() string {
	switch r {
	case RoleLeader:
		return "LDR"
	case RoleAdmin:
		return "ADM"
	default:
		return "EMP"
	}
}

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	EmployeeCode string `gorm:"uniqueIndex;size:20" json:"employee_code"`
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:employee" json:"role"`
	GroupID      *uint  `gorm:"index" json:"group_id"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	AssignedTasks []Task   `gorm:"foreignKey:AssigneeID" json:"-"`
	CreatedTasks  []Task   `gorm:"foreignKey:AssignerID" json:"-"`
	Files         []File   `gorm:"foreignKey:UploadedBy" json:"-"`
	Reports       []Report `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
