// models/group.go
package models

import (
	"time"
)

// MaxGroupMembers caps self-service joins on the available-groups listing.
const MaxGroupMembers = 10

type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	LeaderID    *uint  `gorm:"index" json:"leader_id"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Leader *User  `gorm:"foreignKey:LeaderID" json:"-"`
	Tasks  []Task `gorm:"foreignKey:GroupID" json:"-"`
}

func (Group) TableName() string {
	return "groups"
}
