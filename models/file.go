// models/file.go
package models

import (
	"time"
)

type File struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TaskID     *uint  `gorm:"index" json:"task_id"`
	Filename   string `gorm:"not null" json:"filename"`
	Filepath   string `gorm:"not null" json:"filepath"`
	UploadedBy *uint  `gorm:"index" json:"uploaded_by"`

	UploadDate time.Time `gorm:"autoCreateTime" json:"upload_date"`
}

func (File) TableName() string {
	return "files"
}
