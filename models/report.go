// models/report.go
package models

import (
	"time"
)

// Report points at a generated file on disk. Week is a free-text label
// encoding the ISO week and the report kind, e.g. "2025-W28",
// "PDF_2025-W28", "A_SUM_2025-W28", "PDF_L_SUM_2025-W28".
type Report struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   *uint  `gorm:"index" json:"user_id"`
	Week     string `gorm:"not null" json:"week"`
	FilePath string `gorm:"not null" json:"file_path"`

	CreatedAt time.Time `json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}
