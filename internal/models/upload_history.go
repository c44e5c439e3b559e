package models

import (
	"time"

	"gorm.io/datatypes"
)

type UploadHistory struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FileName     string         `gorm:"type:varchar(255);not null" json:"file_name"`
	TotalRecords int            `gorm:"not null" json:"total_records"`
	UploadedAt   time.Time      `gorm:"not null;index" json:"uploaded_at"`
	Columns      datatypes.JSON `json:"columns,omitempty"`
}
