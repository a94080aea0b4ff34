package models

import (
	"time"

	"github.com/google/uuid"
)

type JobPositionStatus string

const (
	JobPositionActive JobPositionStatus = "active"
	JobPositionClosed JobPositionStatus = "closed"
)

type JobPosition struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title        string            `gorm:"type:text;not null;uniqueIndex" json:"title"`
	Description  string            `gorm:"type:text;not null" json:"description"`
	Requirements []string          `gorm:"type:jsonb;serializer:json" json:"requirements"`
	Status       JobPositionStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt    time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (JobPosition) TableName() string {
	return "job_positions"
}
