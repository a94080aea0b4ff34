package models

import (
	"time"

	"github.com/google/uuid"
)

type CandidateStatus string

const (
	CandidateNew      CandidateStatus = "new"
	CandidateScreened CandidateStatus = "screened"
	CandidateAccepted CandidateStatus = "accepted"
	CandidateRejected CandidateStatus = "rejected"
	CandidateError    CandidateStatus = "error"
)

func (s CandidateStatus) IsValid() bool {
	switch s {
	case CandidateNew, CandidateScreened, CandidateAccepted, CandidateRejected, CandidateError:
		return true
	}
	return false
}

type Candidate struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string          `gorm:"type:text;not null" json:"name"`
	Email     string          `gorm:"type:text;uniqueIndex" json:"email"`
	Phone     string          `gorm:"type:text;not null;default:''" json:"phone"`
	Status    CandidateStatus `gorm:"type:text;not null;default:'new'" json:"status"`
	CreatedAt time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Analyses []ResumeAnalysis `gorm:"foreignKey:CandidateID" json:"resume_analyses,omitempty"`
}

func (Candidate) TableName() string {
	return "candidates"
}
