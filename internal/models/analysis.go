package models

import (
	"time"

	"github.com/google/uuid"
)

type InterviewQuestion struct {
	Question string `json:"question"`
	Purpose  string `json:"purpose"`
}

// ScoringResult is the shaped outcome of scoring one resume against one job
// description. Slices and maps are always non-nil so callers can render it
// without checks.
type ScoringResult struct {
	MatchScore         float64             `json:"matchScore"`
	Summary            string              `json:"summary"`
	Skills             map[string]float64  `json:"skills"`
	Experience         map[string]float64  `json:"experience"`
	Strengths          []string            `json:"strengths"`
	Gaps               []string            `json:"gaps"`
	MatchingSkills     []string            `json:"matchingSkills"`
	MissingSkills      []string            `json:"missingSkills"`
	YearsOfExperience  float64             `json:"yearsOfExperience"`
	InterviewQuestions []InterviewQuestion `json:"interviewQuestions"`
}

// NewFailedResult builds the zero-score record used for items that could not
// be scored.
func NewFailedResult(message string) ScoringResult {
	return ScoringResult{
		MatchScore:         0,
		Summary:            "Error: " + message,
		Skills:             map[string]float64{},
		Experience:         map[string]float64{},
		Strengths:          []string{},
		Gaps:               []string{},
		MatchingSkills:     []string{},
		MissingSkills:      []string{},
		InterviewQuestions: []InterviewQuestion{},
	}
}

type ResumeAnalysis struct {
	ID              uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"candidate_id"`
	CandidateName   string        `gorm:"type:text" json:"candidate_name"`
	FileName        string        `gorm:"type:text" json:"file_name"`
	JobPositionID   uuid.UUID     `gorm:"type:uuid;index" json:"job_position_id"`
	JobDescription  string        `gorm:"type:text" json:"job_description"`
	AnalysisResults ScoringResult `gorm:"type:jsonb;serializer:json" json:"analysis_results"`
	CreatedAt       time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ResumeAnalysis) TableName() string {
	return "resume_analyses"
}
