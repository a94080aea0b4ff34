package models

import (
	"time"

	"github.com/google/uuid"
)

type ChatSender string

const (
	ChatSenderUser      ChatSender = "user"
	ChatSenderAssistant ChatSender = "assistant"
)

// ChatMessage is one stored line of a recruiter assistant session.
type ChatMessage struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	Sender        ChatSender `gorm:"type:text;not null" json:"sender"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	JobPositionID *uuid.UUID `gorm:"type:uuid" json:"job_position_id,omitempty"`
	CandidateID   *uuid.UUID `gorm:"type:uuid" json:"candidate_id,omitempty"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
