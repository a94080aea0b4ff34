package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/models"
	"github.com/deepanshu089/suprathon/internal/repositories"
)

// chatHistoryLimit bounds how many earlier messages are replayed to the model.
const chatHistoryLimit = 20

var ErrEmptyChatMessage = errors.New("chat message is required")

// ChatInput is one recruiter message. A zero SessionID starts a new session.
type ChatInput struct {
	SessionID     uuid.UUID
	Message       string
	JobPositionID *uuid.UUID
	CandidateID   *uuid.UUID
}

// ChatExchange is the stored pair produced by one Reply call.
type ChatExchange struct {
	SessionID   uuid.UUID
	UserMessage models.ChatMessage
	Reply       models.ChatMessage
}

type ChatService interface {
	Reply(ctx context.Context, input ChatInput) (*ChatExchange, error)
	History(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

type chatService struct {
	model         ChatModel
	chatRepo      repositories.ChatMessageRepository
	jobRepo       repositories.JobPositionRepository
	candidateRepo repositories.CandidateRepository
	promptBuilder *PromptBuilder
	retry         RetryPolicy
	now           func() time.Time
}

func NewChatService(
	model ChatModel,
	chatRepo repositories.ChatMessageRepository,
	jobRepo repositories.JobPositionRepository,
	candidateRepo repositories.CandidateRepository,
	retry RetryPolicy,
) ChatService {
	if retry.Retryable == nil {
		retry.Retryable = ScoringRetryable
	}
	return &chatService{
		model:         model,
		chatRepo:      chatRepo,
		jobRepo:       jobRepo,
		candidateRepo: candidateRepo,
		promptBuilder: NewPromptBuilder(),
		retry:         retry,
		now:           time.Now,
	}
}

// Reply implements ChatService. Both messages are stored only after the model
// answered, so a failed call leaves the session history unchanged.
func (s *chatService) Reply(ctx context.Context, input ChatInput) (*ChatExchange, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrEmptyChatMessage
	}

	sessionID := input.SessionID
	var history []models.ChatMessage
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	} else {
		var err error
		history, err = s.chatRepo.FindBySession(ctx, sessionID, chatHistoryLimit)
		if err != nil {
			return nil, err
		}
	}

	var job *models.JobPosition
	if input.JobPositionID != nil {
		var err error
		if job, err = s.jobRepo.FindByID(ctx, *input.JobPositionID); err != nil {
			return nil, err
		}
	}

	var candidate *models.Candidate
	if input.CandidateID != nil {
		var err error
		if candidate, err = s.candidateRepo.FindByID(ctx, *input.CandidateID); err != nil {
			return nil, err
		}
	}

	turns := make([]ChatTurn, 0, len(history)+1)
	for _, m := range history {
		role := ChatRoleUser
		if m.Sender == models.ChatSenderAssistant {
			role = ChatRoleAssistant
		}
		turns = append(turns, ChatTurn{Role: role, Content: m.Content})
	}
	turns = append(turns, ChatTurn{Role: ChatRoleUser, Content: message})

	systemPrompt := s.promptBuilder.BuildChatSystemPrompt(job, candidate)

	var answer string
	err := s.retry.Do(ctx, fmt.Sprintf("chat %s", sessionID), func(ctx context.Context) error {
		reply, err := s.model.Chat(ctx, systemPrompt, turns)
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(reply)
		return nil
	})
	if err != nil {
		log.Printf("❌ Chat reply failed for session %s: %v\n", sessionID, err)
		return nil, err
	}
	if answer == "" {
		return nil, &ScoringError{Kind: KindMalformedResponse, Cause: errors.New("empty chat reply")}
	}

	sentAt := s.now().UTC()
	userMessage := models.ChatMessage{
		ID:            uuid.New(),
		SessionID:     sessionID,
		Sender:        models.ChatSenderUser,
		Content:       message,
		JobPositionID: input.JobPositionID,
		CandidateID:   input.CandidateID,
		CreatedAt:     sentAt,
	}
	replyMessage := models.ChatMessage{
		ID:            uuid.New(),
		SessionID:     sessionID,
		Sender:        models.ChatSenderAssistant,
		Content:       answer,
		JobPositionID: input.JobPositionID,
		CandidateID:   input.CandidateID,
		CreatedAt:     sentAt.Add(time.Millisecond),
	}

	if err := s.chatRepo.Save(ctx, &userMessage); err != nil {
		return nil, &PersistenceError{Op: "save chat message", Cause: err}
	}
	if err := s.chatRepo.Save(ctx, &replyMessage); err != nil {
		return nil, &PersistenceError{Op: "save chat reply", Cause: err}
	}

	return &ChatExchange{SessionID: sessionID, UserMessage: userMessage, Reply: replyMessage}, nil
}

// History implements ChatService.
func (s *chatService) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	return s.chatRepo.FindBySession(ctx, sessionID, limit)
}
