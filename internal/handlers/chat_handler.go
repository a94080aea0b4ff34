package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/models"
	"github.com/deepanshu089/suprathon/internal/repositories"
	"github.com/deepanshu089/suprathon/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

// NewChatHandler accepts a nil service when no chat model is configured.
func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{
		chat: chat,
	}
}

// HandleChat handles POST /chat
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	if h.chat == nil {
		return chatDisabled(c)
	}

	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	input := services.ChatInput{
		Message:       req.Message,
		JobPositionID: optionalUUID(req.JobPositionID),
		CandidateID:   optionalUUID(req.CandidateID),
	}
	if id := optionalUUID(req.SessionID); id != nil {
		input.SessionID = *id
	}

	exchange, err := h.chat.Reply(c.UserContext(), input)
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(models.ChatResponse{
		SessionID: exchange.SessionID.String(),
		Reply:     exchange.Reply,
	})
}

// HandleHistory handles GET /chat/:sessionId/messages?limit=
func (h *ChatHandler) HandleHistory(c *fiber.Ctx) error {
	if h.chat == nil {
		return chatDisabled(c)
	}

	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return badRequest(c, "Invalid session ID format")
	}
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		return badRequest(c, "limit must be between 1 and 200")
	}

	messages, err := h.chat.History(c.UserContext(), sessionID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load chat history",
		})
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// optionalUUID parses a validated, possibly empty, UUID string.
func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func chatDisabled(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "Chat assistant is not enabled",
	})
}

func chatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyChatMessage):
		return badRequest(c, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job position or candidate not found",
		})
	}

	log.Printf("❌ Chat request failed: %v\n", err)
	switch services.KindOf(err) {
	case services.KindUnauthorized, services.KindRateLimited, services.KindUnavailable:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Chat assistant is temporarily unavailable",
		})
	case services.KindMalformedResponse:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Chat assistant returned an invalid reply",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "failed to process chat message",
	})
}
