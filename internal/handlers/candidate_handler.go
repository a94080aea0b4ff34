package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/models"
	"github.com/deepanshu089/suprathon/internal/repositories"
	"github.com/deepanshu089/suprathon/internal/services"
)

type CandidateHandler struct {
	candidateRepo repositories.CandidateRepository
	index         services.ResumeIndex
}

// NewCandidateHandler builds the handler. index may be nil when vector
// search is disabled.
func NewCandidateHandler(candidateRepo repositories.CandidateRepository, index services.ResumeIndex) *CandidateHandler {
	return &CandidateHandler{
		candidateRepo: candidateRepo,
		index:         index,
	}
}

// HandleList handles GET /candidates?status=
func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	status := models.CandidateStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		return badRequest(c, "Invalid candidate status")
	}

	candidates, err := h.candidateRepo.List(c.UserContext(), status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list candidates",
		})
	}

	return c.JSON(fiber.Map{
		"candidates": candidates,
	})
}

// HandleGet handles GET /candidates/:id
func (h *CandidateHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid candidate ID format")
	}

	candidate, err := h.candidateRepo.FindByID(c.UserContext(), id)
	if err != nil {
		return h.lookupError(c, err)
	}

	return c.JSON(candidate)
}

// HandleUpdateStatus handles PATCH /candidates/:id/status
func (h *CandidateHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid candidate ID format")
	}

	var req models.UpdateCandidateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	if err := h.candidateRepo.UpdateStatus(c.UserContext(), id, models.CandidateStatus(req.Status)); err != nil {
		return h.lookupError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":     id.String(),
		"status": req.Status,
	})
}

// HandleSearch handles GET /candidates/search?q=&limit=
func (h *CandidateHandler) HandleSearch(c *fiber.Ctx) error {
	if h.index == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Candidate search is not enabled",
		})
	}

	query := c.Query("q")
	if query == "" {
		return badRequest(c, "q is required")
	}

	results, err := h.index.SearchCandidates(c.UserContext(), query, c.QueryInt("limit", 10))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "candidate search failed",
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
	})
}

func (h *CandidateHandler) lookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Candidate not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "failed to load candidate",
	})
}
