package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/repositories"
)

type JobPositionHandler struct {
	jobRepo repositories.JobPositionRepository
}

func NewJobPositionHandler(jobRepo repositories.JobPositionRepository) *JobPositionHandler {
	return &JobPositionHandler{jobRepo: jobRepo}
}

// HandleList handles GET /job-positions
func (h *JobPositionHandler) HandleList(c *fiber.Ctx) error {
	positions, err := h.jobRepo.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list job positions",
		})
	}

	return c.JSON(fiber.Map{
		"job_positions": positions,
	})
}

// HandleGet handles GET /job-positions/:id
func (h *JobPositionHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid job position ID format")
	}

	position, err := h.jobRepo.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job position not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load job position",
		})
	}

	return c.JSON(position)
}
