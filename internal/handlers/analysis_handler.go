package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/repositories"
	"github.com/deepanshu089/suprathon/internal/services"
)

type AnalysisHandler struct {
	analysisRepo repositories.AnalysisRepository
	skills       services.SkillCategorizer
}

func NewAnalysisHandler(analysisRepo repositories.AnalysisRepository, skills services.SkillCategorizer) *AnalysisHandler {
	return &AnalysisHandler{
		analysisRepo: analysisRepo,
		skills:       skills,
	}
}

// HandleRecent handles GET /analyses/recent?limit=
func (h *AnalysisHandler) HandleRecent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 100 {
		return badRequest(c, "limit must be between 1 and 100")
	}

	analyses, err := h.analysisRepo.FindRecent(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load analyses",
		})
	}

	return c.JSON(fiber.Map{
		"analyses": analyses,
	})
}

// HandleGet handles GET /analyses/:id
func (h *AnalysisHandler) HandleGet(c *fiber.Ctx) error {
	analysisID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid analysis ID format")
	}

	analysis, err := h.analysisRepo.FindByID(c.UserContext(), analysisID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Analysis not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load analysis",
		})
	}

	return c.JSON(analysis)
}

// HandleListByCandidate handles GET /candidates/:id/analyses
func (h *AnalysisHandler) HandleListByCandidate(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid candidate ID format")
	}

	analyses, err := h.analysisRepo.FindByCandidate(c.UserContext(), candidateID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load analyses",
		})
	}

	return c.JSON(fiber.Map{
		"analyses": analyses,
	})
}

// HandleSkillCategories handles GET /analyses/:id/skill-categories
func (h *AnalysisHandler) HandleSkillCategories(c *fiber.Ctx) error {
	analysisID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid analysis ID format")
	}

	categories, err := h.skills.CategorizeAnalysis(c.UserContext(), analysisID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Analysis not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to categorize skills",
		})
	}

	return c.JSON(categories)
}
