package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Batches      *BatchHandler
	JobPositions *JobPositionHandler
	Candidates   *CandidateHandler
	Analyses     *AnalysisHandler
	Chat         *ChatHandler
}

func RegisterRoutes(api fiber.Router, h Handlers) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/batches", h.Batches.HandleCreateBatch)
	api.Get("/batches/:id", h.Batches.HandleGetBatch)

	api.Get("/job-positions", h.JobPositions.HandleList)
	api.Get("/job-positions/:id", h.JobPositions.HandleGet)

	api.Get("/candidates", h.Candidates.HandleList)
	api.Get("/candidates/search", h.Candidates.HandleSearch)
	api.Get("/candidates/:id", h.Candidates.HandleGet)
	api.Patch("/candidates/:id/status", h.Candidates.HandleUpdateStatus)
	api.Get("/candidates/:id/analyses", h.Analyses.HandleListByCandidate)

	api.Get("/analyses/recent", h.Analyses.HandleRecent)
	api.Get("/analyses/:id", h.Analyses.HandleGet)
	api.Get("/analyses/:id/skill-categories", h.Analyses.HandleSkillCategories)

	api.Post("/chat", h.Chat.HandleChat)
	api.Get("/chat/:sessionId/messages", h.Chat.HandleHistory)
}
