package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/models"
	"github.com/deepanshu089/suprathon/internal/repositories"
	"github.com/deepanshu089/suprathon/internal/services"
)

type BatchHandler struct {
	jobRepo     repositories.JobPositionRepository
	batches     services.BatchStore
	worker      services.Worker
	maxFileSize int64
	maxFiles    int
}

func NewBatchHandler(
	jobRepo repositories.JobPositionRepository,
	batches services.BatchStore,
	worker services.Worker,
	maxFileSize int64,
	maxFiles int,
) *BatchHandler {
	return &BatchHandler{
		jobRepo:     jobRepo,
		batches:     batches,
		worker:      worker,
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
	}
}

// HandleCreateBatch handles POST /batches
func (h *BatchHandler) HandleCreateBatch(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "failed to parse multipart form")
	}

	req := models.CreateBatchRequest{JobPositionID: firstValue(form.Value, "job_position_id")}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}
	jobPositionID := uuid.MustParse(req.JobPositionID)

	headers := append(form.File["files"], form.File["files[]"]...)
	if len(headers) == 0 {
		return badRequest(c, "No files uploaded. Please upload one or more resumes as 'files'.")
	}
	if h.maxFiles > 0 && len(headers) > h.maxFiles {
		return badRequest(c, fmt.Sprintf("Too many files. Max files per batch: %d", h.maxFiles))
	}

	// Unsupported types are kept; they become failed items in the results.
	files := make([]models.SourceFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.maxFileSize {
			return badRequest(c, fmt.Sprintf("File %s too large. Max size: %d bytes", fh.Filename, h.maxFileSize))
		}
		file, err := readSourceFile(fh)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to read %s: %v", fh.Filename, err),
			})
		}
		files = append(files, file)
	}

	if _, err := h.jobRepo.FindByID(c.UserContext(), jobPositionID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job position not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load job position",
		})
	}

	batch := h.batches.Create(jobPositionID, len(files))
	err = h.worker.EnqueueJob(services.BatchJob{
		BatchID:       batch.ID,
		JobPositionID: jobPositionID,
		Files:         files,
	})
	if err != nil {
		h.batches.Fail(batch.ID, err.Error())
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Screening queue is busy, please retry later",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.CreateBatchResponse{
		ID:         batch.ID.String(),
		Status:     string(batch.Status),
		TotalFiles: batch.TotalFiles,
	})
}

// HandleGetBatch handles GET /batches/:id
func (h *BatchHandler) HandleGetBatch(c *fiber.Ctx) error {
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid batch ID format")
	}

	batch, ok := h.batches.Get(batchID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Batch not found",
		})
	}

	return c.JSON(batch.ToResponse())
}

func readSourceFile(fh *multipart.FileHeader) (models.SourceFile, error) {
	f, err := fh.Open()
	if err != nil {
		return models.SourceFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.SourceFile{}, err
	}

	return models.SourceFile{
		Name:      fh.Filename,
		MediaType: detectMediaType(fh.Filename, fh.Header.Get("Content-Type")),
		Data:      data,
	}, nil
}

// detectMediaType trusts a declared supported type and otherwise falls back
// to the file extension.
func detectMediaType(name, declared string) string {
	declared = strings.TrimSpace(strings.Split(declared, ";")[0])
	if services.SupportedMediaType(declared) {
		return declared
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return models.MediaTypePDF
	case ".docx":
		return models.MediaTypeDOCX
	case ".doc":
		return models.MediaTypeDOC
	}
	if declared == "" {
		return "application/octet-stream"
	}
	return declared
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}
