package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/models"
)

type BatchStatus string

const (
	BatchQueued     BatchStatus = "queued"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

func (s BatchStatus) IsFinished() bool {
	return s == BatchCompleted || s == BatchFailed
}

// Batch is a snapshot of an asynchronous screening run.
type Batch struct {
	ID            uuid.UUID
	JobPositionID uuid.UUID
	Status        BatchStatus
	Progress      float64
	TotalFiles    int
	Results       []models.RankedResult
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (b Batch) ToResponse() models.BatchStatusResponse {
	resp := models.BatchStatusResponse{
		ID:            b.ID.String(),
		JobPositionID: b.JobPositionID.String(),
		Status:        string(b.Status),
		Progress:      b.Progress,
		TotalFiles:    b.TotalFiles,
		Results:       b.Results,
	}
	if b.ErrorMessage != "" {
		msg := b.ErrorMessage
		resp.ErrorMessage = &msg
	}
	return resp
}

// BatchStore tracks batches in memory for status polling.
type BatchStore interface {
	Create(jobPositionID uuid.UUID, totalFiles int) Batch
	Get(id uuid.UUID) (Batch, bool)
	MarkProcessing(id uuid.UUID)
	UpdateProgress(id uuid.UUID, progress float64)
	Complete(id uuid.UUID, results []models.RankedResult)
	Fail(id uuid.UUID, message string)
	PruneFinished(olderThan time.Duration) int
}

type batchStore struct {
	mu      sync.RWMutex
	batches map[uuid.UUID]*Batch
	now     func() time.Time
}

func NewBatchStore() BatchStore {
	return &batchStore{
		batches: make(map[uuid.UUID]*Batch),
		now:     time.Now,
	}
}

// Create implements BatchStore.
func (s *batchStore) Create(jobPositionID uuid.UUID, totalFiles int) Batch {
	now := s.now()
	b := &Batch{
		ID:            uuid.New(),
		JobPositionID: jobPositionID,
		Status:        BatchQueued,
		TotalFiles:    totalFiles,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	s.batches[b.ID] = b
	s.mu.Unlock()

	return *b
}

// Get implements BatchStore. The returned results slice is shared and must
// not be modified.
func (s *batchStore) Get(id uuid.UUID) (Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return Batch{}, false
	}
	return *b, true
}

// MarkProcessing implements BatchStore.
func (s *batchStore) MarkProcessing(id uuid.UUID) {
	s.update(id, func(b *Batch) {
		b.Status = BatchProcessing
	})
}

// UpdateProgress implements BatchStore. Progress never moves backwards.
func (s *batchStore) UpdateProgress(id uuid.UUID, progress float64) {
	s.update(id, func(b *Batch) {
		if progress > b.Progress {
			b.Progress = progress
		}
	})
}

// Complete implements BatchStore.
func (s *batchStore) Complete(id uuid.UUID, results []models.RankedResult) {
	s.update(id, func(b *Batch) {
		b.Status = BatchCompleted
		b.Progress = 100
		b.Results = results
	})
}

// Fail implements BatchStore.
func (s *batchStore) Fail(id uuid.UUID, message string) {
	s.update(id, func(b *Batch) {
		b.Status = BatchFailed
		b.ErrorMessage = message
	})
}

// PruneFinished implements BatchStore.
func (s *batchStore) PruneFinished(olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, b := range s.batches {
		if b.Status.IsFinished() && b.UpdatedAt.Before(cutoff) {
			delete(s.batches, id)
			removed++
		}
	}
	return removed
}

func (s *batchStore) update(id uuid.UUID, fn func(*Batch)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok || b.Status.IsFinished() {
		return
	}
	fn(b)
	b.UpdatedAt = s.now()
}
