package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deepanshu089/suprathon/internal/models"
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	List(ctx context.Context, status models.CandidateStatus) ([]models.Candidate, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CandidateStatus) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// Create implements CandidateRepository.
func (r *candidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if err := r.db.WithContext(ctx).Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// FindByID implements CandidateRepository. Analyses are preloaded newest first.
func (r *candidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.WithContext(ctx).
		Preload("Analyses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&candidate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

// List implements CandidateRepository. An empty status lists everyone.
func (r *candidateRepository) List(ctx context.Context, status models.CandidateStatus) ([]models.Candidate, error) {
	query := r.db.WithContext(ctx).Model(&models.Candidate{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var candidates []models.Candidate
	if err := query.Order("created_at DESC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// UpdateStatus implements CandidateRepository.
func (r *candidateRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CandidateStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update candidate status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}

	return nil
}
