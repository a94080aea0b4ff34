package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deepanshu089/suprathon/internal/models"
)

type AnalysisRepository interface {
	Save(ctx context.Context, analysis *models.ResumeAnalysis) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ResumeAnalysis, error)
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]models.ResumeAnalysis, error)
	FindRecent(ctx context.Context, limit int) ([]models.ResumeAnalysis, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Save implements AnalysisRepository.
func (r *analysisRepository) Save(ctx context.Context, analysis *models.ResumeAnalysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to save resume analysis: %w", err)
	}
	return nil
}

// FindByID implements AnalysisRepository.
func (r *analysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ResumeAnalysis, error) {
	var analysis models.ResumeAnalysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resume analysis %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find resume analysis: %w", err)
	}
	return &analysis, nil
}

// FindByCandidate implements AnalysisRepository.
func (r *analysisRepository) FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]models.ResumeAnalysis, error) {
	var analyses []models.ResumeAnalysis
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find analyses for candidate: %w", err)
	}
	return analyses, nil
}

// FindRecent implements AnalysisRepository.
func (r *analysisRepository) FindRecent(ctx context.Context, limit int) ([]models.ResumeAnalysis, error) {
	if limit <= 0 {
		limit = 10
	}

	var analyses []models.ResumeAnalysis
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recent analyses: %w", err)
	}
	return analyses, nil
}
