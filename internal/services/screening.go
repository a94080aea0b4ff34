package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/deepanshu089/suprathon/internal/models"
	"github.com/deepanshu089/suprathon/internal/repositories"
)

type ScreeningService interface {
	// RunBatch screens files against one job position and returns one ranked
	// result per input file. Only a failed job position lookup is returned as
	// an error.
	RunBatch(ctx context.Context, files []models.SourceFile, jobPositionID uuid.UUID, onProgress func(float64)) ([]models.RankedResult, error)
}

type ScreeningOptions struct {
	Concurrency int
	Retry       RetryPolicy
	Index       ResumeIndex
	Metrics     *ScreeningMetrics
}

type screeningService struct {
	jobRepo       repositories.JobPositionRepository
	candidateRepo repositories.CandidateRepository
	analysisRepo  repositories.AnalysisRepository
	extractor     DocumentExtractor
	scorer        ScoringClient
	index         ResumeIndex
	metrics       *ScreeningMetrics
	retry         RetryPolicy
	concurrency   int
}

func NewScreeningService(
	jobRepo repositories.JobPositionRepository,
	candidateRepo repositories.CandidateRepository,
	analysisRepo repositories.AnalysisRepository,
	extractor DocumentExtractor,
	scorer ScoringClient,
	opts ScreeningOptions,
) ScreeningService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 1
	}

	s := &screeningService{
		jobRepo:       jobRepo,
		candidateRepo: candidateRepo,
		analysisRepo:  analysisRepo,
		extractor:     extractor,
		scorer:        scorer,
		index:         opts.Index,
		metrics:       opts.Metrics,
		retry:         opts.Retry,
		concurrency:   opts.Concurrency,
	}
	if s.retry.Retryable == nil {
		s.retry.Retryable = ScoringRetryable
	}
	return s
}

// RunBatch implements ScreeningService.
func (s *screeningService) RunBatch(ctx context.Context, files []models.SourceFile, jobPositionID uuid.UUID, onProgress func(float64)) ([]models.RankedResult, error) {
	job, err := s.jobRepo.FindByID(ctx, jobPositionID)
	if err != nil {
		log.Printf("❌ Job position %s could not be resolved: %v\n", jobPositionID, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrJobPositionNotFound, jobPositionID, err)
	}

	done := s.metrics.BatchStarted()
	defer done()

	jobDescription := NewPromptBuilder().BuildJobDescription(job.Title, job.Description, job.Requirements)
	log.Printf("🔄 Screening %d files against '%s'\n", len(files), job.Title)

	progress := newProgressTracker(onProgress)
	progress.report(0)

	items := make([]*models.BatchItem, len(files))
	for i, f := range files {
		items[i] = models.NewBatchItem(i, f)
	}

	// Phase 1: extraction
	s.forEach(ctx, items, func(ctx context.Context, item *models.BatchItem) {
		s.extractItem(ctx, item)
	}, func(done int) {
		progress.report(phaseProgress(0, 50, done, len(items)))
	})
	progress.report(50)

	var survivors []*models.BatchItem
	for _, item := range items {
		if !item.Status.IsTerminal() {
			survivors = append(survivors, item)
		}
	}
	log.Printf("📄 Extracted %d/%d files\n", len(survivors), len(items))

	// Phase 2: scoring and persistence
	s.forEach(ctx, survivors, func(ctx context.Context, item *models.BatchItem) {
		s.scoreItem(ctx, item, job.ID, jobDescription)
	}, func(done int) {
		progress.report(phaseProgress(50, 50, done, len(survivors)))
	})
	progress.report(100)

	for _, item := range items {
		s.metrics.ItemFinished(string(item.Status), ErrorKind(item.ErrorKind))
	}

	results := rankItems(items)
	log.Printf("✅ Batch screened: %d results for '%s'\n", len(results), job.Title)
	return results, nil
}

// forEach runs fn over items with bounded concurrency. Each call owns its
// item exclusively. onDone receives the running count of finished items.
func (s *screeningService) forEach(ctx context.Context, items []*models.BatchItem, fn func(context.Context, *models.BatchItem), onDone func(int)) {
	var (
		mu       sync.Mutex
		finished int
	)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, item := range items {
		g.Go(func() error {
			fn(ctx, item)

			mu.Lock()
			finished++
			onDone(finished)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

func (s *screeningService) extractItem(ctx context.Context, item *models.BatchItem) {
	item.Advance(models.ItemExtracting)

	text, err := s.extractor.Extract(ctx, item.File)
	if err != nil {
		log.Printf("⚠️  Extraction failed for item %d (%s): %v\n", item.Index, item.File.Name, err)
		s.failItem(item, err)
		return
	}
	item.ExtractedText = text
}

func (s *screeningService) scoreItem(ctx context.Context, item *models.BatchItem, jobPositionID uuid.UUID, jobDescription string) {
	item.Advance(models.ItemScoring)

	var result *models.ScoringResult
	attempt := 0
	err := s.retry.Do(ctx, fmt.Sprintf("score %s", item.File.Name), func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			s.metrics.ScoringRetried()
		}
		r, err := s.scorer.Score(ctx, item.ExtractedText, jobDescription)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		log.Printf("❌ Scoring failed for item %d (%s): %v\n", item.Index, item.File.Name, err)
		s.failItem(item, err)
		return
	}

	candidate := &models.Candidate{
		ID:     uuid.New(),
		Name:   CandidateNameFromFile(item.File.Name),
		Email:  placeholderEmail(item.File.Name),
		Status: models.CandidateNew,
	}
	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		s.failItem(item, &PersistenceError{Op: "create candidate", Cause: err})
		return
	}
	item.CandidateID = &candidate.ID

	analysis := &models.ResumeAnalysis{
		ID:              uuid.New(),
		CandidateID:     candidate.ID,
		CandidateName:   candidate.Name,
		FileName:        item.File.Name,
		JobPositionID:   jobPositionID,
		JobDescription:  jobDescription,
		AnalysisResults: *result,
	}
	if err := s.analysisRepo.Save(ctx, analysis); err != nil {
		if statusErr := s.candidateRepo.UpdateStatus(ctx, candidate.ID, models.CandidateError); statusErr != nil {
			log.Printf("⚠️  Failed to mark candidate %s as error: %v\n", candidate.ID, statusErr)
		}
		s.failItem(item, &PersistenceError{Op: "save analysis", Cause: err})
		return
	}
	item.AnalysisID = &analysis.ID

	if err := s.candidateRepo.UpdateStatus(ctx, candidate.ID, models.CandidateScreened); err != nil {
		log.Printf("⚠️  Failed to mark candidate %s as screened: %v\n", candidate.ID, err)
	} else {
		candidate.Status = models.CandidateScreened
	}

	if s.index != nil {
		if err := s.index.IndexResume(ctx, candidate, analysis.ID, item.ExtractedText); err != nil {
			log.Printf("⚠️  Failed to index resume for candidate %s: %v\n", candidate.ID, err)
		}
	}

	item.Complete(*result)
}

func (s *screeningService) failItem(item *models.BatchItem, err error) {
	kind := KindOf(err)
	if kind == "" {
		kind = KindUnavailable
	}
	item.Fail(string(kind), err.Error())
}

// rankItems orders items by score, highest first, keeping input order for
// ties, and numbers them 1..N.
func rankItems(items []*models.BatchItem) []models.RankedResult {
	results := make([]models.RankedResult, 0, len(items))
	for _, item := range items {
		var result models.ScoringResult
		if item.Result != nil {
			result = *item.Result
		} else {
			// Unreachable once both phases ran; keep the record rather than drop it.
			result = models.NewFailedResult("item did not finish processing")
		}
		results = append(results, models.RankedResult{
			Index:         item.Index,
			FileName:      item.File.Name,
			CandidateName: CandidateNameFromFile(item.File.Name),
			CandidateID:   item.CandidateID,
			AnalysisID:    item.AnalysisID,
			Status:        item.Status,
			ErrorKind:     item.ErrorKind,
			Result:        result,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.MatchScore > results[j].Result.MatchScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// CandidateNameFromFile strips the extension from an uploaded file name.
func CandidateNameFromFile(name string) string {
	base := filepath.Base(name)
	trimmed := strings.TrimSuffix(base, filepath.Ext(base))
	if trimmed == "" {
		return base
	}
	return trimmed
}

// placeholderEmail satisfies the unique email column for candidates created
// from a bare resume file.
func placeholderEmail(fileName string) string {
	local := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return '_'
	}, CandidateNameFromFile(fileName))
	return fmt.Sprintf("%s_%s@placeholder.com", local, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// IsJobPositionNotFound reports whether err is the batch-fatal lookup failure.
func IsJobPositionNotFound(err error) bool {
	return errors.Is(err, ErrJobPositionNotFound)
}
