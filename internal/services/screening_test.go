package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepanshu089/suprathon/internal/models"
	"github.com/deepanshu089/suprathon/internal/repositories"
)

type stubJobRepo struct {
	job   *models.JobPosition
	err   error
	calls atomic.Int32
}

func (r *stubJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.JobPosition, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return r.job, nil
}

func (r *stubJobRepo) List(ctx context.Context) ([]models.JobPosition, error) {
	return []models.JobPosition{*r.job}, nil
}

func (r *stubJobRepo) EnsureDefaults(ctx context.Context) (int, error) { return 0, nil }

type stubCandidateRepo struct {
	mu        sync.Mutex
	created   []models.Candidate
	statuses  map[uuid.UUID]models.CandidateStatus
	createErr error
}

func (r *stubCandidateRepo) Create(ctx context.Context, c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, *c)
	if r.statuses == nil {
		r.statuses = make(map[uuid.UUID]models.CandidateStatus)
	}
	r.statuses[c.ID] = c.Status
	return nil
}

func (r *stubCandidateRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.created {
		if r.created[i].ID == id {
			c := r.created[i]
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *stubCandidateRepo) List(ctx context.Context, status models.CandidateStatus) ([]models.Candidate, error) {
	return nil, nil
}

func (r *stubCandidateRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CandidateStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	return nil
}

func (r *stubCandidateRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

type stubAnalysisRepo struct {
	mu      sync.Mutex
	saved   []models.ResumeAnalysis
	saveErr func(*models.ResumeAnalysis) error
}

func (r *stubAnalysisRepo) Save(ctx context.Context, a *models.ResumeAnalysis) error {
	if r.saveErr != nil {
		if err := r.saveErr(a); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, *a)
	return nil
}

func (r *stubAnalysisRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ResumeAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.saved {
		if r.saved[i].ID == id {
			a := r.saved[i]
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *stubAnalysisRepo) FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]models.ResumeAnalysis, error) {
	return nil, nil
}

func (r *stubAnalysisRepo) FindRecent(ctx context.Context, limit int) ([]models.ResumeAnalysis, error) {
	return nil, nil
}

// pdfTextExtractor treats PDF payloads as their own text and hands every
// other file to the real extractor.
type pdfTextExtractor struct {
	real  DocumentExtractor
	calls atomic.Int32
}

func (e *pdfTextExtractor) Extract(ctx context.Context, file models.SourceFile) (string, error) {
	e.calls.Add(1)
	if file.MediaType == models.MediaTypePDF {
		return string(file.Data), nil
	}
	return e.real.Extract(ctx, file)
}

// routedLLM answers by the first key found in the prompt.
type routedLLM struct {
	bodies map[string]string
	errs   map[string][]error
	mu     sync.Mutex
	calls  map[string]int
	total  atomic.Int32
}

func (l *routedLLM) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	l.total.Add(1)
	for key, body := range l.bodies {
		if !strings.Contains(userPrompt, key) {
			continue
		}
		l.mu.Lock()
		if l.calls == nil {
			l.calls = make(map[string]int)
		}
		n := l.calls[key]
		l.calls[key]++
		l.mu.Unlock()

		if errs := l.errs[key]; n < len(errs) {
			return "", errs[n]
		}
		return body, nil
	}
	return "", fmt.Errorf("no canned response for prompt")
}

func scoreBody(score int) string {
	return fmt.Sprintf(`{"overall_match": {"score": %d, "summary": "ok"}, "skills_analysis": {"matching_skills": ["Go"]}}`, score)
}

type screeningFixture struct {
	jobs       *stubJobRepo
	candidates *stubCandidateRepo
	analyses   *stubAnalysisRepo
	extractor  *pdfTextExtractor
	llm        *routedLLM
	service    ScreeningService
}

func newScreeningFixture(t *testing.T, llm *routedLLM) *screeningFixture {
	t.Helper()
	f := &screeningFixture{
		jobs: &stubJobRepo{job: &models.JobPosition{
			ID:          uuid.New(),
			Title:       "Backend Engineer",
			Description: "Build Go services on Postgres",
		}},
		candidates: &stubCandidateRepo{},
		analyses:   &stubAnalysisRepo{},
		extractor:  &pdfTextExtractor{real: NewDocumentExtractor(NewStorageService(t.TempDir()))},
		llm:        llm,
	}
	f.service = NewScreeningService(f.jobs, f.candidates, f.analyses, f.extractor, NewScoringClient(llm), ScreeningOptions{
		Concurrency: 3,
		Retry:       RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	})
	return f
}

func pdfFile(name, text string) models.SourceFile {
	return models.SourceFile{Name: name, MediaType: models.MediaTypePDF, Data: []byte(text)}
}

func textFile(name string) models.SourceFile {
	return models.SourceFile{Name: name, MediaType: "text/plain", Data: []byte("plain text resume")}
}

func scores(results []models.RankedResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.Result.MatchScore
	}
	return out
}

func TestRunBatchMixedBatchRanksFailuresLast(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{bodies: map[string]string{
		"resume-alpha": scoreBody(60),
		"resume-beta":  scoreBody(85),
	}})
	files := []models.SourceFile{
		pdfFile("alpha.pdf", "resume-alpha"),
		pdfFile("beta.pdf", "resume-beta"),
		textFile("notes.txt"),
	}

	results, err := f.service.RunBatch(context.Background(), files, f.jobs.job.ID, nil)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []float64{85, 60, 0}, scores(results))
	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
	}

	assert.Equal(t, "beta.pdf", results[0].FileName)
	assert.Equal(t, "beta", results[0].CandidateName)
	assert.Equal(t, models.ItemCompleted, results[0].Status)
	assert.NotNil(t, results[0].CandidateID)
	assert.NotNil(t, results[0].AnalysisID)
	assert.Equal(t, models.ItemCompleted, results[1].Status)

	failed := results[2]
	assert.Equal(t, "notes.txt", failed.FileName)
	assert.Equal(t, models.ItemFailed, failed.Status)
	assert.Equal(t, string(KindUnsupportedType), failed.ErrorKind)
	assert.True(t, strings.HasPrefix(failed.Result.Summary, "Error: "))
	assert.Nil(t, failed.CandidateID)

	assert.Equal(t, int32(1), f.jobs.calls.Load())
	require.Len(t, f.candidates.created, 2)
	require.Len(t, f.analyses.saved, 2)
	for _, c := range f.candidates.created {
		assert.Equal(t, models.CandidateNew, c.Status)
		assert.Contains(t, c.Email, "@placeholder.com")
		assert.Equal(t, models.CandidateScreened, f.candidates.statuses[c.ID])
	}
	for _, a := range f.analyses.saved {
		assert.Equal(t, f.jobs.job.ID, a.JobPositionID)
		assert.Contains(t, a.JobDescription, f.jobs.job.Description)
		assert.Contains(t, a.JobDescription, f.jobs.job.Title)
	}
}

func TestRunBatchMalformedResponseFailsOnlyThatItem(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{bodies: map[string]string{
		"resume-good": scoreBody(70),
		"resume-bad":  "I think this candidate is great!",
	}})
	files := []models.SourceFile{pdfFile("bad.pdf", "resume-bad"), pdfFile("good.pdf", "resume-good")}

	results, err := f.service.RunBatch(context.Background(), files, f.jobs.job.ID, nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "good.pdf", results[0].FileName)
	assert.Equal(t, models.ItemCompleted, results[0].Status)

	bad := results[1]
	assert.Equal(t, models.ItemFailed, bad.Status)
	assert.Equal(t, string(KindMalformedResponse), bad.ErrorKind)
	assert.Contains(t, bad.Result.Summary, "not valid JSON")
	assert.Equal(t, 0.0, bad.Result.MatchScore)

	assert.Equal(t, 1, f.candidates.count())
}

func TestRunBatchAllExtractionFailuresKeepInputOrder(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{})
	files := []models.SourceFile{textFile("a.txt"), textFile("b.txt"), textFile("c.txt")}

	var progress []float64
	results, err := f.service.RunBatch(context.Background(), files, f.jobs.job.ID, func(p float64) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, models.ItemFailed, r.Status)
		assert.Equal(t, 0.0, r.Result.MatchScore)
	}
	assert.Equal(t, int32(0), f.llm.total.Load())
	assert.Equal(t, 0, f.candidates.count())
	assert.Equal(t, 100.0, progress[len(progress)-1])
}

func TestRunBatchUnknownJobPositionFailsFast(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{bodies: map[string]string{"resume": scoreBody(50)}})
	f.jobs.err = fmt.Errorf("job position: %w", repositories.ErrNotFound)

	results, err := f.service.RunBatch(context.Background(), []models.SourceFile{pdfFile("a.pdf", "resume")}, uuid.New(), nil)

	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrJobPositionNotFound)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.True(t, IsJobPositionNotFound(err))
	assert.Equal(t, KindJobPositionNotFound, KindOf(err))
	assert.Equal(t, int32(0), f.extractor.calls.Load())
	assert.Equal(t, 0, f.candidates.count())
}

func TestRunBatchCorruptFileDoesNotAffectOthers(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{bodies: map[string]string{
		"Ada Lovelace": scoreBody(91),
		"resume-beta":  scoreBody(40),
	}})
	files := []models.SourceFile{
		{Name: "ada.docx", MediaType: models.MediaTypeDOCX, Data: buildDocx(t, `<w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p>`)},
		{Name: "broken.docx", MediaType: models.MediaTypeDOCX, Data: []byte("not a zip")},
		pdfFile("beta.pdf", "resume-beta"),
	}

	results, err := f.service.RunBatch(context.Background(), files, f.jobs.job.ID, nil)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []float64{91, 40, 0}, scores(results))
	assert.Equal(t, models.ItemCompleted, results[0].Status)
	assert.Equal(t, models.ItemCompleted, results[1].Status)
	assert.Equal(t, "broken.docx", results[2].FileName)
	assert.Equal(t, string(KindParseFailure), results[2].ErrorKind)
}

func TestRunBatchProperties(t *testing.T) {
	bodies := map[string]string{}
	var files []models.SourceFile
	for i := 0; i < 12; i++ {
		key := fmt.Sprintf("resume-%02d", i)
		switch i % 4 {
		case 0:
			files = append(files, textFile(key+".txt"))
		case 1:
			bodies[key] = "not json"
			files = append(files, pdfFile(key+".pdf", key))
		default:
			bodies[key] = scoreBody((i * 37) % 101)
			files = append(files, pdfFile(key+".pdf", key))
		}
	}
	f := newScreeningFixture(t, &routedLLM{bodies: bodies})

	var progress []float64
	results, err := f.service.RunBatch(context.Background(), files, f.jobs.job.ID, func(p float64) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	// completeness
	require.Len(t, results, len(files))
	seen := map[int]bool{}
	for _, r := range results {
		seen[r.Index] = true
	}
	assert.Len(t, seen, len(files))

	// rank and score monotonicity
	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[i-1].Rank+1, results[i].Rank)
		assert.GreaterOrEqual(t, results[i-1].Result.MatchScore, results[i].Result.MatchScore)
	}

	// failures score zero and rank after positive completed items
	lastPositive := 0
	firstFailed := len(results) + 1
	for _, r := range results {
		if r.Status == models.ItemFailed {
			assert.Equal(t, 0.0, r.Result.MatchScore)
			firstFailed = min(firstFailed, r.Rank)
		}
		if r.Status == models.ItemCompleted && r.Result.MatchScore > 0 {
			lastPositive = max(lastPositive, r.Rank)
		}
	}
	assert.Less(t, lastPositive, firstFailed)

	// progress
	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Contains(t, progress, 50.0)
	assert.Equal(t, 100.0, progress[len(progress)-1])
}

func TestRunBatchRetriesRateLimitedScoring(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{
		bodies: map[string]string{"resume-a": scoreBody(77)},
		errs: map[string][]error{"resume-a": {
			&ScoringError{Kind: KindRateLimited, StatusCode: 429},
			&ScoringError{Kind: KindUnavailable, StatusCode: 503},
		}},
	})

	results, err := f.service.RunBatch(context.Background(), []models.SourceFile{pdfFile("a.pdf", "resume-a")}, f.jobs.job.ID, nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, models.ItemCompleted, results[0].Status)
	assert.Equal(t, 77.0, results[0].Result.MatchScore)
	assert.Equal(t, int32(3), f.llm.total.Load())
}

func TestRunBatchDoesNotRetryUnauthorized(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{
		bodies: map[string]string{"resume-a": scoreBody(77)},
		errs:   map[string][]error{"resume-a": {&ScoringError{Kind: KindUnauthorized, StatusCode: 401}}},
	})

	results, err := f.service.RunBatch(context.Background(), []models.SourceFile{pdfFile("a.pdf", "resume-a")}, f.jobs.job.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ItemFailed, results[0].Status)
	assert.Equal(t, string(KindUnauthorized), results[0].ErrorKind)
	assert.Equal(t, int32(1), f.llm.total.Load())
}

func TestRunBatchAnalysisSaveFailureMarksCandidate(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{bodies: map[string]string{"resume-a": scoreBody(64)}})
	f.analyses.saveErr = func(*models.ResumeAnalysis) error { return errors.New("connection reset") }

	results, err := f.service.RunBatch(context.Background(), []models.SourceFile{pdfFile("a.pdf", "resume-a")}, f.jobs.job.ID, nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, models.ItemFailed, results[0].Status)
	assert.Equal(t, string(KindPersistenceFailure), results[0].ErrorKind)
	assert.Equal(t, 0.0, results[0].Result.MatchScore)
	assert.Contains(t, results[0].Result.Summary, "connection reset")

	require.Len(t, f.candidates.created, 1)
	assert.Equal(t, models.CandidateError, f.candidates.statuses[f.candidates.created[0].ID])
}

func TestRunBatchCandidateCreateFailure(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{bodies: map[string]string{"resume-a": scoreBody(64)}})
	f.candidates.createErr = errors.New("duplicate key")

	results, err := f.service.RunBatch(context.Background(), []models.SourceFile{pdfFile("a.pdf", "resume-a")}, f.jobs.job.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ItemFailed, results[0].Status)
	assert.Equal(t, string(KindPersistenceFailure), results[0].ErrorKind)
	assert.Empty(t, f.analyses.saved)
}

func TestRunBatchDuplicateFileNamesAreDistinctItems(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{bodies: map[string]string{
		"resume-first":  scoreBody(30),
		"resume-second": scoreBody(90),
	}})
	files := []models.SourceFile{pdfFile("cv.pdf", "resume-first"), pdfFile("cv.pdf", "resume-second")}

	results, err := f.service.RunBatch(context.Background(), files, f.jobs.job.ID, nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Index)
	assert.Equal(t, 0, results[1].Index)
	assert.NotEqual(t, *results[0].CandidateID, *results[1].CandidateID)
	assert.Equal(t, 2, f.candidates.count())
}

func TestRunBatchEmptyBatch(t *testing.T) {
	f := newScreeningFixture(t, &routedLLM{})

	var progress []float64
	results, err := f.service.RunBatch(context.Background(), nil, f.jobs.job.ID, func(p float64) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, []float64{0, 50, 100}, progress)
}

func TestRunBatchIndexesCompletedResumes(t *testing.T) {
	store := &stubVectorStore{}
	f := newScreeningFixture(t, &routedLLM{bodies: map[string]string{"resume-a": scoreBody(80)}})
	f.service = NewScreeningService(f.jobs, f.candidates, f.analyses, f.extractor, NewScoringClient(f.llm), ScreeningOptions{
		Index: NewResumeIndex(store, &stubEmbedder{}),
	})

	results, err := f.service.RunBatch(context.Background(), []models.SourceFile{pdfFile("a.pdf", "resume-a"), textFile("b.txt")}, f.jobs.job.ID, nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, *results[0].CandidateID, store.upserted[0].CandidateID)
}

func TestCandidateNameFromFile(t *testing.T) {
	assert.Equal(t, "jane.doe", CandidateNameFromFile("jane.doe.pdf"))
	assert.Equal(t, "resume", CandidateNameFromFile("uploads/resume.docx"))
	assert.Equal(t, "noext", CandidateNameFromFile("noext"))
	assert.Equal(t, ".pdf", CandidateNameFromFile(".pdf"))
}

func TestPlaceholderEmailIsUnique(t *testing.T) {
	a := placeholderEmail("Jane Doe.pdf")
	b := placeholderEmail("Jane Doe.pdf")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "jane_doe_"))
	assert.True(t, strings.HasSuffix(a, "@placeholder.com"))
}
