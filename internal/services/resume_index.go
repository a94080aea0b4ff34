package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/models"
)

const (
	resumeChunkSize    = 800
	resumeChunkOverlap = 100
)

// ResumeIndex stores screened resumes for semantic candidate search.
type ResumeIndex interface {
	IndexResume(ctx context.Context, candidate *models.Candidate, analysisID uuid.UUID, text string) error
	SearchCandidates(ctx context.Context, query string, limit int) ([]models.CandidateSearchResult, error)
}

type resumeIndex struct {
	store    QdrantService
	embedder Embedder
	chunker  TextChunker
}

func NewResumeIndex(store QdrantService, embedder Embedder) ResumeIndex {
	return &resumeIndex{
		store:    store,
		embedder: embedder,
		chunker:  NewTextChunker(),
	}
}

// IndexResume implements ResumeIndex.
func (r *resumeIndex) IndexResume(ctx context.Context, candidate *models.Candidate, analysisID uuid.UUID, text string) error {
	pieces := r.chunker.ChunkText(text, resumeChunkSize, resumeChunkOverlap)
	if len(pieces) == 0 {
		return nil
	}

	chunks := make([]ResumeChunk, 0, len(pieces))
	for i, piece := range pieces {
		embedding, err := r.embedder.GenerateEmbedding(ctx, piece)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, ResumeChunk{
			CandidateID:   candidate.ID,
			CandidateName: candidate.Name,
			AnalysisID:    analysisID,
			ChunkIndex:    i,
			Text:          piece,
			Embedding:     embedding,
		})
	}

	if err := r.store.UpsertChunks(ctx, chunks); err != nil {
		return err
	}

	log.Printf("📚 Indexed %d chunks for candidate %s\n", len(chunks), candidate.ID)
	return nil
}

// SearchCandidates implements ResumeIndex. Hits are grouped by candidate,
// keeping each candidate's best chunk.
func (r *resumeIndex) SearchCandidates(ctx context.Context, query string, limit int) ([]models.CandidateSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if limit <= 0 {
		limit = 10
	}

	embedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	// Several chunks usually belong to the same candidate.
	hits, err := r.store.SearchSimilar(ctx, embedding, limit*3)
	if err != nil {
		return nil, err
	}

	results := make([]models.CandidateSearchResult, 0, limit)
	seen := make(map[string]bool)
	for _, hit := range hits {
		if hit.CandidateID == "" || seen[hit.CandidateID] {
			continue
		}
		if _, err := uuid.Parse(hit.CandidateID); err != nil {
			continue
		}
		seen[hit.CandidateID] = true
		results = append(results, models.CandidateSearchResult{
			CandidateID:   hit.CandidateID,
			CandidateName: hit.CandidateName,
			Score:         hit.Score,
			Snippet:       FormatSearchSnippet(hit.Text, 200),
		})
		if len(results) == limit {
			break
		}
	}

	return results, nil
}
