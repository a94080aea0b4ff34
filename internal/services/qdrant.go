package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []ResumeChunk) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error)
}

// ResumeChunk is one embedded slice of a candidate's resume text.
type ResumeChunk struct {
	CandidateID   uuid.UUID
	CandidateName string
	AnalysisID    uuid.UUID
	ChunkIndex    int
	Text          string
	Embedding     []float32
}

type SearchResult struct {
	CandidateID   string
	CandidateName string
	Score         float32
	Text          string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize uint64) (QdrantService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	if vectorSize == 0 {
		vectorSize = 768
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists\n", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertChunks implements QdrantService.
func (q *qdrantService) UpsertChunks(ctx context.Context, chunks []ResumeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(chunkPointID(c.CandidateID, c.ChunkIndex).String()),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"candidate_id":   c.CandidateID.String(),
				"candidate_name": c.CandidateName,
				"analysis_id":    c.AnalysisID.String(),
				"chunk_index":    c.ChunkIndex,
				"text":           c.Text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// SearchSimilar implements QdrantService.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, SearchResult{
			CandidateID:   payloadString(point.Payload, "candidate_id"),
			CandidateName: payloadString(point.Payload, "candidate_name"),
			Text:          payloadString(point.Payload, "text"),
			Score:         point.Score,
		})
	}

	return results, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return s.StringValue
		}
	}
	return ""
}

// chunkPointID is stable per candidate and chunk so re-indexing overwrites.
func chunkPointID(candidateID uuid.UUID, chunkIndex int) uuid.UUID {
	return uuid.NewSHA1(candidateID, []byte(strconv.Itoa(chunkIndex)))
}
