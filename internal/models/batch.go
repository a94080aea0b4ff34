package models

import (
	"github.com/google/uuid"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOC  = "application/msword"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// SourceFile is one uploaded document. It is not modified after submission.
type SourceFile struct {
	Name      string
	MediaType string
	Data      []byte
}

type ItemStatus string

const (
	ItemPending    ItemStatus = "pending"
	ItemExtracting ItemStatus = "extracting"
	ItemScoring    ItemStatus = "scoring"
	ItemCompleted  ItemStatus = "completed"
	ItemFailed     ItemStatus = "failed"
)

func (s ItemStatus) IsTerminal() bool {
	return s == ItemCompleted || s == ItemFailed
}

func (s ItemStatus) order() int {
	switch s {
	case ItemPending:
		return 0
	case ItemExtracting:
		return 1
	case ItemScoring:
		return 2
	case ItemCompleted, ItemFailed:
		return 3
	}
	return -1
}

// BatchItem tracks one file through a batch run. Identity is the input
// position, file names may repeat within a batch.
type BatchItem struct {
	Index         int
	File          SourceFile
	Status        ItemStatus
	ExtractedText string
	Result        *ScoringResult
	ErrorKind     string
	CandidateID   *uuid.UUID
	AnalysisID    *uuid.UUID
}

func NewBatchItem(index int, file SourceFile) *BatchItem {
	return &BatchItem{
		Index:  index,
		File:   file,
		Status: ItemPending,
	}
}

// Advance moves the item forward. Backward moves and moves out of a terminal
// state are ignored; the return value reports whether the status changed.
func (b *BatchItem) Advance(to ItemStatus) bool {
	if b.Status.IsTerminal() || to.order() <= b.Status.order() {
		return false
	}
	b.Status = to
	return true
}

// Fail marks the item failed with a synthetic zero-score result.
func (b *BatchItem) Fail(kind, message string) {
	if !b.Advance(ItemFailed) {
		return
	}
	result := NewFailedResult(message)
	b.Result = &result
	b.ErrorKind = kind
}

// Complete marks the item completed with its real result.
func (b *BatchItem) Complete(result ScoringResult) {
	if !b.Advance(ItemCompleted) {
		return
	}
	b.Result = &result
}

type RankedResult struct {
	Rank          int           `json:"rank"`
	Index         int           `json:"index"`
	FileName      string        `json:"file_name"`
	CandidateName string        `json:"candidate_name"`
	CandidateID   *uuid.UUID    `json:"candidate_id,omitempty"`
	AnalysisID    *uuid.UUID    `json:"analysis_id,omitempty"`
	Status        ItemStatus    `json:"status"`
	ErrorKind     string        `json:"error_kind,omitempty"`
	Result        ScoringResult `json:"analysis_results"`
}
