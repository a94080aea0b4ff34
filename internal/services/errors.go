package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnsupportedType     ErrorKind = "UnsupportedType"
	KindParseFailure        ErrorKind = "ParseFailure"
	KindEmptyDocument       ErrorKind = "EmptyDocument"
	KindMalformedResponse   ErrorKind = "MalformedResponse"
	KindInvalidInput        ErrorKind = "InvalidInput"
	KindUnauthorized        ErrorKind = "Unauthorized"
	KindRateLimited         ErrorKind = "RateLimited"
	KindUnavailable         ErrorKind = "Unavailable"
	KindPersistenceFailure  ErrorKind = "PersistenceFailure"
	KindJobPositionNotFound ErrorKind = "JobPositionNotFound"
)

// ErrJobPositionNotFound is the only error RunBatch returns to its caller.
var ErrJobPositionNotFound = errors.New("job position not found")

// ExtractionError is returned by DocumentExtractor.
type ExtractionError struct {
	Kind      ErrorKind
	FileName  string
	MediaType string
	Cause     error
}

func (e *ExtractionError) Error() string {
	switch e.Kind {
	case KindUnsupportedType:
		return fmt.Sprintf("unsupported file type %q for %s", e.MediaType, e.FileName)
	case KindEmptyDocument:
		return fmt.Sprintf("no text content extracted from %s", e.FileName)
	}
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse %s: %v", e.FileName, e.Cause)
	}
	return fmt.Sprintf("failed to parse %s", e.FileName)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ScoringError is returned by ScoringClient and the LLM clients. StatusCode is
// the upstream HTTP status when one was received.
type ScoringError struct {
	Kind       ErrorKind
	StatusCode int
	Cause      error
}

func (e *ScoringError) Error() string {
	msg := string(e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return "scoring failed: " + msg
}

func (e *ScoringError) Unwrap() error {
	return e.Cause
}

// PersistenceError wraps a failed candidate or analysis write.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// KindOf reports the ErrorKind carried by err, or "" if none.
func KindOf(err error) ErrorKind {
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr.Kind
	}
	var scoringErr *ScoringError
	if errors.As(err, &scoringErr) {
		return scoringErr.Kind
	}
	var persistenceErr *PersistenceError
	if errors.As(err, &persistenceErr) {
		return KindPersistenceFailure
	}
	if errors.Is(err, ErrJobPositionNotFound) {
		return KindJobPositionNotFound
	}
	return ""
}

// classifyStatus maps an upstream HTTP status to a scoring error kind.
func classifyStatus(code int) ErrorKind {
	switch {
	case code == 401 || code == 403:
		return KindUnauthorized
	case code == 429:
		return KindRateLimited
	default:
		return KindUnavailable
	}
}
