package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeVocabulary represents failures loading the symptom vocabulary
	ErrorTypeVocabulary ErrorType = "vocabulary"
	// ErrorTypeEmbedding represents embedding service errors
	ErrorTypeEmbedding ErrorType = "embedding"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrType reports the error category. Typed errors embedding *BaseError inherit it.
func (e *BaseError) ErrType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Vocabulary Errors

// ErrVocabularyUnavailable is returned when the symptom vocabulary cannot be loaded.
// It is fatal to the session that requested it.
type ErrVocabularyUnavailable struct {
	*BaseError
}

func NewVocabularyUnavailable(err error) *ErrVocabularyUnavailable {
	return &ErrVocabularyUnavailable{
		BaseError: NewBaseError(ErrorTypeVocabulary, "symptom vocabulary unavailable", err),
	}
}

// ErrVocabularyEmpty is wrapped by ErrVocabularyUnavailable when the store holds no symptoms
var ErrVocabularyEmpty = stderrors.New("graph store returned no symptoms")

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// Embedding Errors

// ErrEmbeddingFailed is returned when the embedding service cannot produce a vector
type ErrEmbeddingFailed struct {
	*BaseError
	Model     string
	Attempts  int
	Retryable bool
}

func NewEmbeddingFailed(model string, attempts int, retryable bool, err error) *ErrEmbeddingFailed {
	return &ErrEmbeddingFailed{
		BaseError: NewBaseError(ErrorTypeEmbedding, fmt.Sprintf("embedding request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
		Retryable: retryable,
	}
}

// ErrEmbedderClosed is returned when an embedder is used after Close
var ErrEmbedderClosed = NewBaseError(ErrorTypeEmbedding, "embedder is closed", nil)

// Context Errors

// ErrContextTimeout is returned when context times out
type ErrContextTimeout struct {
	*BaseError
	Operation string
	Timeout   time.Duration
}

func NewContextTimeout(operation string, timeout time.Duration, err error) *ErrContextTimeout {
	return &ErrContextTimeout{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context timeout: %s (timeout: %v)", operation, timeout), err),
		Operation: operation,
		Timeout:   timeout,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type typed interface {
	ErrType() ErrorType
}

// IsErrorType checks if an error, or any error it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if t, ok := err.(typed); ok && t.ErrType() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	var embErr *ErrEmbeddingFailed
	if stderrors.As(err, &embErr) {
		return embErr.Retryable
	}
	// Graph connection errors are retryable
	if IsErrorType(err, ErrorTypeGraph) {
		return true
	}
	return false
}
