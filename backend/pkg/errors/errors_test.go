package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorType_TypedErrors(t *testing.T) {
	cause := stderrors.New("connection refused")

	assert.True(t, IsErrorType(NewGraphQueryFailed("match diseases", cause), ErrorTypeGraph))
	assert.True(t, IsErrorType(NewVocabularyUnavailable(cause), ErrorTypeVocabulary))
	assert.True(t, IsErrorType(NewEmbeddingFailed("clinical", 3, true, cause), ErrorTypeEmbedding))
	assert.False(t, IsErrorType(NewGraphQueryFailed("match diseases", cause), ErrorTypeEmbedding))
	assert.False(t, IsErrorType(cause, ErrorTypeGraph))
	assert.False(t, IsErrorType(nil, ErrorTypeGraph))
}

func TestIsErrorType_Wrapped(t *testing.T) {
	err := fmt.Errorf("session start: %w", NewVocabularyUnavailable(ErrVocabularyEmpty))

	assert.True(t, IsErrorType(err, ErrorTypeVocabulary))
	assert.True(t, stderrors.Is(err, ErrVocabularyEmpty))

	var vocabErr *ErrVocabularyUnavailable
	assert.True(t, stderrors.As(err, &vocabErr))
}

func TestIsRetryable(t *testing.T) {
	cause := stderrors.New("boom")

	assert.True(t, IsRetryable(NewEmbeddingFailed("clinical", 3, true, cause)))
	assert.False(t, IsRetryable(NewEmbeddingFailed("clinical", 3, false, cause)))
	assert.True(t, IsRetryable(NewGraphConnectionFailed("bolt://localhost:7687", cause)))
	assert.False(t, IsRetryable(NewContextTimeout("match diseases", time.Second, cause)))
	assert.False(t, IsRetryable(cause))
}

func TestBaseError_Message(t *testing.T) {
	err := NewGraphQueryFailed("fetch vocabulary", stderrors.New("timeout"))
	assert.Equal(t, "[graph] query failed: fetch vocabulary: timeout", err.Error())

	assert.Equal(t, "[embedding] embedder is closed", ErrEmbedderClosed.Error())
}
