package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	apperrors "symptom-checker/backend/pkg/errors"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint (LiteLLM, TEI or a
// hosted clinical encoder) to turn symptom phrases into vectors.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// EmbedderOption configures an OpenAIEmbedder
type EmbedderOption func(*OpenAIEmbedder)

// WithRetry sets the attempt count and the linear backoff step between attempts
func WithRetry(maxRetries int, backoff time.Duration) EmbedderOption {
	return func(e *OpenAIEmbedder) {
		if maxRetries > 0 {
			e.maxRetries = maxRetries
		}
		e.backoff = backoff
	}
}

// NewOpenAIEmbedder creates an embedder against baseURL (without the /v1 suffix)
func NewOpenAIEmbedder(baseURL, apiKey, model string, opts ...EmbedderOption) *OpenAIEmbedder {
	// Self-hosted gateways accept any key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	e := &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		maxRetries: 3,
		backoff:    time.Second,
		logger:     logger.Named("embedding"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ModelID identifies the encoder for cache keys
func (e *OpenAIEmbedder) ModelID() string {
	return e.model
}

// Embed returns the vector for a single text
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per input, in input order
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	}

	// Retry logic with linear backoff
	var resp openai.EmbeddingResponse
	var err, lastErr error
	attempts := 0
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * e.backoff
			e.logger.Warn("Retrying embedding request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", wait),
			)
			select {
			case <-ctx.Done():
				return nil, apperrors.NewEmbeddingFailed(e.model, attempts, false, ctx.Err())
			case <-time.After(wait):
			}
		}

		attempts++
		resp, err = e.client.CreateEmbeddings(ctx, req)
		if err == nil {
			break
		}

		e.logger.Error("Embedding request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", e.model),
		)
		lastErr = apperrors.NewEmbeddingFailed(e.model, attempts, retryable(err), err)
		if !apperrors.IsRetryable(lastErr) {
			break
		}
	}

	if err != nil {
		return nil, lastErr
	}

	if len(resp.Data) != len(texts) {
		return nil, apperrors.NewEmbeddingFailed(e.model, attempts, false,
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) || len(d.Embedding) == 0 {
			return nil, apperrors.NewEmbeddingFailed(e.model, attempts, false,
				fmt.Errorf("malformed embedding at index %d", d.Index))
		}
		out[d.Index] = d.Embedding
	}
	for i, vec := range out {
		if vec == nil {
			return nil, apperrors.NewEmbeddingFailed(e.model, attempts, false,
				fmt.Errorf("missing embedding for input %d", i))
		}
	}

	e.logger.Debug("Embeddings generated",
		zap.String("model", e.model),
		zap.Int("inputs", len(texts)),
	)
	return out, nil
}

// retryable reports whether an upstream failure is worth another attempt
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		// Transport-level failures (connection refused, reset) carry no status
		return true
	}
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
