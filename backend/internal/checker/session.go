package checker

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"symptom-checker/backend/internal/constants"
	"symptom-checker/backend/internal/graph"
	"symptom-checker/backend/internal/matcher"
	"symptom-checker/backend/internal/normalizer"
	apperrors "symptom-checker/backend/pkg/errors"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VocabularyStore loads the canonical symptom names
type VocabularyStore interface {
	FetchVocabulary(ctx context.Context) ([]string, error)
}

// EmbeddingCache is the session-scoped embedding memo shared with the normalizer
type EmbeddingCache interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Reset()
}

// CheckResult is the outcome of one symptom check. Unresolved inputs are reported, never
// treated as errors. MatchFailed distinguishes a store failure from "no diseases matched".
type CheckResult struct {
	Normalized  []string                `json:"normalized"`
	Unresolved  []string                `json:"unresolved"`
	Resolutions []normalizer.Resolution `json:"resolutions"`
	Diseases    []graph.MatchResult     `json:"diseases"`
	MatchFailed bool                    `json:"match_failed"`
}

// Session owns the vocabulary loaded at start-up and the embedding cache used while
// normalizing against it. It is safe for concurrent use.
type Session struct {
	vocab       *normalizer.Vocabulary
	normalizer  *normalizer.Normalizer
	matcher     *matcher.Matcher
	cache       EmbeddingCache
	warmWorkers int
	closeOnce   sync.Once
	logger      *zap.Logger
}

// Option configures a Session
type Option func(*Session)

// WithEmbeddingCache pre-computes vocabulary embeddings into cache using up to workers
// concurrent calls, and resets the cache on Close
func WithEmbeddingCache(cache EmbeddingCache, workers int) Option {
	return func(s *Session) {
		s.cache = cache
		s.warmWorkers = workers
	}
}

// NewSession fetches the vocabulary and prepares the session. A fetch failure or an empty
// vocabulary returns *errors.ErrVocabularyUnavailable.
func NewSession(ctx context.Context, store VocabularyStore, norm *normalizer.Normalizer, m *matcher.Matcher, opts ...Option) (*Session, error) {
	s := &Session{
		normalizer: norm,
		matcher:    m,
		logger:     logger.Named("checker"),
	}
	for _, opt := range opts {
		opt(s)
	}

	names, err := store.FetchVocabulary(ctx)
	if err != nil {
		s.logger.Error("Failed to load symptom vocabulary", zap.Error(err))
		return nil, apperrors.NewVocabularyUnavailable(err)
	}
	s.vocab = normalizer.NewVocabulary(names)
	if s.vocab.Len() == 0 {
		s.logger.Error("Symptom vocabulary is empty")
		return nil, apperrors.NewVocabularyUnavailable(apperrors.ErrVocabularyEmpty)
	}

	s.logger.Info("Symptom vocabulary loaded", zap.Int("symptoms", s.vocab.Len()))

	if s.cache != nil && s.warmWorkers > 0 {
		s.warm(ctx)
	}
	return s, nil
}

// warm embeds every vocabulary key so the first semantic lookup does not pay for the whole
// vocabulary. Failures are logged; the semantic layer retries them on demand.
func (s *Session) warm(ctx context.Context) {
	keys := s.vocab.Keys()
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.warmWorkers)
	for _, key := range keys {
		g.Go(func() error {
			if _, err := s.cache.Embed(gctx, key); err != nil {
				failed.Add(1)
				s.logger.Debug("Vocabulary embedding failed", zap.String("symptom", key), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		s.logger.Warn("Vocabulary embedding warm-up incomplete",
			zap.Int("symptoms", len(keys)),
			zap.Int32("failed", n),
		)
		return
	}
	s.logger.Info("Vocabulary embeddings warmed", zap.Int("symptoms", len(keys)))
}

// Vocabulary returns the session's vocabulary
func (s *Session) Vocabulary() *normalizer.Vocabulary {
	return s.vocab
}

// Normalize resolves a single raw phrase against the session vocabulary
func (s *Session) Normalize(ctx context.Context, raw string) normalizer.Resolution {
	return s.normalizer.Resolve(ctx, raw, s.vocab)
}

// Check normalizes raw symptoms and ranks matching diseases. Blank inputs are ignored and
// normalized names are de-duplicated in first-seen order.
func (s *Session) Check(ctx context.Context, raw []string, topN int) CheckResult {
	result := CheckResult{
		Normalized:  []string{},
		Unresolved:  []string{},
		Resolutions: []normalizer.Resolution{},
		Diseases:    []graph.MatchResult{},
	}

	seen := map[string]bool{}
	for _, token := range raw {
		if strings.TrimSpace(token) == "" {
			continue
		}
		res := s.Normalize(ctx, token)
		result.Resolutions = append(result.Resolutions, res)
		if !res.Resolved() {
			result.Unresolved = append(result.Unresolved, token)
			continue
		}
		if k := normalizer.Key(res.Canonical); !seen[k] {
			seen[k] = true
			result.Normalized = append(result.Normalized, res.Canonical)
		}
	}

	diseases, err := s.matcher.Match(ctx, result.Normalized, topN)
	if err != nil {
		s.logger.Error("Disease match failed",
			zap.Strings("symptoms", result.Normalized),
			zap.Error(err),
		)
		result.MatchFailed = true
		return result
	}
	result.Diseases = diseases

	s.logger.Debug("Symptom check complete",
		zap.Int("inputs", len(raw)),
		zap.Int("normalized", len(result.Normalized)),
		zap.Int("unresolved", len(result.Unresolved)),
		zap.Int("diseases", len(result.Diseases)),
	)
	return result
}

// CheckLine is Check over a comma-separated input line
func (s *Session) CheckLine(ctx context.Context, line string, topN int) CheckResult {
	return s.Check(ctx, ParseSymptoms(line), topN)
}

// Close releases the session's embedding cache. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.cache != nil {
			s.cache.Reset()
		}
		s.logger.Debug("Session closed")
	})
}

// ParseSymptoms splits a comma-separated line into trimmed, non-empty tokens
func ParseSymptoms(line string) []string {
	tokens := []string{}
	for _, part := range strings.Split(line, constants.SymptomSeparator) {
		if t := strings.TrimSpace(part); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
