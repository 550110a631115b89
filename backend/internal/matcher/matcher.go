package matcher

import (
	"context"
	"sort"

	"symptom-checker/backend/internal/constants"
	"symptom-checker/backend/internal/graph"
	apperrors "symptom-checker/backend/pkg/errors"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
)

// Store runs the disease match query
type Store interface {
	MatchDiseases(ctx context.Context, symptoms []string, limit int) ([]graph.MatchResult, error)
}

// Matcher ranks diseases by how many of the given symptoms they are linked to
type Matcher struct {
	store       Store
	defaultTopN int
	logger      *zap.Logger
}

// New creates a Matcher. defaultTopN < 1 falls back to constants.DefaultTopN.
func New(store Store, defaultTopN int) *Matcher {
	if defaultTopN < 1 {
		defaultTopN = constants.DefaultTopN
	}
	return &Matcher{
		store:       store,
		defaultTopN: defaultTopN,
		logger:      logger.Named("matcher"),
	}
}

// Match returns at most topN diseases ordered by match count descending, then disease
// name ascending. An empty symptom set returns an empty list without querying the store.
// Store failures come back as *errors.ErrGraphQueryFailed.
func (m *Matcher) Match(ctx context.Context, symptoms []string, topN int) ([]graph.MatchResult, error) {
	if len(symptoms) == 0 {
		return []graph.MatchResult{}, nil
	}
	if topN < 1 {
		topN = m.defaultTopN
	}

	results, err := m.store.MatchDiseases(ctx, symptoms, topN)
	if err != nil {
		if !apperrors.IsErrorType(err, apperrors.ErrorTypeGraph) {
			err = apperrors.NewGraphQueryFailed("match diseases", err)
		}
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchCount != results[j].MatchCount {
			return results[i].MatchCount > results[j].MatchCount
		}
		return results[i].Disease < results[j].Disease
	})
	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// MatchDiseases is Match with store failures logged and reported as an empty list
func (m *Matcher) MatchDiseases(ctx context.Context, symptoms []string, topN int) []graph.MatchResult {
	results, err := m.Match(ctx, symptoms, topN)
	if err != nil {
		m.logger.Error("Disease match failed",
			zap.Strings("symptoms", symptoms),
			zap.Int("top_n", topN),
			zap.Error(err),
		)
		return []graph.MatchResult{}
	}
	return results
}
