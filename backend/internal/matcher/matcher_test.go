package matcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"symptom-checker/backend/internal/graph"
	apperrors "symptom-checker/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphStore evaluates the match query over an in-memory Disease -> Symptoms table.
// Rows come back in table order, not ranked, so the matcher's own ordering is exercised.
type graphStore struct {
	diseases []graph.DiseaseRecord
	err      error
	calls    int
	limits   []int
}

func (s *graphStore) MatchDiseases(ctx context.Context, symptoms []string, limit int) ([]graph.MatchResult, error) {
	s.calls++
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return nil, s.err
	}

	query := map[string]bool{}
	for _, sym := range symptoms {
		query[strings.ToLower(sym)] = true
	}

	var out []graph.MatchResult
	for _, d := range s.diseases {
		var matched []string
		for _, sym := range d.Symptoms {
			if query[strings.ToLower(sym)] {
				matched = append(matched, sym)
			}
		}
		if len(matched) > 0 {
			out = append(out, graph.MatchResult{Disease: d.Name, MatchedSymptoms: matched, MatchCount: len(matched)})
		}
	}
	return out, nil
}

func fluAndCold() *graphStore {
	return &graphStore{diseases: []graph.DiseaseRecord{
		{Name: "Cold", Symptoms: []string{"cough"}},
		{Name: "Flu", Symptoms: []string{"fever", "cough"}},
	}}
}

func TestMatch_RanksByMatchCount(t *testing.T) {
	m := New(fluAndCold(), 5)

	results, err := m.Match(context.Background(), []string{"fever", "cough"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []graph.MatchResult{
		{Disease: "Flu", MatchedSymptoms: []string{"fever", "cough"}, MatchCount: 2},
		{Disease: "Cold", MatchedSymptoms: []string{"cough"}, MatchCount: 1},
	}, results)
}

func TestMatchDiseases_StoreFailureReturnsEmpty(t *testing.T) {
	store := &graphStore{err: errors.New("connection refused")}
	m := New(store, 5)

	results := m.MatchDiseases(context.Background(), []string{"fever"}, 5)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 1, store.calls)
}

func TestMatch_StoreFailureIsTyped(t *testing.T) {
	m := New(&graphStore{err: errors.New("connection refused")}, 5)

	_, err := m.Match(context.Background(), []string{"fever"}, 5)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeGraph))

	var qErr *apperrors.ErrGraphQueryFailed
	assert.ErrorAs(t, err, &qErr)

	// An already typed store error passes through unchanged
	typed := apperrors.NewGraphQueryFailed("match diseases", errors.New("timeout"))
	m = New(&graphStore{err: typed}, 5)
	_, err = m.Match(context.Background(), []string{"fever"}, 5)
	assert.Same(t, typed, err)
}

func TestMatch_EmptySymptomsSkipsStore(t *testing.T) {
	store := fluAndCold()
	m := New(store, 5)

	for _, topN := range []int{-1, 0, 1, 5, 100} {
		results, err := m.Match(context.Background(), nil, topN)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}
	assert.Zero(t, store.calls)
}

func TestMatch_NeverExceedsTopN(t *testing.T) {
	store := &graphStore{}
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		store.diseases = append(store.diseases, graph.DiseaseRecord{Name: name, Symptoms: []string{"fatigue"}})
	}
	m := New(store, 5)

	for _, topN := range []int{1, 3, 5} {
		results, err := m.Match(context.Background(), []string{"fatigue"}, topN)
		require.NoError(t, err)
		assert.Len(t, results, topN)
	}
}

func TestMatch_DefaultTopN(t *testing.T) {
	store := &graphStore{}
	m := New(store, 0)

	_, err := m.Match(context.Background(), []string{"fatigue"}, 0)
	require.NoError(t, err)
	_, err = m.Match(context.Background(), []string{"fatigue"}, -3)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 5}, store.limits)

	store.limits = nil
	_, _ = New(store, 2).Match(context.Background(), []string{"fatigue"}, 0)
	assert.Equal(t, []int{2}, store.limits)
}

func TestMatch_TieBreakByDiseaseName(t *testing.T) {
	store := &graphStore{diseases: []graph.DiseaseRecord{
		{Name: "Migraine", Symptoms: []string{"headache", "nausea"}},
		{Name: "Dengue", Symptoms: []string{"fever"}},
		{Name: "Bronchitis", Symptoms: []string{"fever"}},
		{Name: "Gastritis", Symptoms: []string{"nausea", "fever"}},
	}}
	m := New(store, 5)

	results, err := m.Match(context.Background(), []string{"fever", "nausea", "headache"}, 5)
	require.NoError(t, err)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Disease
	}
	assert.Equal(t, []string{"Gastritis", "Migraine", "Bronchitis", "Dengue"}, names)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchCount, results[i].MatchCount)
	}
}
