package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"symptom-checker/backend/internal/checker"
	"symptom-checker/backend/internal/graph"
	"symptom-checker/backend/internal/matcher"
	"symptom-checker/backend/internal/normalizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	err error
}

func (s *stubStore) FetchVocabulary(ctx context.Context) ([]string, error) {
	return []string{"fever", "cough", "headache"}, nil
}

func (s *stubStore) MatchDiseases(ctx context.Context, symptoms []string, limit int) ([]graph.MatchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []graph.MatchResult{
		{Disease: "Cold", MatchedSymptoms: []string{"cough"}, MatchCount: 1},
		{Disease: "Flu", MatchedSymptoms: []string{"fever", "cough"}, MatchCount: 2},
	}, nil
}

func newTestSession(t *testing.T, store *stubStore) *checker.Session {
	t.Helper()
	s, err := checker.NewSession(context.Background(), store, normalizer.New(nil), matcher.New(store, 5))
	require.NoError(t, err)
	return s
}

func TestRun(t *testing.T) {
	s := newTestSession(t, &stubStore{})
	in := strings.NewReader("fvr, cough, blorp\n\nquit\nfever\n")
	var out bytes.Buffer

	run(context.Background(), s, in, &out, 5)

	text := out.String()
	assert.Contains(t, text, "Loaded 3 known symptoms, e.g. fever, cough, headache")
	assert.Contains(t, text, "Unrecognized symptoms: blorp")
	assert.Contains(t, text, "Normalized symptoms: fever, cough")
	assert.Contains(t, text, "1. Flu (2 matched: fever, cough)")
	assert.Contains(t, text, "2. Cold (1 matched: cough)")
	// Input after quit is not processed
	assert.Equal(t, 1, strings.Count(text, "Possible matching diseases"))
}

func TestRun_StopsAtEOF(t *testing.T) {
	s := newTestSession(t, &stubStore{})
	var out bytes.Buffer

	run(context.Background(), s, strings.NewReader("zzzz"), &out, 5)
	assert.Contains(t, out.String(), "No valid symptoms found.")
}

func TestPrintResult_StoreFailure(t *testing.T) {
	s := newTestSession(t, &stubStore{err: errors.New("connection refused")})
	var out bytes.Buffer

	printResult(&out, s.CheckLine(context.Background(), "fever", 5))
	assert.Contains(t, out.String(), "Disease lookup failed")
}
