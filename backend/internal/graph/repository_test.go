package graph

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowerUnique(t *testing.T) {
	got := lowerUnique([]string{" Fever", "cough", "FEVER", "", "  ", "Sore Throat"})
	assert.Equal(t, []string{"fever", "cough", "sore throat"}, got)
}

func TestMatchDiseases_EmptyInputSkipsStore(t *testing.T) {
	// A nil driver would panic if a session were opened
	repo := NewRepository(nil, Options{})

	results, err := repo.MatchDiseases(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = repo.MatchDiseases(context.Background(), []string{"  "}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewRepository_DefaultTimeout(t *testing.T) {
	repo := NewRepository(nil, Options{})
	assert.Equal(t, DefaultTimeout, repo.timeout)
	assert.NoError(t, repo.Close(context.Background()))
}

type recordingCloser struct {
	ctxErr      error
	hasDeadline bool
}

func (c *recordingCloser) Close(ctx context.Context) error {
	c.ctxErr = ctx.Err()
	_, c.hasDeadline = ctx.Deadline()
	return nil
}

func TestCloseSession_UsesLiveContext(t *testing.T) {
	repo := NewRepository(nil, Options{})

	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()

	closer := &recordingCloser{}
	repo.closeSession(expired, closer)
	assert.NoError(t, closer.ctxErr)
	assert.True(t, closer.hasDeadline)
}

func TestMatchDiseasesQuery_CountsCollectedNames(t *testing.T) {
	assert.Contains(t, matchDiseasesQuery, "size(matched_symptoms) AS match_count")
	assert.Contains(t, matchDiseasesQuery, "toLower(s.name) AS key")
}

// The tests below require a running Neo4j instance.
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD environment variables.

func TestRepository_MatchDiseases(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Skipf("Neo4j unavailable: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver, Options{Timeout: 5 * time.Second})
	suffix := time.Now().Format("20060102150405")
	flu, cold := "Flu-"+suffix, "Cold-"+suffix
	fever, cough := "fever-"+suffix, "cough-"+suffix

	defer cleanup(t, driver, []string{flu, cold}, []string{fever, cough})

	_, err = repo.IngestDiseases(ctx, []DiseaseRecord{
		{Name: flu, Symptoms: []string{fever, cough}},
		{Name: cold, Symptoms: []string{cough}},
	}, 1)
	require.NoError(t, err)

	results, err := repo.MatchDiseases(ctx, []string{fever, cough}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, flu, results[0].Disease)
	assert.Equal(t, 2, results[0].MatchCount)
	assert.ElementsMatch(t, []string{fever, cough}, results[0].MatchedSymptoms)
	assert.Equal(t, cold, results[1].Disease)
	assert.Equal(t, 1, results[1].MatchCount)

	limited, err := repo.MatchDiseases(ctx, []string{fever, cough}, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	vocabulary, err := repo.FetchVocabulary(ctx)
	require.NoError(t, err)
	assert.Contains(t, vocabulary, fever)
	assert.Contains(t, vocabulary, cough)
}

func TestRepository_IngestIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Skipf("Neo4j unavailable: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver, Options{})
	suffix := time.Now().Format("20060102150405")
	disease, symptom := "Measles-"+suffix, "rash-"+suffix

	defer cleanup(t, driver, []string{disease}, []string{symptom})

	records := []DiseaseRecord{{Name: disease, Symptoms: []string{symptom}}}
	for i := 0; i < 2; i++ {
		_, err := repo.IngestDiseases(ctx, records, DefaultBatchSize)
		require.NoError(t, err)
	}

	symptoms, err := repo.GetDiseaseSymptoms(ctx, disease)
	require.NoError(t, err)
	assert.Equal(t, []string{symptom}, symptoms)
}

func TestRepository_MatchDiseasesFoldsCaseVariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Skipf("Neo4j unavailable: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver, Options{})
	suffix := time.Now().Format("20060102150405")
	disease := "Typhoid-" + suffix
	upper, lower := "Fever-"+suffix, "fever-"+suffix

	defer cleanup(t, driver, []string{disease}, []string{upper, lower})

	_, err = repo.IngestDiseases(ctx, []DiseaseRecord{{Name: disease, Symptoms: []string{upper, lower}}}, DefaultBatchSize)
	require.NoError(t, err)

	results, err := repo.MatchDiseases(ctx, []string{lower}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].MatchCount)
	assert.Equal(t, []string{upper}, results[0].MatchedSymptoms)
}

func TestRepository_IngestRejectsBlankDisease(t *testing.T) {
	repo := NewRepository(nil, Options{})
	_, err := repo.IngestDiseases(context.Background(), []DiseaseRecord{{Name: " "}}, 10)

	var invalid ErrInvalidDataset
	assert.ErrorAs(t, err, &invalid)
}

func cleanup(t *testing.T, driver neo4j.DriverWithContext, diseases, symptoms []string) {
	t.Helper()
	ctx := context.Background()
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, _ = session.Run(ctx, "MATCH (d:Disease) WHERE d.name IN $names DETACH DELETE d",
		map[string]interface{}{"names": toAnySlice(diseases)})
	_, _ = session.Run(ctx, "MATCH (s:Symptom) WHERE s.name IN $names DETACH DELETE s",
		map[string]interface{}{"names": toAnySlice(symptoms)})
}

func createTestDriver() (neo4j.DriverWithContext, error) {
	uri := envOr("NEO4J_URI", "bolt://localhost:7687")
	user := envOr("NEO4J_USER", "neo4j")
	password := envOr("NEO4J_PASSWORD", "password")

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return driver, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
