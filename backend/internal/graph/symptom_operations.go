package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Symptom Vocabulary Operations
// ============================================================================

const vocabularyQuery = `
	MATCH (s:Symptom)
	RETURN s.name AS symptom
	ORDER BY s.name
`

// FetchVocabulary returns every canonical Symptom name ordered by name
func (r *Repository) FetchVocabulary(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	session := r.newSession(ctx, neo4j.AccessModeRead)
	defer r.closeSession(ctx, session)

	result, err := session.Run(ctx, vocabularyQuery, nil)
	if err != nil {
		return nil, r.queryError(ctx, "fetch vocabulary", err)
	}

	symptoms := []string{}
	for result.Next(ctx) {
		if name := getStringFromRecord(result.Record(), "symptom"); name != "" {
			symptoms = append(symptoms, name)
		}
	}
	if err := result.Err(); err != nil {
		return nil, r.queryError(ctx, "fetch vocabulary", err)
	}

	r.logger.Debug("Vocabulary fetched", zap.Int("symptoms", len(symptoms)))
	return symptoms, nil
}

// GetDiseaseSymptoms returns the symptoms linked to a disease, matched case-insensitively
func (r *Repository) GetDiseaseSymptoms(ctx context.Context, disease string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	session := r.newSession(ctx, neo4j.AccessModeRead)
	defer r.closeSession(ctx, session)

	query := `
		MATCH (d:Disease)-[:HAS_SYMPTOM]->(s:Symptom)
		WHERE toLower(d.name) = toLower($disease)
		RETURN s.name AS symptom
		ORDER BY s.name
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"disease": disease,
	})
	if err != nil {
		return nil, r.queryError(ctx, "get disease symptoms", err)
	}

	symptoms := []string{}
	for result.Next(ctx) {
		symptoms = append(symptoms, getStringFromRecord(result.Record(), "symptom"))
	}
	if err := result.Err(); err != nil {
		return nil, r.queryError(ctx, "get disease symptoms", err)
	}
	return symptoms, nil
}
