package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Disease Matching Operations
// ============================================================================

// Symptom nodes whose names differ only in case collapse to one matched entry, so the
// match count is always the length of matched_symptoms. Ties are broken by disease name
// so that results do not depend on traversal order.
const matchDiseasesQuery = `
	MATCH (d:Disease)-[:HAS_SYMPTOM]->(s:Symptom)
	WHERE toLower(s.name) IN $symptoms
	WITH d, toLower(s.name) AS key, min(s.name) AS name
	WITH d, collect(name) AS matched_symptoms
	RETURN d.name AS disease, matched_symptoms, size(matched_symptoms) AS match_count
	ORDER BY match_count DESC, disease ASC
	LIMIT $limit
`

// MatchDiseases returns diseases sharing at least one of the given symptoms, ordered by
// match count descending then name ascending, bounded by limit. Symptom names are
// lower-cased before querying. An empty symptom set returns no rows without a round trip.
func (r *Repository) MatchDiseases(ctx context.Context, symptoms []string, limit int) ([]MatchResult, error) {
	keys := lowerUnique(symptoms)
	if len(keys) == 0 || limit < 1 {
		return []MatchResult{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	session := r.newSession(ctx, neo4j.AccessModeRead)
	defer r.closeSession(ctx, session)

	result, err := session.Run(ctx, matchDiseasesQuery, map[string]interface{}{
		"symptoms": toAnySlice(keys),
		"limit":    int64(limit),
	})
	if err != nil {
		return nil, r.queryError(ctx, "match diseases", err)
	}

	matches := []MatchResult{}
	for result.Next(ctx) {
		record := result.Record()
		matches = append(matches, MatchResult{
			Disease:         getStringFromRecord(record, "disease"),
			MatchedSymptoms: getStringSliceFromRecord(record, "matched_symptoms"),
			MatchCount:      getIntFromRecord(record, "match_count"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, r.queryError(ctx, "match diseases", err)
	}

	r.logger.Debug("Diseases matched",
		zap.Strings("symptoms", keys),
		zap.Int("limit", limit),
		zap.Int("results", len(matches)),
	)
	return matches, nil
}
