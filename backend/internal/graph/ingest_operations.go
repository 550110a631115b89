package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Ingestion Operations (offline graph population)
// ============================================================================

// DefaultBatchSize is the number of diseases written per transaction
const DefaultBatchSize = 100

var constraintQueries = []string{
	"CREATE CONSTRAINT disease_name IF NOT EXISTS FOR (d:Disease) REQUIRE d.name IS UNIQUE",
	"CREATE CONSTRAINT symptom_name IF NOT EXISTS FOR (s:Symptom) REQUIRE s.name IS UNIQUE",
}

const ingestBatchQuery = `
	UNWIND $rows AS row
	MERGE (d:Disease {name: row.disease})
	WITH d, row
	UNWIND row.symptoms AS symptom
	MERGE (s:Symptom {name: symptom})
	MERGE (d)-[:HAS_SYMPTOM]->(s)
`

// EnsureConstraints creates the uniqueness constraints on Disease and Symptom names
func (r *Repository) EnsureConstraints(ctx context.Context) error {
	session := r.newSession(ctx, neo4j.AccessModeWrite)
	defer r.closeSession(ctx, session)

	for _, query := range constraintQueries {
		if _, err := session.Run(ctx, query, nil); err != nil {
			return r.queryError(ctx, "create constraint", err)
		}
	}
	return nil
}

// Reset deletes every Disease and Symptom node along with their relationships
func (r *Repository) Reset(ctx context.Context) error {
	session := r.newSession(ctx, neo4j.AccessModeWrite)
	defer r.closeSession(ctx, session)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (n) WHERE n:Disease OR n:Symptom DETACH DELETE n", nil)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return r.queryError(ctx, "reset graph", err)
	}

	r.logger.Info("Disease graph cleared")
	return nil
}

// IngestDiseases merges diseases, symptoms and HAS_SYMPTOM edges in batches.
// MERGE keeps the operation idempotent, so re-running never duplicates edges.
func (r *Repository) IngestDiseases(ctx context.Context, records []DiseaseRecord, batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	rows := make([]interface{}, 0, len(records))
	for i, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			return 0, ErrInvalidDataset{Reason: fmt.Sprintf("record %d has no disease name", i+1)}
		}
		symptoms := make([]string, 0, len(rec.Symptoms))
		for _, s := range rec.Symptoms {
			if s = strings.TrimSpace(s); s != "" {
				symptoms = append(symptoms, s)
			}
		}
		rows = append(rows, map[string]interface{}{
			"disease":  name,
			"symptoms": toAnySlice(symptoms),
		})
	}

	session := r.newSession(ctx, neo4j.AccessModeWrite)
	defer r.closeSession(ctx, session)

	written := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, ingestBatchQuery, map[string]interface{}{"rows": batch})
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return written, r.queryError(ctx, "ingest diseases", err)
		}

		written += len(batch)
		r.logger.Info("Disease batch written",
			zap.Int("written", written),
			zap.Int("total", len(rows)),
		)
	}

	return written, nil
}

// CountGraph reports node and relationship counts for the disease graph
func (r *Repository) CountGraph(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	session := r.newSession(ctx, neo4j.AccessModeRead)
	defer r.closeSession(ctx, session)

	query := `
		OPTIONAL MATCH (d:Disease)
		WITH count(d) AS diseases
		OPTIONAL MATCH (s:Symptom)
		WITH diseases, count(s) AS symptoms
		OPTIONAL MATCH (:Disease)-[h:HAS_SYMPTOM]->(:Symptom)
		RETURN diseases, symptoms, count(h) AS relationships
	`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, r.queryError(ctx, "count graph", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return nil, r.queryError(ctx, "count graph", err)
	}

	return &Stats{
		Diseases:      getInt64FromRecord(record, "diseases"),
		Symptoms:      getInt64FromRecord(record, "symptoms"),
		Relationships: getInt64FromRecord(record, "relationships"),
	}, nil
}
