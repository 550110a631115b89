package graph

// MatchResult is a candidate disease for a query symptom set. It is produced fresh per
// query and never persisted.
type MatchResult struct {
	Disease         string   `json:"disease"`
	MatchedSymptoms []string `json:"matched_symptoms"` // Store traversal order, display casing
	MatchCount      int      `json:"match_count"`
}

// DiseaseRecord is one Disease and the symptoms it is linked to, used for ingestion
type DiseaseRecord struct {
	Name     string   `json:"name"`
	Symptoms []string `json:"symptoms"`
}

// Stats summarizes the size of the disease/symptom graph
type Stats struct {
	Diseases      int64 `json:"diseases"`
	Symptoms      int64 `json:"symptoms"`
	Relationships int64 `json:"relationships"`
}
