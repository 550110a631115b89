package constants

// Matching constants
const (
	// DefaultTopN is the number of diseases returned when the caller asks for fewer than one
	DefaultTopN = 5

	// EvaluationTopK is the rank window counted as a hit by the accuracy evaluation
	EvaluationTopK = 3
)

// Console constants
const (
	// VocabularySampleSize is how many symptom names the interactive checker prints on start
	VocabularySampleSize = 10

	// SymptomSeparator splits a raw symptom line into tokens
	SymptomSeparator = ","
)
