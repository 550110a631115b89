package normalizer

import (
	"context"

	"symptom-checker/backend/internal/fuzzy"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
)

const (
	// DefaultFuzzyThreshold is the fuzzy score (0-100) a match must exceed
	DefaultFuzzyThreshold = 80.0
	// DefaultSemanticThreshold is the cosine similarity a match must exceed
	DefaultSemanticThreshold = 0.85
)

// Embedder produces a dense vector for a text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Layer identifies the resolution strategy that produced a match
type Layer int

const (
	LayerNone Layer = iota
	LayerAlias
	LayerExact
	LayerFuzzy
	LayerSemantic
)

func (l Layer) String() string {
	switch l {
	case LayerAlias:
		return "alias"
	case LayerExact:
		return "exact"
	case LayerFuzzy:
		return "fuzzy"
	case LayerSemantic:
		return "semantic"
	default:
		return "none"
	}
}

// MarshalText renders the layer name in JSON payloads
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Resolution describes how a raw phrase was resolved
type Resolution struct {
	Input     string  `json:"input"`
	Canonical string  `json:"canonical,omitempty"`
	Layer     Layer   `json:"layer"`
	Score     float64 `json:"score,omitempty"` // Fuzzy score or cosine similarity
}

// Resolved reports whether any layer produced a canonical name
func (r Resolution) Resolved() bool {
	return r.Layer != LayerNone
}

// Normalizer resolves free-text symptom phrases to canonical vocabulary entries.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	aliases           AliasMap
	fuzzyThreshold    float64
	semanticThreshold float64
	embedder          Embedder
	logger            *zap.Logger
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithAliases replaces the alias table
func WithAliases(aliases AliasMap) Option {
	return func(n *Normalizer) { n.aliases = aliases }
}

// WithFuzzyThreshold sets the fuzzy score a match must exceed
func WithFuzzyThreshold(threshold float64) Option {
	return func(n *Normalizer) { n.fuzzyThreshold = threshold }
}

// WithSemanticThreshold sets the cosine similarity a match must exceed
func WithSemanticThreshold(threshold float64) Option {
	return func(n *Normalizer) { n.semanticThreshold = threshold }
}

// New creates a Normalizer. A nil embedder disables the semantic layer.
func New(embedder Embedder, opts ...Option) *Normalizer {
	n := &Normalizer{
		aliases:           DefaultAliases(),
		fuzzyThreshold:    DefaultFuzzyThreshold,
		semanticThreshold: DefaultSemanticThreshold,
		embedder:          embedder,
		logger:            logger.Named("normalizer"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the canonical name for raw, or false when every layer fails
func (n *Normalizer) Normalize(ctx context.Context, raw string, vocab *Vocabulary) (string, bool) {
	res := n.Resolve(ctx, raw, vocab)
	return res.Canonical, res.Resolved()
}

// Resolve runs the layers in order (alias, exact, fuzzy, semantic); the first hit wins
func (n *Normalizer) Resolve(ctx context.Context, raw string, vocab *Vocabulary) Resolution {
	key := Key(raw)
	res := Resolution{Input: raw}
	if key == "" {
		return res
	}

	if canonical, ok := n.aliases.Lookup(key); ok {
		return n.hit(res, canonical, LayerAlias, 100)
	}

	if vocab.Len() == 0 {
		return res
	}

	if entry, ok := vocab.lookup(key); ok {
		return n.hit(res, entry, LayerExact, 100)
	}

	if idx, score := fuzzy.ExtractOne(key, vocab.keys, fuzzy.WRatio); idx >= 0 && score > n.fuzzyThreshold {
		return n.hit(res, vocab.entries[idx], LayerFuzzy, score)
	}

	if n.embedder == nil {
		return res
	}
	entry, sim, err := n.closestBySemantics(ctx, key, vocab)
	if err != nil {
		n.logger.Warn("Semantic match unavailable, symptom left unresolved",
			zap.String("input", raw),
			zap.Error(err),
		)
		return res
	}
	if sim > n.semanticThreshold {
		return n.hit(res, entry, LayerSemantic, sim)
	}

	n.logger.Debug("Symptom unresolved",
		zap.String("input", raw),
		zap.String("closest", entry),
		zap.Float64("similarity", sim),
	)
	return res
}

func (n *Normalizer) hit(res Resolution, canonical string, layer Layer, score float64) Resolution {
	res.Canonical = canonical
	res.Layer = layer
	res.Score = score
	n.logger.Debug("Symptom resolved",
		zap.String("input", res.Input),
		zap.String("canonical", canonical),
		zap.Stringer("layer", layer),
		zap.Float64("score", score),
	)
	return res
}
