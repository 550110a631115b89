package normalizer

import (
	"context"
	"fmt"
	"math"
)

// closestBySemantics embeds key and every vocabulary entry and returns the entry with
// the highest cosine similarity. The first entry wins ties.
func (n *Normalizer) closestBySemantics(ctx context.Context, key string, vocab *Vocabulary) (string, float64, error) {
	query, err := n.embedder.Embed(ctx, key)
	if err != nil {
		return "", 0, fmt.Errorf("embed input: %w", err)
	}

	best, bestSim := "", math.Inf(-1)
	for i, entryKey := range vocab.keys {
		vec, err := n.embedder.Embed(ctx, entryKey)
		if err != nil {
			return "", 0, fmt.Errorf("embed vocabulary entry %q: %w", vocab.entries[i], err)
		}
		sim, err := CosineSimilarity(query, vec)
		if err != nil {
			return "", 0, err
		}
		if sim > bestSim {
			best, bestSim = vocab.entries[i], sim
		}
	}
	return best, bestSim, nil
}

// CosineSimilarity returns the cosine of the angle between a and b. A zero vector has
// similarity 0 with everything.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimensions differ: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
