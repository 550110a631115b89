package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("cough", "cough"))
	assert.InDelta(t, 90.909, Ratio("coughh", "cough"), 0.001)
	assert.Equal(t, 0.0, Ratio("abc", ""))
	assert.Equal(t, 100.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
}

func TestLCSLength(t *testing.T) {
	assert.Equal(t, 7, lcsLength([]rune("headache"), []rune("haedache")))
	assert.Equal(t, 3, lcsLength([]rune("abcde"), []rune("ace")))
	assert.Equal(t, 0, lcsLength(nil, []rune("abc")))
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100.0, PartialRatio("throat", "sore throat"))
	assert.Equal(t, 100.0, PartialRatio("sore throat", "throat"))
	assert.Equal(t, 100.0, PartialRatio("", ""))
	assert.Equal(t, 0.0, PartialRatio("", "pain"))
	assert.Less(t, PartialRatio("rash", "sore throat"), 80.0)
}

func TestTokenScorers(t *testing.T) {
	assert.Equal(t, 100.0, TokenSortRatio("pain chest", "chest pain"))
	assert.Equal(t, 100.0, TokenSetRatio("severe chest pain", "chest pain"))
	assert.Equal(t, 0.0, TokenSetRatio("", "chest pain"))
	assert.Equal(t, 100.0, PartialTokenRatio("pain in the chest", "chest tightness"))
	assert.Equal(t, 0.0, PartialTokenRatio("   ", "chest"))
}

func TestWRatio(t *testing.T) {
	assert.Equal(t, 0.0, WRatio("", "fever"))
	assert.Equal(t, 100.0, WRatio("fever", "fever"))
	assert.InDelta(t, 93.333, WRatio("headach", "headache"), 0.001)
	// Reordered tokens score through the token sort ratio
	assert.InDelta(t, 95.0, WRatio("breath shortness of", "shortness of breath"), 0.001)

	// Long haystack uses the scaled partial ratio
	assert.InDelta(t, 90.0, WRatio("pain", "abdominal pain"), 0.001)

	for _, s := range []string{"fever", "cough", "headache"} {
		assert.LessOrEqual(t, WRatio("sorethroat", s), 80.0, s)
	}
}

func TestWRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"chest pain", "pain in chest"},
		{"vomitting", "vomiting"},
		{"runny nose", "nose"},
	}
	for _, p := range pairs {
		assert.InDelta(t, WRatio(p[0], p[1]), WRatio(p[1], p[0]), 0.0001, p[0])
	}
}

func TestExtractOne(t *testing.T) {
	idx, score := ExtractOne("coughh", []string{"fever", "cough", "headache"}, nil)
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 90.909, score, 0.001)

	idx, score = ExtractOne("rash", nil, WRatio)
	assert.Equal(t, -1, idx)
	assert.Equal(t, 0.0, score)

	// First choice wins ties
	idx, _ = ExtractOne("ache", []string{"ache", "ache"}, Ratio)
	assert.Equal(t, 0, idx)
}
