package adapter

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateEncoding(t *testing.T) {
	ids, mask, types := truncateEncoding([]int{101, 7, 8, 9, 102}, []int{1, 1, 1, 1, 1}, []int{0, 0, 0, 0, 0}, 4)
	assert.Equal(t, []int64{101, 7, 8, 102}, ids)
	assert.Equal(t, []int64{1, 1, 1, 1}, mask)
	assert.Equal(t, []int64{0, 0, 0, 0}, types)

	ids, mask, types = truncateEncoding([]int{101, 7, 102}, nil, nil, 8)
	assert.Equal(t, []int64{101, 7, 102}, ids)
	assert.Equal(t, []int64{1, 1, 1}, mask)
	assert.Equal(t, []int64{0, 0, 0}, types)
}

// Requires an exported encoder; set ONNX_MODEL_PATH, ONNX_TOKENIZER_PATH and optionally
// ONNX_LIBRARY_PATH
func TestONNXEmbedder_Embed(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	model, tok := os.Getenv("ONNX_MODEL_PATH"), os.Getenv("ONNX_TOKENIZER_PATH")
	if model == "" || tok == "" {
		t.Skip("ONNX model not configured")
	}

	e, err := NewONNXEmbedder(ONNXConfig{
		LibraryPath:   os.Getenv("ONNX_LIBRARY_PATH"),
		ModelPath:     model,
		TokenizerPath: tok,
	})
	require.NoError(t, err)
	defer e.Close()

	vec, err := e.Embed(context.Background(), "shortness of breath")
	require.NoError(t, err)
	assert.Len(t, vec, 768)

	require.NoError(t, e.Close())
	_, err = e.Embed(context.Background(), "fever")
	assert.Error(t, err)
}
