package adapter

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
	apperrors "symptom-checker/backend/pkg/errors"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
)

// ONNXConfig describes a locally exported BERT-style encoder
type ONNXConfig struct {
	LibraryPath   string // onnxruntime shared library; empty uses the platform default
	ModelPath     string
	TokenizerPath string // HuggingFace tokenizer.json
	MaxSeqLen     int
	HiddenSize    int
}

// ONNXEmbedder runs a clinical BERT encoder in-process and returns the [CLS] vector
// of the last hidden state.
type ONNXEmbedder struct {
	cfg     ONNXConfig
	tk      *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	logger  *zap.Logger
}

var ortInit sync.Once
var ortInitErr error

// NewONNXEmbedder loads the tokenizer and model
func NewONNXEmbedder(cfg ONNXConfig) (*ONNXEmbedder, error) {
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 128
	}
	if cfg.HiddenSize <= 0 {
		cfg.HiddenSize = 768
	}

	ortInit.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", ortInitErr)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	return &ONNXEmbedder{
		cfg:     cfg,
		tk:      tk,
		session: session,
		logger:  logger.Named("onnx_embedding"),
	}, nil
}

// ModelID identifies the encoder for cache keys
func (o *ONNXEmbedder) ModelID() string {
	return "onnx:" + filepath.Base(o.cfg.ModelPath)
}

// Embed tokenizes text, runs the encoder and returns the [CLS] vector
func (o *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, apperrors.ErrEmbedderClosed
	}

	enc, err := o.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, apperrors.NewEmbeddingFailed(o.ModelID(), 1, false, fmt.Errorf("tokenize: %w", err))
	}
	ids, mask, types := truncateEncoding(enc.Ids, enc.AttentionMask, enc.TypeIds, o.cfg.MaxSeqLen)
	seqLen := int64(len(ids))
	shape := ort.NewShape(1, seqLen)

	idsT, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, o.fail(err)
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, o.fail(err)
	}
	defer maskT.Destroy()
	typesT, err := ort.NewTensor(shape, types)
	if err != nil {
		return nil, o.fail(err)
	}
	defer typesT.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, seqLen, int64(o.cfg.HiddenSize)))
	if err != nil {
		return nil, o.fail(err)
	}
	defer out.Destroy()

	if err := o.session.Run([]ort.Value{idsT, maskT, typesT}, []ort.Value{out}); err != nil {
		return nil, o.fail(err)
	}

	cls := make([]float32, o.cfg.HiddenSize)
	copy(cls, out.GetData()[:o.cfg.HiddenSize])
	return cls, nil
}

// Close releases the ORT session
func (o *ONNXEmbedder) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	return err
}

func (o *ONNXEmbedder) fail(err error) error {
	o.logger.Error("ONNX inference failed", zap.Error(err))
	return apperrors.NewEmbeddingFailed(o.ModelID(), 1, false, err)
}

// truncateEncoding converts token columns to int64 and cuts them to maxLen, keeping the
// final (separator) token. Missing mask/type columns default to 1/0.
func truncateEncoding(ids, mask, types []int, maxLen int) ([]int64, []int64, []int64) {
	n := len(ids)
	keep := make([]int, 0, n)
	if n > maxLen && maxLen > 1 {
		for i := 0; i < maxLen-1; i++ {
			keep = append(keep, i)
		}
		keep = append(keep, n-1)
	} else {
		for i := 0; i < n; i++ {
			keep = append(keep, i)
		}
	}

	outIDs := make([]int64, len(keep))
	outMask := make([]int64, len(keep))
	outTypes := make([]int64, len(keep))
	for j, i := range keep {
		outIDs[j] = int64(ids[i])
		outMask[j] = 1
		if i < len(mask) {
			outMask[j] = int64(mask[i])
		}
		if i < len(types) {
			outTypes[j] = int64(types[i])
		}
	}
	return outIDs, outMask, outTypes
}
