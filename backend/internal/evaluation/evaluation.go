package evaluation

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"symptom-checker/backend/internal/checker"
	"symptom-checker/backend/internal/constants"
	"symptom-checker/backend/internal/dataset"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
)

// Checker runs one symptom check
type Checker interface {
	Check(ctx context.Context, raw []string, topN int) checker.CheckResult
}

// CaseResult is the outcome of one evaluation case
type CaseResult struct {
	Index       int      `json:"index"`
	Symptoms    []string `json:"symptoms"`
	Normalized  []string `json:"normalized"`
	Expected    string   `json:"expected"`
	Predicted   []string `json:"predicted"` // Lower-cased, ranked
	Top1        bool     `json:"top1"`
	TopK        bool     `json:"top_k"`
	MatchFailed bool     `json:"match_failed"`
}

// Report summarizes an evaluation run
type Report struct {
	RunID    string        `json:"run_id"`
	K        int           `json:"k"`
	Total    int           `json:"total"`
	Top1     int           `json:"top1"`
	TopK     int           `json:"top_k"`
	Failed   int           `json:"failed"` // Cases whose disease query failed
	Duration time.Duration `json:"duration"`
	Results  []CaseResult  `json:"results"`
}

// Top1Accuracy is the share of cases whose first prediction is the expected disease
func (r *Report) Top1Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Top1) / float64(r.Total)
}

// TopKAccuracy is the share of cases with the expected disease among the first K predictions
func (r *Report) TopKAccuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.TopK) / float64(r.Total)
}

// Run checks every case and counts top-1 and top-k hits. Disease names are compared
// case-insensitively. k < 1 uses constants.EvaluationTopK. Cancelling ctx stops the run
// and returns the partial report with the context error.
func Run(ctx context.Context, c Checker, cases []dataset.Case, k int) (*Report, error) {
	if k < 1 {
		k = constants.EvaluationTopK
	}
	log := logger.Named("evaluation")
	report := &Report{
		RunID:   uuid.New().String(),
		K:       k,
		Results: make([]CaseResult, 0, len(cases)),
	}
	log = log.With(zap.String("run_id", report.RunID))
	start := time.Now()

	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		res := c.Check(ctx, tc.Symptoms, k)
		expected := strings.ToLower(strings.TrimSpace(tc.Expected))

		cr := CaseResult{
			Index:       i + 1,
			Symptoms:    tc.Symptoms,
			Normalized:  res.Normalized,
			Expected:    expected,
			Predicted:   make([]string, 0, len(res.Diseases)),
			MatchFailed: res.MatchFailed,
		}
		for _, d := range res.Diseases {
			cr.Predicted = append(cr.Predicted, strings.ToLower(d.Disease))
		}
		cr.Top1 = len(cr.Predicted) > 0 && cr.Predicted[0] == expected
		for j := 0; j < len(cr.Predicted) && j < k; j++ {
			if cr.Predicted[j] == expected {
				cr.TopK = true
				break
			}
		}

		report.Total++
		if cr.Top1 {
			report.Top1++
		}
		if cr.TopK {
			report.TopK++
		}
		if cr.MatchFailed {
			report.Failed++
		}
		report.Results = append(report.Results, cr)

		log.Info("Evaluation case",
			zap.Int("case", cr.Index),
			zap.Strings("symptoms", cr.Symptoms),
			zap.Strings("normalized", cr.Normalized),
			zap.String("expected", cr.Expected),
			zap.Strings("predicted", cr.Predicted),
			zap.Bool("top1", cr.Top1),
			zap.Bool("top_k", cr.TopK),
		)
	}

	report.Duration = time.Since(start)
	log.Info("Evaluation complete",
		zap.Int("total", report.Total),
		zap.Int("top1", report.Top1),
		zap.Int("top_k", report.TopK),
		zap.Int("k", k),
		zap.Float64("top1_accuracy", report.Top1Accuracy()),
		zap.Float64("top_k_accuracy", report.TopKAccuracy()),
		zap.Int("failed_queries", report.Failed),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// WriteCSV writes one line per case
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{
		"Input Symptoms", "Normalized", "Expected Disease", "Predicted Diseases",
		"Top-1 Match", fmt.Sprintf("Top-%d Match", r.K),
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, cr := range r.Results {
		if err := cw.Write([]string{
			strings.Join(cr.Symptoms, ", "),
			strings.Join(cr.Normalized, ", "),
			cr.Expected,
			strings.Join(cr.Predicted, ", "),
			strconv.FormatBool(cr.Top1),
			strconv.FormatBool(cr.TopK),
		}); err != nil {
			return fmt.Errorf("write case %d: %w", cr.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the results CSV to path, replacing any existing file
func (r *Report) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	if err := r.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
