package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"symptom-checker/backend/internal/app"
	"symptom-checker/backend/internal/checker"
	"symptom-checker/backend/internal/constants"
	"symptom-checker/backend/pkg/config"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	topN := flag.Int("top", 0, "Diseases to show, 0 uses DEFAULT_TOP_N")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Keep the console readable; LOG_LEVEL still overrides
	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	if err := logger.Init(cfg.Env, level); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	ctx := context.Background()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to start symptom checker", zap.Error(err))
	}
	defer a.Close(context.Background())

	if *topN < 1 {
		*topN = cfg.DefaultTopN
	}
	run(ctx, a.Session, os.Stdin, os.Stdout, *topN)
}

// run reads one comma-separated symptom line per prompt until EOF or "quit"
func run(ctx context.Context, s *checker.Session, in io.Reader, out io.Writer, topN int) {
	entries := s.Vocabulary().Entries()
	sample := entries
	if len(sample) > constants.VocabularySampleSize {
		sample = sample[:constants.VocabularySampleSize]
	}
	fmt.Fprintf(out, "Loaded %d known symptoms, e.g. %s\n", len(entries), strings.Join(sample, ", "))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nEnter symptoms (comma-separated, 'quit' to exit): ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			return
		}
		printResult(out, s.CheckLine(ctx, line, topN))
	}
}

func printResult(out io.Writer, res checker.CheckResult) {
	if len(res.Unresolved) > 0 {
		fmt.Fprintf(out, "Unrecognized symptoms: %s\n", strings.Join(res.Unresolved, ", "))
	}
	if len(res.Normalized) == 0 {
		fmt.Fprintln(out, "No valid symptoms found.")
		return
	}
	fmt.Fprintf(out, "Normalized symptoms: %s\n", strings.Join(res.Normalized, ", "))

	switch {
	case res.MatchFailed:
		fmt.Fprintln(out, "Disease lookup failed; the knowledge graph is unavailable.")
	case len(res.Diseases) == 0:
		fmt.Fprintln(out, "No matching diseases found.")
	default:
		fmt.Fprintln(out, "Possible matching diseases:")
		for i, d := range res.Diseases {
			fmt.Fprintf(out, "  %d. %s (%d matched: %s)\n", i+1, d.Disease, d.MatchCount, strings.Join(d.MatchedSymptoms, ", "))
		}
	}
}
