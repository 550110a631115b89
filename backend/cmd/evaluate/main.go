package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"symptom-checker/backend/internal/app"
	"symptom-checker/backend/internal/constants"
	"symptom-checker/backend/internal/dataset"
	"symptom-checker/backend/internal/evaluation"
	"symptom-checker/backend/pkg/config"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	csvPath := flag.String("csv", "reduced_disease_dataset.csv", "Disease/symptom indicator CSV with the expected diseases")
	outPath := flag.String("out", "evaluation_results.csv", "Per-case results CSV, empty to skip")
	topK := flag.Int("top", constants.EvaluationTopK, "Rank window counted as a hit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()

	ds, err := dataset.LoadFile(*csvPath)
	if err != nil {
		log.Fatal("Failed to load dataset", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to start symptom checker", zap.Error(err))
	}
	defer a.Close(context.Background())

	report, err := evaluation.Run(ctx, a.Session, ds.Cases(), *topK)
	if err != nil {
		log.Warn("Evaluation interrupted", zap.Error(err), zap.Int("completed", report.Total))
	}

	fmt.Println()
	fmt.Println("Accuracy summary")
	fmt.Printf("  Total cases     : %d\n", report.Total)
	fmt.Printf("  Top-1 accuracy  : %d/%d (%.2f%%)\n", report.Top1, report.Total, report.Top1Accuracy()*100)
	fmt.Printf("  Top-%d accuracy  : %d/%d (%.2f%%)\n", report.K, report.TopK, report.Total, report.TopKAccuracy()*100)
	if report.Failed > 0 {
		fmt.Printf("  Failed queries  : %d\n", report.Failed)
	}

	if *outPath != "" {
		if err := report.WriteCSVFile(*outPath); err != nil {
			log.Error("Failed to write results", zap.Error(err))
			os.Exit(1)
		}
		log.Info("Results written", zap.String("path", *outPath), zap.String("run_id", report.RunID))
	}
}
