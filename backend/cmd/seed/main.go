package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"symptom-checker/backend/internal/app"
	"symptom-checker/backend/internal/dataset"
	"symptom-checker/backend/internal/graph"
	"symptom-checker/backend/pkg/config"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	csvPath := flag.String("csv", "reduced_disease_dataset.csv", "Disease/symptom indicator CSV")
	reset := flag.Bool("reset", false, "Delete all Disease and Symptom nodes before loading")
	batchSize := flag.Int("batch", graph.DefaultBatchSize, "Diseases per write transaction")
	skipConfirm := flag.Bool("y", false, "Skip confirmation prompt")
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
	log.Info("Starting knowledge graph seed...", zap.String("csv", *csvPath))

	ds, err := dataset.LoadFile(*csvPath)
	if err != nil {
		log.Fatal("Failed to load dataset", zap.Error(err))
	}
	records := ds.Records()
	log.Info("Dataset loaded",
		zap.Int("rows", len(ds.Rows)),
		zap.Int("diseases", len(records)),
		zap.Int("symptom_columns", len(ds.Symptoms)),
	)

	if *reset && !*skipConfirm {
		log.Warn("This will DELETE all Disease and Symptom nodes from Neo4j")
		// Prompt goes to stdout, not the log
		fmt.Print("Are you sure you want to continue? (yes/no): ")
		var response string
		fmt.Scanln(&response)
		if response != "yes" && response != "y" {
			log.Info("Aborted.")
			os.Exit(0)
		}
	}

	ctx := context.Background()
	repo, err := app.ConnectGraph(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer repo.Close(context.Background())

	if *reset {
		log.Info("Step 1: Deleting existing graph...")
		if err := repo.Reset(ctx); err != nil {
			log.Fatal("Failed to reset graph", zap.Error(err))
		}
	}

	log.Info("Step 2: Creating constraints...")
	if err := repo.EnsureConstraints(ctx); err != nil {
		log.Fatal("Failed to create constraints", zap.Error(err))
	}

	log.Info("Step 3: Loading diseases...")
	n, err := repo.IngestDiseases(ctx, records, *batchSize)
	if err != nil {
		log.Fatal("Failed to ingest diseases", zap.Error(err), zap.Int("ingested", n))
	}

	stats, err := repo.CountGraph(ctx)
	if err != nil {
		log.Fatal("Failed to count graph", zap.Error(err))
	}
	log.Info("Graph build complete",
		zap.Int("ingested", n),
		zap.Int64("diseases", stats.Diseases),
		zap.Int64("symptoms", stats.Symptoms),
		zap.Int64("relationships", stats.Relationships),
	)
}
