package app

import (
	"context"
	"fmt"

	"symptom-checker/backend/internal/adapter"
	"symptom-checker/backend/internal/cache"
	"symptom-checker/backend/internal/checker"
	"symptom-checker/backend/internal/graph"
	"symptom-checker/backend/internal/matcher"
	"symptom-checker/backend/internal/normalizer"
	"symptom-checker/backend/pkg/config"
	"go.uber.org/zap"
)

// App holds the wired components shared by the server and the command line tools
type App struct {
	Cfg     *config.Config
	Log     *zap.Logger
	Repo    *graph.Repository
	Session *checker.Session

	closers []func() error
}

// ConnectGraph opens the Neo4j repository described by cfg
func ConnectGraph(ctx context.Context, cfg *config.Config) (*graph.Repository, error) {
	return graph.Connect(ctx, graph.ConnectConfig{
		URI:         cfg.Neo4jURI,
		User:        cfg.Neo4jUser,
		Password:    cfg.Neo4jPassword,
		Database:    cfg.Neo4jDatabase,
		MaxPoolSize: cfg.Neo4jMaxPoolSize,
		Timeout:     cfg.StoreTimeout,
	})
}

// New connects to the graph, builds the embedder and its caches, and opens a checker
// session. Everything opened here is released by Close, including on a failed New.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *App, err error) {
	a := &App{Cfg: cfg, Log: log}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	a.Repo, err = ConnectGraph(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { return a.Repo.Close(context.Background()) })
	log.Info("Connected to Neo4j", zap.String("uri", cfg.Neo4jURI))

	embedder, modelID, err := a.newEmbedder()
	if err != nil {
		return nil, err
	}

	var l2 cache.Store
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.EmbeddingCacheTTL)
		if err != nil {
			// The in-memory level still works without Redis
			log.Warn("Redis embedding cache unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			a.closers = append(a.closers, redisStore.Close)
			l2 = redisStore
			log.Info("Redis embedding cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}
	cached := cache.NewCachedEmbedder(embedder, modelID, l2)

	aliases, err := loadAliases(cfg.AliasFile)
	if err != nil {
		return nil, err
	}

	norm := normalizer.New(cached,
		normalizer.WithAliases(aliases),
		normalizer.WithFuzzyThreshold(cfg.FuzzyThreshold),
		normalizer.WithSemanticThreshold(cfg.SemanticThreshold),
	)
	m := matcher.New(a.Repo, cfg.DefaultTopN)

	a.Session, err = checker.NewSession(ctx, a.Repo, norm, m,
		checker.WithEmbeddingCache(cached, cfg.EmbeddingWarmWorkers),
	)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { a.Session.Close(); return nil })
	return a, nil
}

func (a *App) newEmbedder() (normalizer.Embedder, string, error) {
	switch a.Cfg.EmbeddingBackend {
	case config.EmbeddingBackendONNX:
		onnx, err := adapter.NewONNXEmbedder(adapter.ONNXConfig{
			LibraryPath:   a.Cfg.ONNXLibraryPath,
			ModelPath:     a.Cfg.ONNXModelPath,
			TokenizerPath: a.Cfg.ONNXTokenizerPath,
			MaxSeqLen:     a.Cfg.ONNXMaxSeqLen,
		})
		if err != nil {
			return nil, "", fmt.Errorf("load onnx embedder: %w", err)
		}
		a.closers = append(a.closers, onnx.Close)
		a.Log.Info("Using local ONNX embedder", zap.String("model", a.Cfg.ONNXModelPath))
		return onnx, onnx.ModelID(), nil
	default:
		e := adapter.NewOpenAIEmbedder(a.Cfg.EmbeddingURL, a.Cfg.EmbeddingAPIKey, a.Cfg.EmbeddingModel)
		a.Log.Info("Using HTTP embedder",
			zap.String("url", a.Cfg.EmbeddingURL),
			zap.String("model", a.Cfg.EmbeddingModel),
		)
		return e, e.ModelID(), nil
	}
}

// loadAliases returns the built-in alias table with the optional override file merged on top
func loadAliases(path string) (normalizer.AliasMap, error) {
	aliases := normalizer.DefaultAliases()
	if path == "" {
		return aliases, nil
	}
	overrides, err := normalizer.LoadAliasFile(path)
	if err != nil {
		return nil, err
	}
	return aliases.Merge(overrides), nil
}

// Close releases everything New opened, most recent first
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("Error during shutdown", zap.Error(err))
		}
	}
	a.closers = nil
}
