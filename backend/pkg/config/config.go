package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Embedding backends
const (
	EmbeddingBackendOpenAI = "openai"
	EmbeddingBackendONNX   = "onnx"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Neo4j
	Neo4jURI         string
	Neo4jUser        string
	Neo4jPassword    string
	Neo4jDatabase    string
	Neo4jMaxPoolSize int
	StoreTimeout     time.Duration // Bound on every graph round trip

	// Embeddings
	EmbeddingBackend     string // openai or onnx
	EmbeddingURL         string // OpenAI-compatible endpoint serving the clinical encoder
	EmbeddingAPIKey      string
	EmbeddingModel       string
	ONNXLibraryPath      string
	ONNXModelPath        string
	ONNXTokenizerPath    string
	ONNXMaxSeqLen        int
	EmbeddingWarmWorkers int // Concurrent vocabulary embeddings at session start, 0 disables warm-up

	// Redis (optional second-level embedding cache)
	RedisAddr         string
	RedisPassword     string
	EmbeddingCacheTTL time.Duration

	// Matching
	FuzzyThreshold    float64 // 0-100, strictly exceeded
	SemanticThreshold float64 // cosine similarity, strictly exceeded
	DefaultTopN       int
	AliasFile         string // Optional YAML alias overrides
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", ""),
		Neo4jURI:             getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:            getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:        getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:        getEnv("NEO4J_DATABASE", ""),
		Neo4jMaxPoolSize:     getEnvInt("NEO4J_MAX_POOL_SIZE", 50),
		StoreTimeout:         getEnvDuration("STORE_TIMEOUT", 10*time.Second),
		EmbeddingBackend:     strings.ToLower(getEnv("EMBEDDING_BACKEND", EmbeddingBackendOpenAI)),
		EmbeddingURL:         getEnv("EMBEDDING_URL", "http://localhost:4000"),
		EmbeddingAPIKey:      getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:       getEnv("EMBEDDING_MODEL", "emilyalsentzer/Bio_ClinicalBERT"),
		ONNXLibraryPath:      getEnv("ONNX_LIBRARY_PATH", ""),
		ONNXModelPath:        getEnv("ONNX_MODEL_PATH", ""),
		ONNXTokenizerPath:    getEnv("ONNX_TOKENIZER_PATH", ""),
		ONNXMaxSeqLen:        getEnvInt("ONNX_MAX_SEQ_LEN", 128),
		EmbeddingWarmWorkers: getEnvInt("EMBEDDING_WARM_WORKERS", 4),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		EmbeddingCacheTTL:    getEnvDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
		FuzzyThreshold:       getEnvFloat("FUZZY_THRESHOLD", 80),
		SemanticThreshold:    getEnvFloat("SEMANTIC_THRESHOLD", 0.85),
		DefaultTopN:          getEnvInt("DEFAULT_TOP_N", 5),
		AliasFile:            getEnv("ALIAS_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	switch c.EmbeddingBackend {
	case EmbeddingBackendOpenAI:
		if c.EmbeddingURL == "" {
			return fmt.Errorf("EMBEDDING_URL is required for the openai backend")
		}
		if c.EmbeddingModel == "" {
			return fmt.Errorf("EMBEDDING_MODEL is required")
		}
	case EmbeddingBackendONNX:
		if c.ONNXModelPath == "" || c.ONNXTokenizerPath == "" {
			return fmt.Errorf("ONNX_MODEL_PATH and ONNX_TOKENIZER_PATH are required for the onnx backend")
		}
	default:
		return fmt.Errorf("unknown EMBEDDING_BACKEND %q", c.EmbeddingBackend)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("FUZZY_THRESHOLD must be within 0-100")
	}
	if c.SemanticThreshold < -1 || c.SemanticThreshold > 1 {
		return fmt.Errorf("SEMANTIC_THRESHOLD must be within -1..1")
	}
	if c.DefaultTopN < 1 {
		return fmt.Errorf("DEFAULT_TOP_N must be at least 1")
	}
	// Redis is optional; without it embeddings are cached in memory only
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
