package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "symptom-checker/backend/pkg/errors"
	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a store round trip when none is configured
const DefaultTimeout = 10 * time.Second

// sessionCloseTimeout bounds releasing a session back to the pool
const sessionCloseTimeout = 5 * time.Second

// Options configures a Repository
type Options struct {
	Database string        // Empty selects the server default database
	Timeout  time.Duration // Bound applied to every query
}

// Repository handles all Neo4j database operations for the disease/symptom graph.
// It owns the driver it was given and must be closed by its creator.
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext, opts Options) *Repository {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Repository{
		driver:   driver,
		database: opts.Database,
		timeout:  opts.Timeout,
		logger:   logger.Named("graph"),
	}
}

// ConnectConfig holds the connection parameters for Connect
type ConnectConfig struct {
	URI         string
	User        string
	Password    string
	Database    string
	MaxPoolSize int
	Timeout     time.Duration
}

// Connect creates a driver, verifies connectivity within the configured timeout and
// wraps it in a Repository.
func Connect(ctx context.Context, cfg ConnectConfig) (*Repository, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.User, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxPoolSize
			}
			c.SocketConnectTimeout = timeout
		},
	)
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(cfg.URI, err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(cfg.URI, err)
	}

	return NewRepository(driver, Options{Database: cfg.Database, Timeout: timeout}), nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	if r == nil || r.driver == nil {
		return nil
	}
	return r.driver.Close(ctx)
}

func (r *Repository) newSession(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: r.database,
	})
}

type sessionCloser interface {
	Close(ctx context.Context) error
}

// closeSession releases a session on a fresh context, since the query context may
// already be past its deadline or cancelled.
func (r *Repository) closeSession(ctx context.Context, session sessionCloser) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionCloseTimeout)
	defer cancel()
	if err := session.Close(closeCtx); err != nil {
		r.logger.Warn("Failed to close graph session", zap.Error(err))
	}
}

// queryError converts a driver failure into a typed graph error, keeping deadline
// overruns distinguishable.
func (r *Repository) queryError(ctx context.Context, operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = apperrors.NewContextTimeout(operation, r.timeout, err)
	}
	return apperrors.NewGraphQueryFailed(operation, err)
}

// ErrInvalidDataset is returned when an ingestion record is malformed
type ErrInvalidDataset struct {
	Reason string
}

func (e ErrInvalidDataset) Error() string {
	return fmt.Sprintf("invalid dataset: %s", e.Reason)
}
