package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/entities-sink/ksink/internal/cursor"
	"github.com/entities-sink/ksink/internal/store"
)

const storeRetryMaxElapsed = 30 * time.Second

// Store implements store.Store against a PostgreSQL database via the pgx
// stdlib driver.
type Store struct {
	db     *sql.DB
	closed atomic.Bool
}

var _ store.Store = (*Store)(nil)

// storeTracer is the OTel tracer for SQL-level spans. It uses the global
// provider, a no-op until telemetry.Init() runs (mirrors doltTracer).
var storeTracer = otel.Tracer("github.com/entities-sink/ksink/store/postgres")

// storeMetrics holds OTel metric instruments, registered against the
// global delegating provider at init time (mirrors doltMetrics).
var storeMetrics struct {
	retryCount metric.Int64Counter
	txCommits  metric.Int64Counter
	txAborts   metric.Int64Counter
}

func init() {
	meter := otel.Meter("github.com/entities-sink/ksink/store/postgres")
	storeMetrics.retryCount, _ = meter.Int64Counter("ksink.store.retries",
		metric.WithDescription("transient store operation retries"))
	storeMetrics.txCommits, _ = meter.Int64Counter("ksink.store.tx_commits",
		metric.WithDescription("committed store transactions"))
	storeMetrics.txAborts, _ = meter.Int64Counter("ksink.store.tx_aborts",
		metric.WithDescription("rolled back store transactions"))
}

// Open connects to PostgreSQL, applies migrations, and returns a ready
// Store. Migrations are idempotent: re-running Open against an
// already-initialized database is a no-op past schema verification.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	db, err := sql.Open("pgx", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Cursor() cursor.Store { return &cursorStore{db: s.db} }

// DB exposes the underlying connection pool for callers that need to run
// raw SQL the Tx/EntityOps/SpaceOps surface doesn't cover — schema
// inspection tooling, and integration tests asserting on the migrated
// shape directly.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) BeginTx(ctx context.Context) (store.Tx, error) {
	ctx, span := storeTracer.Start(ctx, "postgres.BeginTx")
	defer span.End()

	var sqlTx *sql.Tx
	err := withRetry(ctx, func() error {
		var txErr error
		sqlTx, txErr = s.db.BeginTx(ctx, nil)
		return txErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("postgres: begin tx: %w", err)
	}
	return &tx{sqlTx: sqlTx}, nil
}

// withRetry executes op, retrying transient connection errors with
// exponential backoff (mirrors the teacher's server-mode withRetry).
func withRetry(ctx context.Context, op func() error) error {
	attempts := 0
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = storeRetryMaxElapsed
	err := backoff.Retry(func() error {
		attempts++
		err := op()
		if err != nil && isRetryableError(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if attempts > 1 {
		storeMetrics.retryCount.Add(ctx, int64(attempts-1))
	}
	return err
}

// isRetryableError reports whether err looks like a transient connection
// problem (pool churn, brief network blip, server restart) worth retrying,
// as opposed to a genuine constraint violation or syntax error.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, substr := range []string{
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"bad connection",
		"conn closed",
		"the database system is starting up",
		"too many connections",
		"ssl connection has been closed unexpectedly",
		"terminating connection due to administrator command",
	} {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// tx implements store.Tx over a *sql.Tx.
type tx struct {
	sqlTx *sql.Tx
}

var _ store.Tx = (*tx)(nil)

func (t *tx) Entities() store.EntityOps { return entityOps{tx: t.sqlTx} }
func (t *tx) Triples() store.TripleOps { return tripleOps{tx: t.sqlTx} }
func (t *tx) Spaces() store.SpaceOps   { return spaceOps{tx: t.sqlTx} }

func (t *tx) Commit(ctx context.Context) error {
	err := t.sqlTx.Commit()
	if err != nil {
		storeMetrics.txAborts.Add(ctx, 1)
		return fmt.Errorf("postgres: commit: %w", err)
	}
	storeMetrics.txCommits.Add(ctx, 1)
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if err := t.sqlTx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("postgres: rollback: %w", err)
	}
	storeMetrics.txAborts.Add(ctx, 1)
	return nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return storeTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
