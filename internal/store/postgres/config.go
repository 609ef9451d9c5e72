// Package postgres implements the store adapter (C5) against PostgreSQL,
// the production backend spec.md §6 names via POSTGRES_*/DATABASE_URL.
// It follows the teacher's internal/storage/dolt shape: a Config struct,
// a withRetry wrapper around transient errors, and otel tracer/meter
// instruments registered against the global (possibly no-op) provider.
package postgres

import (
	"fmt"
	"time"
)

// Config holds the PostgreSQL connection and pool configuration.
type Config struct {
	// DSN, if set, is used verbatim (DATABASE_URL). Otherwise the
	// Host/Port/... fields below build one.
	DSN string

	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the libpq connection string pgx's stdlib driver accepts.
func (c Config) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode,
	)
}

func (c Config) withDefaults() Config {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	return c
}
