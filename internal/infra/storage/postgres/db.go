package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"

	"github.com/vietddude/finecheck/internal/metrics"
)

const (
	defaultMaxConns = 10
	defaultMinConns = 2

	statsInterval = 15 * time.Second
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a database URL was configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// poolLimits returns the open and idle connection caps. Idle never exceeds open.
func (c Config) poolLimits() (maxOpen, maxIdle int) {
	maxOpen, maxIdle = defaultMaxConns, defaultMinConns
	if c.MaxConns > 0 {
		maxOpen = c.MaxConns
	}
	if c.MinConns > 0 {
		maxIdle = c.MinConns
	}
	return maxOpen, min(maxIdle, maxOpen)
}

// DB is the history database handle.
type DB struct {
	*sqlx.DB
}

// NewDB opens the history database through pgx and checks it answers.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	maxOpen, maxIdle := cfg.poolLimits()
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	return &DB{DB: db}, nil
}

// StartMetricsCollector publishes pool stats now and then every 15s until
// ctx is done.
func (db *DB) StartMetricsCollector(ctx context.Context) {
	go func() {
		recordPoolStats(db.Stats())

		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				recordPoolStats(db.Stats())
			}
		}
	}()
}

func recordPoolStats(stats sql.DBStats) {
	metrics.DBConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	metrics.DBConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	if usage, ok := poolUsage(stats); ok {
		metrics.DBConnectionPoolUsage.Set(usage)
	}
}

// poolUsage is the share of the open-connection cap held by running queries,
// in percent. It is undefined for an unlimited pool.
func poolUsage(stats sql.DBStats) (float64, bool) {
	if stats.MaxOpenConnections <= 0 {
		return 0, false
	}
	return float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100, true
}

// Health pings the database.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}
