package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Regimes/models"
)

// Config holds database connection configuration
type Config struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	PingRetries     int           `yaml:"ping_retries"`
}

// DefaultConfig returns reasonable defaults for database connections
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    30 * time.Second,
		PingRetries:     5,
	}
}

// DB represents a database connection
type DB struct {
	*sqlx.DB
	timeout time.Duration
	logger  zerolog.Logger
}

// New opens a PostgreSQL connection, waits for it to answer and creates
// the tables if they don't exist
func New(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}

	conn, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	db := NewWithDB(conn, cfg.QueryTimeout)

	ping := func() error {
		err := conn.PingContext(ctx)
		if err != nil {
			db.logger.Warn().Err(err).Msg("Database not ready, retrying")
		}
		return err
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(max(cfg.PingRetries, 0)))
	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// NewWithDB wraps an open connection
func NewWithDB(conn *sqlx.DB, timeout time.Duration) *DB {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DB{
		DB:      conn,
		timeout: timeout,
		logger:  log.With().Str("component", "database").Logger(),
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS series_points (
	symbol TEXT NOT NULL,
	ts TIMESTAMPTZ NOT NULL,
	value DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (symbol, ts)
);
CREATE TABLE IF NOT EXISTS regime_runs (
	id BIGSERIAL PRIMARY KEY,
	symbol TEXT NOT NULL,
	mode TEXT NOT NULL,
	options JSONB NOT NULL,
	points INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS regime_segments (
	run_id BIGINT NOT NULL REFERENCES regime_runs(id) ON DELETE CASCADE,
	start_idx INTEGER NOT NULL,
	end_idx INTEGER NOT NULL,
	direction TEXT NOT NULL,
	label SMALLINT,
	start_value DOUBLE PRECISION NOT NULL,
	end_value DOUBLE PRECISION NOT NULL,
	flipped BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, start_idx)
);
`

// Migrate creates the tables if they don't exist
func (db *DB) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// SavePoints upserts the points of symbol and returns how many were written
func (db *DB) SavePoints(ctx context.Context, symbol string, points []models.Point) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range points {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO series_points (symbol, ts, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (symbol, ts) DO UPDATE SET value = EXCLUDED.value`,
			symbol, p.Time, p.Value)
		if err != nil {
			return 0, fmt.Errorf("failed to save point %s: %w", p.Time.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit points: %w", err)
	}

	db.logger.Debug().Str("symbol", symbol).Int("points", len(points)).Msg("Saved points")
	return len(points), nil
}

// LoadSeries returns the points of symbol within [from, to], oldest first.
// A zero bound is open.
func (db *DB) LoadSeries(ctx context.Context, symbol string, from, to time.Time) ([]models.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	var points []models.Point
	err := db.SelectContext(ctx, &points, `
		SELECT ts, value
		FROM series_points
		WHERE symbol = $1
		  AND ($2::timestamptz IS NULL OR ts >= $2)
		  AND ($3::timestamptz IS NULL OR ts <= $3)
		ORDER BY ts`,
		symbol, nullTime(from), nullTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to load series %s: %w", symbol, err)
	}
	return points, nil
}

// Series implements models.SeriesSource over every stored point of symbol
func (db *DB) Series(ctx context.Context, symbol string) ([]models.Point, error) {
	return db.LoadSeries(ctx, symbol, time.Time{}, time.Time{})
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
