// Package postgres implements store.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in
// tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store implements store.Store. One instance serves matches, partitions and
// crawl runs; the method sets live in their respective files.
type Store struct {
	db   DB
	pool *pgxpool.Pool
}

// New connects a pool and returns a Store backed by it.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: pool, pool: pool}, nil
}

// NewWithDB wraps an existing DB, typically a pgxmock pool in tests.
func NewWithDB(db DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying pool, if the Store owns one.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables the crawler needs when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			region TEXT NOT NULL,
			duration_seconds BIGINT NOT NULL,
			patch TEXT NOT NULL,
			winning_team_id INT NOT NULL,
			team1 JSONB NOT NULL,
			team2 JSONB NOT NULL,
			inserted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS partitions (
			region TEXT NOT NULL,
			tier TEXT NOT NULL,
			division TEXT NOT NULL,
			page INT NOT NULL DEFAULT 1,
			complete BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (region, tier, division)
		)`,
		`CREATE TABLE IF NOT EXISTS crawl_runs (
			id UUID PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			matches_stored BIGINT NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
