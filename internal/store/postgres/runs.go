package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartRun implements store.RunStore.
func (s *Store) StartRun(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	const query = `INSERT INTO crawl_runs (id, started_at) VALUES ($1, $2);`
	if _, err := s.db.Exec(ctx, query, id, startedAt); err != nil {
		return fmt.Errorf("start crawl run: %w", err)
	}
	return nil
}

// FinishRun implements store.RunStore.
func (s *Store) FinishRun(ctx context.Context, id uuid.UUID, finishedAt time.Time, matchesStored int64) error {
	const query = `UPDATE crawl_runs SET finished_at = $1, matches_stored = $2 WHERE id = $3;`
	if _, err := s.db.Exec(ctx, query, finishedAt, matchesStored, id); err != nil {
		return fmt.Errorf("finish crawl run: %w", err)
	}
	return nil
}
