package postgres

import (
	"context"
	"fmt"

	"github.com/TheBoringBakery/MoonCaker/internal/store"
)

// EnsurePartitions implements store.PartitionStore. The Cartesian product is
// inserted with DO NOTHING so reruns never disturb tracked progress.
func (s *Store) EnsurePartitions(ctx context.Context, regions, tiers, divisions []string) error {
	const query = `
		INSERT INTO partitions (region, tier, division, page, complete)
		VALUES ($1, $2, $3, 1, FALSE)
		ON CONFLICT (region, tier, division) DO NOTHING;
	`
	for _, region := range regions {
		for _, tier := range tiers {
			for _, division := range divisions {
				if _, err := s.db.Exec(ctx, query, region, tier, division); err != nil {
					return fmt.Errorf("ensure partition %s/%s/%s: %w", region, tier, division, err)
				}
			}
		}
	}
	return nil
}

// Partitions implements store.PartitionStore.
func (s *Store) Partitions(ctx context.Context) ([]store.Partition, error) {
	return s.queryPartitions(ctx,
		`SELECT region, tier, division, page, complete FROM partitions ORDER BY region, tier, division;`)
}

// Incomplete implements store.PartitionStore.
func (s *Store) Incomplete(ctx context.Context) ([]store.Partition, error) {
	return s.queryPartitions(ctx,
		`SELECT region, tier, division, page, complete FROM partitions WHERE NOT complete ORDER BY region, tier, division;`)
}

func (s *Store) queryPartitions(ctx context.Context, query string) ([]store.Partition, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query partitions: %w", err)
	}
	defer rows.Close()

	var partitions []store.Partition
	for rows.Next() {
		var p store.Partition
		if err := rows.Scan(&p.Region, &p.Tier, &p.Division, &p.Page, &p.Complete); err != nil {
			return nil, fmt.Errorf("scan partition row: %w", err)
		}
		partitions = append(partitions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partitions: %w", err)
	}
	return partitions, nil
}

// RecordPage implements store.PartitionStore. The document inserts and the
// cursor advance commit together, so a crash never records a cursor ahead of
// its page's documents.
func (s *Store) RecordPage(ctx context.Context, key store.PartitionKey, docs []store.MatchDocument, newPage int) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin record page: %w", err)
	}

	var stored int64
	for _, doc := range docs {
		n, err := s.insertMatch(ctx, tx, doc)
		if err != nil {
			_ = tx.Rollback(ctx)
			return 0, err
		}
		stored += n
	}

	const cursorSQL = `UPDATE partitions SET page = $1 WHERE region = $2 AND tier = $3 AND division = $4;`
	tag, err := tx.Exec(ctx, cursorSQL, newPage, key.Region, key.Tier, key.Division)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, fmt.Errorf("advance cursor %s/%s/%s: %w", key.Region, key.Tier, key.Division, err)
	}
	if tag.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return 0, store.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit record page: %w", err)
	}
	return stored, nil
}

// MarkComplete implements store.PartitionStore.
func (s *Store) MarkComplete(ctx context.Context, key store.PartitionKey) error {
	const query = `UPDATE partitions SET complete = TRUE WHERE region = $1 AND tier = $2 AND division = $3;`
	tag, err := s.db.Exec(ctx, query, key.Region, key.Tier, key.Division)
	if err != nil {
		return fmt.Errorf("mark partition complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ResetAll implements store.PartitionStore.
func (s *Store) ResetAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `UPDATE partitions SET page = 1, complete = FALSE;`); err != nil {
		return fmt.Errorf("reset partitions: %w", err)
	}
	return nil
}
