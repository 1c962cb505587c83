package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/TheBoringBakery/MoonCaker/internal/store"
)

const insertMatchSQL = `
	INSERT INTO matches (id, region, duration_seconds, patch, winning_team_id, team1, team2)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING;
`

// ExistsMatch implements store.MatchStore.
func (s *Store) ExistsMatch(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1);`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check match exists: %w", err)
	}
	return exists, nil
}

// InsertMatches implements store.MatchStore. Already-present ids are skipped
// by the unique-id constraint, keeping page re-processing idempotent.
func (s *Store) InsertMatches(ctx context.Context, docs []store.MatchDocument) (int64, error) {
	var stored int64
	for _, doc := range docs {
		n, err := s.insertMatch(ctx, s.db, doc)
		if err != nil {
			return stored, err
		}
		stored += n
	}
	return stored, nil
}

// execer abstracts the pool and an open transaction for insertMatch.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *Store) insertMatch(ctx context.Context, db execer, doc store.MatchDocument) (int64, error) {
	team1, err := json.Marshal(doc.Team1)
	if err != nil {
		return 0, fmt.Errorf("marshal team1: %w", err)
	}
	team2, err := json.Marshal(doc.Team2)
	if err != nil {
		return 0, fmt.Errorf("marshal team2: %w", err)
	}
	tag, err := db.Exec(ctx, insertMatchSQL,
		doc.ID, doc.Region, doc.DurationSeconds, doc.Patch, doc.WinningTeamID, team1, team2)
	if err != nil {
		return 0, fmt.Errorf("insert match %s: %w", doc.ID, err)
	}
	return tag.RowsAffected(), nil
}

// CountMatches implements store.MatchStore.
func (s *Store) CountMatches(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM matches;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return count, nil
}
