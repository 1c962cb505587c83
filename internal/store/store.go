// Package store declares the domain documents and the persistence interfaces
// the crawl engine writes through. Implementations live in the postgres and
// memory subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound signals that the requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// RolePlayer is one player's champion pick within a role slot.
type RolePlayer struct {
	SummonerID string `json:"summonerId"`
	ChampionID int    `json:"championId"`
}

// Team is one side of a stored match: its ban list plus the five resolved
// role slots. JSON keys match the document shape exposed downstream.
type Team struct {
	TeamID  int        `json:"teamId"`
	Bans    []int      `json:"bans"`
	Top     RolePlayer `json:"TOP"`
	Jungle  RolePlayer `json:"JUNGLE"`
	Mid     RolePlayer `json:"MID"`
	ADC     RolePlayer `json:"ADC"`
	Support RolePlayer `json:"SUPPORT"`
}

// MatchDocument is the canonical per-match record. It is written once,
// keyed by the upstream match identifier, and never updated; existence is
// the dedup signal for discovery.
type MatchDocument struct {
	ID              string `json:"id"`
	Region          string `json:"region"`
	DurationSeconds int64  `json:"durationSeconds"`
	Patch           string `json:"patchVersion"`
	WinningTeamID   int    `json:"winningTeamId"`
	Team1           Team   `json:"team1"`
	Team2           Team   `json:"team2"`
}

// PartitionKey identifies one (region, tier, division) unit of the crawl
// space.
type PartitionKey struct {
	Region   string `json:"region"`
	Tier     string `json:"tier"`
	Division string `json:"division"`
}

// Partition is the tracked crawl state of one partition key.
type Partition struct {
	PartitionKey
	// Page is the next ladder page to fetch, starting at 1.
	Page int `json:"page"`
	// Complete flips when a page comes back empty and stays set until a
	// global reset.
	Complete bool `json:"complete"`
}

// CrawlRun records one full pass over the partition space.
type CrawlRun struct {
	ID            uuid.UUID
	StartedAt     time.Time
	FinishedAt    *time.Time
	MatchesStored int64
}

// MatchStore persists canonical match documents, unique by id.
type MatchStore interface {
	// ExistsMatch reports whether a document with the given id is stored.
	ExistsMatch(ctx context.Context, id string) (bool, error)
	// InsertMatches appends documents, silently skipping ids already
	// present, and returns how many rows were actually written.
	InsertMatches(ctx context.Context, docs []MatchDocument) (int64, error)
	// CountMatches returns the number of stored documents.
	CountMatches(ctx context.Context) (int64, error)
}

// PartitionStore tracks crawl progress across the partition space.
type PartitionStore interface {
	// EnsurePartitions initializes the Cartesian product of the configured
	// universes on first run; existing rows are left untouched.
	EnsurePartitions(ctx context.Context, regions, tiers, divisions []string) error
	// Partitions returns every tracked partition.
	Partitions(ctx context.Context) ([]Partition, error)
	// Incomplete returns the partitions still to crawl this pass.
	Incomplete(ctx context.Context) ([]Partition, error)
	// RecordPage durably appends the page's documents and advances the
	// partition cursor, atomically for that partition. Returns how many
	// documents were newly stored.
	RecordPage(ctx context.Context, key PartitionKey, docs []MatchDocument, newPage int) (int64, error)
	// MarkComplete flags a partition as fully crawled.
	MarkComplete(ctx context.Context, key PartitionKey) error
	// ResetAll returns every partition to page 1, incomplete, enabling the
	// next full-cycle re-crawl.
	ResetAll(ctx context.Context) error
}

// RunStore keeps the history of full crawl passes.
type RunStore interface {
	StartRun(ctx context.Context, id uuid.UUID, startedAt time.Time) error
	FinishRun(ctx context.Context, id uuid.UUID, finishedAt time.Time, matchesStored int64) error
}

// Store is the full persistence surface the engine and ops server share.
type Store interface {
	MatchStore
	PartitionStore
	RunStore
}
