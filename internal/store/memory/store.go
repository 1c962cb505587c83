// Package memory provides an in-memory store.Store used by tests and the
// dry-run mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TheBoringBakery/MoonCaker/internal/store"
)

// Store keeps all state in process memory. Safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	matches    map[string]store.MatchDocument
	matchOrder []string
	partitions []store.Partition
	runs       map[uuid.UUID]store.CrawlRun
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		matches: make(map[string]store.MatchDocument),
		runs:    make(map[uuid.UUID]store.CrawlRun),
	}
}

// ExistsMatch implements store.MatchStore.
func (s *Store) ExistsMatch(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.matches[id]
	return ok, nil
}

// InsertMatches implements store.MatchStore.
func (s *Store) InsertMatches(_ context.Context, docs []store.MatchDocument) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(docs), nil
}

func (s *Store) insertLocked(docs []store.MatchDocument) int64 {
	var stored int64
	for _, doc := range docs {
		if _, ok := s.matches[doc.ID]; ok {
			continue
		}
		s.matches[doc.ID] = doc
		s.matchOrder = append(s.matchOrder, doc.ID)
		stored++
	}
	return stored
}

// CountMatches implements store.MatchStore.
func (s *Store) CountMatches(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.matches)), nil
}

// Matches returns the stored documents in insertion order. Test helper.
func (s *Store) Matches() []store.MatchDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.MatchDocument, 0, len(s.matchOrder))
	for _, id := range s.matchOrder {
		out = append(out, s.matches[id])
	}
	return out
}

// EnsurePartitions implements store.PartitionStore.
func (s *Store) EnsurePartitions(_ context.Context, regions, tiers, divisions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.partitions) > 0 {
		return nil
	}
	for _, region := range regions {
		for _, tier := range tiers {
			for _, division := range divisions {
				s.partitions = append(s.partitions, store.Partition{
					PartitionKey: store.PartitionKey{Region: region, Tier: tier, Division: division},
					Page:         1,
				})
			}
		}
	}
	return nil
}

// Partitions implements store.PartitionStore.
func (s *Store) Partitions(context.Context) ([]store.Partition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Partition, len(s.partitions))
	copy(out, s.partitions)
	return out, nil
}

// Incomplete implements store.PartitionStore.
func (s *Store) Incomplete(context.Context) ([]store.Partition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Partition
	for _, p := range s.partitions {
		if !p.Complete {
			out = append(out, p)
		}
	}
	return out, nil
}

// RecordPage implements store.PartitionStore.
func (s *Store) RecordPage(_ context.Context, key store.PartitionKey, docs []store.MatchDocument, newPage int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.insertLocked(docs)
	for i := range s.partitions {
		if s.partitions[i].PartitionKey == key {
			s.partitions[i].Page = newPage
			break
		}
	}
	return stored, nil
}

// MarkComplete implements store.PartitionStore.
func (s *Store) MarkComplete(_ context.Context, key store.PartitionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.partitions {
		if s.partitions[i].PartitionKey == key {
			s.partitions[i].Complete = true
			return nil
		}
	}
	return store.ErrNotFound
}

// ResetAll implements store.PartitionStore.
func (s *Store) ResetAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.partitions {
		s.partitions[i].Page = 1
		s.partitions[i].Complete = false
	}
	return nil
}

// StartRun implements store.RunStore.
func (s *Store) StartRun(_ context.Context, id uuid.UUID, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = store.CrawlRun{ID: id, StartedAt: startedAt}
	return nil
}

// FinishRun implements store.RunStore.
func (s *Store) FinishRun(_ context.Context, id uuid.UUID, finishedAt time.Time, matchesStored int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return store.ErrNotFound
	}
	run.FinishedAt = &finishedAt
	run.MatchesStored = matchesStored
	s.runs[id] = run
	return nil
}

// Runs returns recorded crawl runs. Test helper.
func (s *Store) Runs() []store.CrawlRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.CrawlRun, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	return out
}
