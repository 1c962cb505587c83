package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TheBoringBakery/MoonCaker/internal/riot"
	"github.com/TheBoringBakery/MoonCaker/internal/store"
)

// Config governs the partition space and page batching.
type Config struct {
	Regions   []string
	Tiers     []string
	Divisions []string
	// BatchSize bounds how many ladder names are resolved and discovered
	// per discovery round within a page.
	BatchSize int
}

// Engine drives the crawl: it walks uncrawled partitions one page at a time,
// discovers fresh matches for the players listed there, transforms them into
// canonical documents, and records durable progress after every page.
type Engine struct {
	api    riot.API
	store  store.Store
	cfg    Config
	logger *zap.Logger

	// now is swapped by tests to pin run timestamps.
	now func() time.Time
}

// New builds an Engine. The api must already be the resilient client; the
// engine never handles credential or rate-limit faults itself.
func New(api riot.API, st store.Store, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Engine{api: api, store: st, cfg: cfg, logger: logger, now: time.Now}
}

// Run crawls full passes over the partition space until the context ends.
// Progress is durable after every page, so interruption at any point resumes
// from the recorded cursors.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.store.EnsurePartitions(ctx, e.cfg.Regions, e.cfg.Tiers, e.cfg.Divisions); err != nil {
		return fmt.Errorf("initialize partitions: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runPass(ctx); err != nil {
			return err
		}
	}
}

// runPass processes every currently-uncrawled partition once. When a prior
// pass finished the whole space, the partition set is reset first so the
// crawl starts over on fresh matches.
func (e *Engine) runPass(ctx context.Context) error {
	incomplete, err := e.store.Incomplete(ctx)
	if err != nil {
		return fmt.Errorf("list incomplete partitions: %w", err)
	}
	if len(incomplete) == 0 {
		e.logger.Info("all partitions complete, resetting for a fresh cycle")
		if err := e.store.ResetAll(ctx); err != nil {
			return fmt.Errorf("reset partitions: %w", err)
		}
		if incomplete, err = e.store.Incomplete(ctx); err != nil {
			return fmt.Errorf("list incomplete partitions: %w", err)
		}
	}

	runID := uuid.New()
	startedAt := e.now()
	if err := e.store.StartRun(ctx, runID, startedAt); err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	e.logger.Info("crawl pass started",
		zap.String("run_id", runID.String()), zap.Int("partitions", len(incomplete)))

	var stored int64
	for _, partition := range incomplete {
		if ctx.Err() != nil {
			break
		}
		n, err := e.processPartition(ctx, partition)
		stored += n
		if err != nil {
			// Storage faults abort the partition's write; the cursor is
			// untouched so the next pass retries the same page.
			e.logger.Error("partition aborted",
				zap.String("region", partition.Region),
				zap.String("tier", partition.Tier),
				zap.String("division", partition.Division),
				zap.Error(err))
		}
	}

	if err := e.store.FinishRun(ctx, runID, e.now(), stored); err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	e.logger.Info("crawl pass finished",
		zap.String("run_id", runID.String()), zap.Int64("matches_stored", stored))
	return ctx.Err()
}

// processPartition pages through one partition from its recorded cursor.
// Each non-empty page is fully processed and committed before the cursor
// moves; the first empty page marks the partition complete. A page fetch
// failure leaves the partition where it stands for the next pass.
func (e *Engine) processPartition(ctx context.Context, partition store.Partition) (int64, error) {
	log := e.logger.With(
		zap.String("region", partition.Region),
		zap.String("tier", partition.Tier),
		zap.String("division", partition.Division))

	var stored int64
	page := partition.Page
	for {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		log.Info("crawling ladder page", zap.Int("page", page))

		names, err := e.fetchPage(ctx, partition.Region, partition.Tier, partition.Division, page)
		if err != nil {
			log.Warn("page fetch failed, deferring partition", zap.Int("page", page), zap.Error(err))
			return stored, nil
		}
		if len(names) == 0 {
			if err := e.store.MarkComplete(ctx, partition.PartitionKey); err != nil {
				return stored, fmt.Errorf("mark partition complete: %w", err)
			}
			partitionsCompleted.Inc()
			log.Info("partition complete", zap.Int("pages", page-1))
			return stored, nil
		}

		var pageDocs []store.MatchDocument
		for _, batch := range chunk(names, e.cfg.BatchSize) {
			candidates, err := e.discoverCandidates(ctx, partition.Region, batch)
			if err != nil {
				return stored, err
			}
			pageDocs = append(pageDocs, e.matchDetails(ctx, partition.Region, candidates)...)
		}

		page++
		n, err := e.store.RecordPage(ctx, partition.PartitionKey, pageDocs, page)
		if err != nil {
			return stored, fmt.Errorf("record page %d: %w", page-1, err)
		}
		stored += n
		matchesStored.Add(float64(n))
		pagesCrawled.Inc()
		log.Info("page recorded", zap.Int("next_page", page), zap.Int64("new_matches", n))
	}
}

// chunk splits names into BatchSize-bounded slices, preserving order.
func chunk(names []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		batches = append(batches, names[start:end])
	}
	return batches
}
