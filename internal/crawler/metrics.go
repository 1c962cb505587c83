package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pagesCrawled counts non-empty ladder pages fully processed.
	pagesCrawled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooncaker_pages_crawled_total",
		Help: "Ladder pages processed and recorded.",
	})
	// matchesStored counts documents newly written to the store.
	matchesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooncaker_matches_stored_total",
		Help: "Match documents newly persisted.",
	})
	// matchesDiscarded counts fetched matches that failed the structural
	// role-count check.
	matchesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooncaker_matches_discarded_total",
		Help: "Fetched matches dropped by the role validity check.",
	})
	// partitionsCompleted counts partitions whose pagination was exhausted.
	partitionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooncaker_partitions_completed_total",
		Help: "Partitions marked fully crawled.",
	})
)
