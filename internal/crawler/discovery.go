package crawler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/TheBoringBakery/MoonCaker/internal/riot"
)

// matchHistoryLimit caps how many recent match ids are pulled per identity.
const matchHistoryLimit = 100

// discoverCandidates resolves names to identities, pulls each identity's
// recent match ids in the fixed queue, and returns the ids not yet stored,
// in arrival order with duplicates removed. A failed per-identity lookup
// contributes zero candidates; only a storage fault escalates.
func (e *Engine) discoverCandidates(ctx context.Context, region string, names []string) ([]string, error) {
	bigRegion, ok := riot.BigRegion(region)
	if !ok {
		return nil, fmt.Errorf("no big-region routing for %q", region)
	}

	refs := e.resolveIdentifiers(ctx, region, names)

	var candidates []string
	for _, ref := range refs {
		ids, err := e.api.MatchIDsByPUUID(ctx, bigRegion, ref.PUUID, riot.QueueClashID, matchHistoryLimit)
		if err != nil {
			e.logger.Debug("match history lookup failed",
				zap.String("name", ref.Name), zap.Error(err))
			continue
		}
		candidates = append(candidates, ids...)
	}

	seen := make(map[string]struct{}, len(candidates))
	fresh := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		stored, err := e.store.ExistsMatch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("dedup lookup for %s: %w", id, err)
		}
		if stored {
			continue
		}
		fresh = append(fresh, id)
	}
	return fresh, nil
}
