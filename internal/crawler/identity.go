package crawler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/TheBoringBakery/MoonCaker/internal/riot"
)

// PlayerRef pairs a ladder display name with its resolved stable identity.
// Resolution failures are omitted rather than padded with placeholders, so
// callers always re-pair by association and never by positional index.
type PlayerRef struct {
	Name  string
	PUUID string
}

// fetchPage returns the display names on one ladder page, blanks filtered.
// An empty slice means the partition's pagination is exhausted; an error
// means the page could not be fetched this pass.
func (e *Engine) fetchPage(ctx context.Context, region, tier, division string, page int) ([]string, error) {
	entries, err := e.api.LeagueEntries(ctx, region, riot.QueueRankedSolo, tier, division, page)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.SummonerName == "" {
			continue
		}
		names = append(names, entry.SummonerName)
	}
	return names, nil
}

// resolveIdentifiers turns display names into PlayerRefs, preserving input
// order. Names the upstream cannot resolve contribute no entry; a 404 here
// usually means the player renamed between the ladder listing and now.
func (e *Engine) resolveIdentifiers(ctx context.Context, region string, names []string) []PlayerRef {
	refs := make([]PlayerRef, 0, len(names))
	for _, name := range names {
		summoner, err := e.api.SummonerByName(ctx, region, name)
		if err != nil {
			if !errors.Is(err, riot.ErrNotFound) {
				e.logger.Warn("identity resolution failed",
					zap.String("region", region), zap.String("name", name), zap.Error(err))
			}
			continue
		}
		if summoner.PUUID == "" {
			continue
		}
		refs = append(refs, PlayerRef{Name: name, PUUID: summoner.PUUID})
	}
	return refs
}
