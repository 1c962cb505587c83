package crawler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/TheBoringBakery/MoonCaker/internal/riot"
)

// fakeAPI serves canned ladder pages, identities and matches. Entries are
// keyed by partition and page; missing summoners and matches 404.
type fakeAPI struct {
	pages     map[string][]riot.LeagueEntry // "region/tier/division/page"
	pageErrs  map[string]error
	summoners map[string]string // name -> puuid
	histories map[string][]string
	matches   map[string]riot.Match
	timelines map[string]riot.Timeline

	// errs is a one-shot error script consumed before any lookup.
	errs []error

	historyCalls []string
}

func pageKey(region, tier, division string, page int) string {
	return fmt.Sprintf("%s/%s/%s/%d", region, tier, division, page)
}

func (f *fakeAPI) next() error {
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeAPI) LeagueEntries(_ context.Context, region, _, tier, division string, page int) ([]riot.LeagueEntry, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	key := pageKey(region, tier, division, page)
	if err, ok := f.pageErrs[key]; ok {
		return nil, err
	}
	return f.pages[key], nil
}

func (f *fakeAPI) SummonerByName(_ context.Context, _, name string) (riot.Summoner, error) {
	if err := f.next(); err != nil {
		return riot.Summoner{}, err
	}
	puuid, ok := f.summoners[name]
	if !ok {
		return riot.Summoner{}, &riot.APIError{Op: "summoner-by-name", StatusCode: http.StatusNotFound}
	}
	return riot.Summoner{Name: name, PUUID: puuid}, nil
}

func (f *fakeAPI) MatchIDsByPUUID(_ context.Context, _, puuid string, _, _ int) ([]string, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	f.historyCalls = append(f.historyCalls, puuid)
	ids, ok := f.histories[puuid]
	if !ok {
		return nil, &riot.APIError{Op: "match-ids", StatusCode: http.StatusNotFound}
	}
	return ids, nil
}

func (f *fakeAPI) MatchByID(_ context.Context, _, id string) (riot.Match, error) {
	if err := f.next(); err != nil {
		return riot.Match{}, err
	}
	match, ok := f.matches[id]
	if !ok {
		return riot.Match{}, &riot.APIError{Op: "match-by-id", StatusCode: http.StatusNotFound}
	}
	return match, nil
}

func (f *fakeAPI) TimelineByID(_ context.Context, _, id string) (riot.Timeline, error) {
	if err := f.next(); err != nil {
		return riot.Timeline{}, err
	}
	timeline, ok := f.timelines[id]
	if !ok {
		return riot.Timeline{}, &riot.APIError{Op: "match-timeline", StatusCode: http.StatusNotFound}
	}
	return timeline, nil
}
