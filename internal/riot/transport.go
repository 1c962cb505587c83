// Package riot talks to the Riot games-statistics API. Transport performs the
// raw, rate-limited HTTP calls; Client wraps them with the retry, backoff and
// credential-refresh policy every other component goes through.
package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// API is the typed enumeration of upstream operations the crawler consumes.
// Transport implements it with direct calls, Client with resilient ones.
type API interface {
	// LeagueEntries returns one page of the ranked ladder for a partition.
	// An empty slice means the pagination is exhausted.
	LeagueEntries(ctx context.Context, region, queue, tier, division string, page int) ([]LeagueEntry, error)
	// SummonerByName resolves a display name to an account record.
	SummonerByName(ctx context.Context, region, name string) (Summoner, error)
	// MatchIDsByPUUID lists the most recent match ids for an account in a
	// fixed queue, newest first.
	MatchIDsByPUUID(ctx context.Context, bigRegion, puuid string, queue, count int) ([]string, error)
	// MatchByID fetches a full match summary.
	MatchByID(ctx context.Context, bigRegion, id string) (Match, error)
	// TimelineByID fetches the per-minute timeline of a match.
	TimelineByID(ctx context.Context, bigRegion, id string) (Timeline, error)
}

// APIError is a non-2xx upstream response.
type APIError struct {
	Op         string
	StatusCode int
	// RetryAfter is the server-advised wait on 429 responses, zero when the
	// header was absent or unparsable.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("riot %s: upstream status %d", e.Op, e.StatusCode)
}

// TransportConfig holds Transport construction knobs.
type TransportConfig struct {
	// BaseURL is a format string with one %s verb receiving the routing host
	// (server region or big region), e.g. "https://%s.api.riotgames.com".
	// Tests point it at an httptest server instead.
	BaseURL string
	// Key returns the credential to attach to each request. Wiring this to
	// keygate.(*Gate).Current makes credential swaps take effect on the next
	// attempt with no further plumbing.
	Key func() string
	// RequestsPerSecond caps outbound request rate; <= 0 disables pacing.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Transport issues raw HTTP calls against the Riot API.
type Transport struct {
	client  *http.Client
	baseURL string
	key     func() string
	limiter *rate.Limiter
}

// NewTransport builds a Transport from cfg, applying defaults for unset knobs.
func NewTransport(cfg TransportConfig) *Transport {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://%s.api.riotgames.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Transport{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		key:     cfg.Key,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// LeagueEntries implements API.
func (t *Transport) LeagueEntries(ctx context.Context, region, queue, tier, division string, page int) ([]LeagueEntry, error) {
	path := fmt.Sprintf("/lol/league/v4/entries/%s/%s/%s", queue, tier, division)
	query := url.Values{"page": {strconv.Itoa(page)}}
	var entries []LeagueEntry
	if err := t.get(ctx, "league-entries", region, path, query, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SummonerByName implements API.
func (t *Transport) SummonerByName(ctx context.Context, region, name string) (Summoner, error) {
	path := "/lol/summoner/v4/summoners/by-name/" + url.PathEscape(name)
	var summoner Summoner
	if err := t.get(ctx, "summoner-by-name", region, path, nil, &summoner); err != nil {
		return Summoner{}, err
	}
	summoner.Region = region
	return summoner, nil
}

// MatchIDsByPUUID implements API.
func (t *Transport) MatchIDsByPUUID(ctx context.Context, bigRegion, puuid string, queue, count int) ([]string, error) {
	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids", url.PathEscape(puuid))
	query := url.Values{
		"queue": {strconv.Itoa(queue)},
		"start": {"0"},
		"count": {strconv.Itoa(count)},
	}
	var ids []string
	if err := t.get(ctx, "match-ids", bigRegion, path, query, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MatchByID implements API.
func (t *Transport) MatchByID(ctx context.Context, bigRegion, id string) (Match, error) {
	var match Match
	if err := t.get(ctx, "match-by-id", bigRegion, "/lol/match/v5/matches/"+url.PathEscape(id), nil, &match); err != nil {
		return Match{}, err
	}
	return match, nil
}

// TimelineByID implements API.
func (t *Transport) TimelineByID(ctx context.Context, bigRegion, id string) (Timeline, error) {
	var timeline Timeline
	path := "/lol/match/v5/matches/" + url.PathEscape(id) + "/timeline"
	if err := t.get(ctx, "match-timeline", bigRegion, path, nil, &timeline); err != nil {
		return Timeline{}, err
	}
	return timeline, nil
}

func (t *Transport) get(ctx context.Context, op, host, path string, query url.Values, out any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf(t.baseURL, host) + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if t.key != nil {
		req.Header.Set("X-Riot-Token", t.key())
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("riot %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("riot %s: decode response: %w", op, err)
	}
	return nil
}

func parseRetryAfter(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
