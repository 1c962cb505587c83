package riot

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TheBoringBakery/MoonCaker/internal/keygate"
)

// scriptedAPI returns the queued error for each call until the script runs
// out, then succeeds with canned data.
type scriptedAPI struct {
	errs    []error
	calls   int
	summons map[string]Summoner
}

func (s *scriptedAPI) next() error {
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func (s *scriptedAPI) LeagueEntries(context.Context, string, string, string, string, int) ([]LeagueEntry, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return []LeagueEntry{{SummonerName: "alpha"}}, nil
}

func (s *scriptedAPI) SummonerByName(_ context.Context, _ string, name string) (Summoner, error) {
	if err := s.next(); err != nil {
		return Summoner{}, err
	}
	if summoner, ok := s.summons[name]; ok {
		return summoner, nil
	}
	return Summoner{Name: name, PUUID: "puuid-" + name}, nil
}

func (s *scriptedAPI) MatchIDsByPUUID(context.Context, string, string, int, int) ([]string, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return []string{"EUW1_1"}, nil
}

func (s *scriptedAPI) MatchByID(context.Context, string, string) (Match, error) {
	if err := s.next(); err != nil {
		return Match{}, err
	}
	return Match{}, nil
}

func (s *scriptedAPI) TimelineByID(context.Context, string, string) (Timeline, error) {
	if err := s.next(); err != nil {
		return Timeline{}, err
	}
	return Timeline{}, nil
}

func newTestClient(api API, gate *keygate.Gate) (*Client, *[]time.Duration) {
	client := NewClient(api, gate, nil)
	slept := &[]time.Duration{}
	client.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return client, slept
}

func TestForbiddenBlocksForReplacementAndRetries(t *testing.T) {
	t.Parallel()

	gate := keygate.New("stale")
	gate.OnRequest(func() { gate.Supply("fresh") })

	api := &scriptedAPI{errs: []error{&APIError{StatusCode: http.StatusForbidden}}}
	client, _ := newTestClient(api, gate)

	summoner, err := client.SummonerByName(context.Background(), "euw1", "alpha")
	require.NoError(t, err)
	require.Equal(t, "puuid-alpha", summoner.PUUID)
	require.Equal(t, 2, api.calls)
	require.Equal(t, "fresh", gate.Current())
}

// supplyThenForbidAPI rejects its first call with a 403, installing a fresh
// credential on the gate before returning, as if an operator's supply landed
// while the doomed request was in flight.
type supplyThenForbidAPI struct {
	*scriptedAPI
	gate     *keygate.Gate
	rejected bool
}

func (s *supplyThenForbidAPI) SummonerByName(ctx context.Context, region, name string) (Summoner, error) {
	if !s.rejected {
		s.rejected = true
		s.gate.Supply("fresh")
		s.calls++
		return Summoner{}, &APIError{StatusCode: http.StatusForbidden}
	}
	return s.scriptedAPI.SummonerByName(ctx, region, name)
}

func TestForbiddenAfterRacingSupplyRetriesWithoutBlocking(t *testing.T) {
	t.Parallel()

	gate := keygate.New("stale")
	var prompts atomic.Int32
	gate.OnRequest(func() { prompts.Add(1) })

	api := &supplyThenForbidAPI{scriptedAPI: &scriptedAPI{}, gate: gate}
	client, _ := newTestClient(api, gate)

	summoner, err := client.SummonerByName(context.Background(), "euw1", "alpha")
	require.NoError(t, err)
	require.Equal(t, "puuid-alpha", summoner.PUUID)
	require.Equal(t, 2, api.calls)
	// The already-installed key satisfied the rejection; no exchange opened.
	require.Zero(t, prompts.Load())
}

func TestRateLimitHonorsRetryAfter(t *testing.T) {
	t.Parallel()

	api := &scriptedAPI{errs: []error{
		&APIError{StatusCode: http.StatusTooManyRequests, RetryAfter: 10 * time.Second},
	}}
	client, slept := newTestClient(api, keygate.New("k"))

	_, err := client.LeagueEntries(context.Background(), "euw1", QueueRankedSolo, "GOLD", "II", 1)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{10 * time.Second}, *slept)
}

func TestRateLimitDefaultBackoffScalesWithAttempt(t *testing.T) {
	t.Parallel()

	api := &scriptedAPI{errs: []error{
		&APIError{StatusCode: http.StatusTooManyRequests},
		&APIError{StatusCode: http.StatusTooManyRequests},
	}}
	client, slept := newTestClient(api, keygate.New("k"))

	_, err := client.MatchIDsByPUUID(context.Background(), "europe", "p1", QueueClashID, 100)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{60 * time.Second, 120 * time.Second}, *slept)
}

func TestNotFoundIsTerminal(t *testing.T) {
	t.Parallel()

	api := &scriptedAPI{errs: []error{&APIError{StatusCode: http.StatusNotFound}}}
	client, slept := newTestClient(api, keygate.New("k"))

	_, err := client.MatchByID(context.Background(), "europe", "EUW1_404")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, api.calls)
	require.Empty(t, *slept)
}

func TestTransientFailuresExhaustBudget(t *testing.T) {
	t.Parallel()

	api := &scriptedAPI{errs: []error{
		&APIError{StatusCode: http.StatusInternalServerError},
		&APIError{StatusCode: http.StatusBadGateway},
		&APIError{StatusCode: http.StatusInternalServerError},
	}}
	client, _ := newTestClient(api, keygate.New("k"))

	_, err := client.TimelineByID(context.Background(), "europe", "EUW1_1")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, 3, api.calls)
}

func TestRepeatedForbiddenConsumesSharedBudget(t *testing.T) {
	t.Parallel()

	gate := keygate.New("stale")
	gate.OnRequest(func() { gate.Supply("still-bad") })

	api := &scriptedAPI{errs: []error{
		&APIError{StatusCode: http.StatusForbidden},
		&APIError{StatusCode: http.StatusForbidden},
		&APIError{StatusCode: http.StatusForbidden},
	}}
	client, _ := newTestClient(api, gate)

	_, err := client.SummonerByName(context.Background(), "euw1", "alpha")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, 3, api.calls)
}

func TestNonAPIErrorIsRetried(t *testing.T) {
	t.Parallel()

	api := &scriptedAPI{errs: []error{errors.New("connection reset")}}
	client, _ := newTestClient(api, keygate.New("k"))

	entries, err := client.LeagueEntries(context.Background(), "euw1", QueueRankedSolo, "GOLD", "II", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 2, api.calls)
}

func TestCanceledContextStopsRetrying(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &scriptedAPI{errs: []error{&APIError{StatusCode: http.StatusInternalServerError}}}
	client, _ := newTestClient(api, keygate.New("k"))

	_, err := client.MatchByID(ctx, "europe", "EUW1_1")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, api.calls)
}
