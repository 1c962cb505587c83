package riot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/TheBoringBakery/MoonCaker/internal/keygate"
)

// ErrNotFound marks a definitive negative upstream answer (404). Callers
// treat it as "no result", never as a retryable fault.
var ErrNotFound = errors.New("riot: not found")

// ErrUnavailable marks a call that stayed unsuccessful after the full retry
// budget.
var ErrUnavailable = errors.New("riot: upstream unavailable")

const (
	maxAttempts        = 3
	defaultRateBackoff = 60 * time.Second
)

// Client is the resilient wrapper around the raw API transport. Every call
// runs through a bounded attempt loop that recovers 403s by blocking on the
// credential gate, 429s by sleeping, and retries other faults until the
// shared budget runs out. It is the only component aware of the gate.
type Client struct {
	api    API
	gate   *keygate.Gate
	logger *zap.Logger

	// sleep is swapped out by tests to observe backoff without waiting.
	sleep       func(context.Context, time.Duration) error
	rateBackoff time.Duration
}

// NewClient wraps api with the retry and credential-refresh policy.
func NewClient(api API, gate *keygate.Gate, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:         api,
		gate:        gate,
		logger:      logger,
		sleep:       sleepCtx,
		rateBackoff: defaultRateBackoff,
	}
}

// LeagueEntries implements API with retries.
func (c *Client) LeagueEntries(ctx context.Context, region, queue, tier, division string, page int) ([]LeagueEntry, error) {
	return call(ctx, c, "league-entries", func(ctx context.Context) ([]LeagueEntry, error) {
		return c.api.LeagueEntries(ctx, region, queue, tier, division, page)
	})
}

// SummonerByName implements API with retries.
func (c *Client) SummonerByName(ctx context.Context, region, name string) (Summoner, error) {
	return call(ctx, c, "summoner-by-name", func(ctx context.Context) (Summoner, error) {
		return c.api.SummonerByName(ctx, region, name)
	})
}

// MatchIDsByPUUID implements API with retries.
func (c *Client) MatchIDsByPUUID(ctx context.Context, bigRegion, puuid string, queue, count int) ([]string, error) {
	return call(ctx, c, "match-ids", func(ctx context.Context) ([]string, error) {
		return c.api.MatchIDsByPUUID(ctx, bigRegion, puuid, queue, count)
	})
}

// MatchByID implements API with retries.
func (c *Client) MatchByID(ctx context.Context, bigRegion, id string) (Match, error) {
	return call(ctx, c, "match-by-id", func(ctx context.Context) (Match, error) {
		return c.api.MatchByID(ctx, bigRegion, id)
	})
}

// TimelineByID implements API with retries.
func (c *Client) TimelineByID(ctx context.Context, bigRegion, id string) (Timeline, error) {
	return call(ctx, c, "match-timeline", func(ctx context.Context) (Timeline, error) {
		return c.api.TimelineByID(ctx, bigRegion, id)
	})
}

// call runs fn through the shared attempt budget. Each classification branch
// consumes one attempt, so a pathological 403 or 429 stream still terminates
// after maxAttempts rather than looping forever.
func call[T any](ctx context.Context, c *Client, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		apiRequests.WithLabelValues(op).Inc()
		// The key in effect when the attempt launches; on a 403 the gate
		// compares it against the active key, so a supply that landed while
		// the request was in flight skips the blocking exchange.
		attemptKey := c.gate.Current()
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return zero, fmt.Errorf("riot %s: %w", op, ctx.Err())
		}
		apiRequestErrors.WithLabelValues(op).Inc()

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			c.logger.Warn("api call failed",
				zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return zero, fmt.Errorf("riot %s: %w", op, ErrNotFound)
		case http.StatusForbidden:
			apiForbiddenHits.Inc()
			c.logger.Warn("credential rejected, waiting for replacement", zap.String("op", op))
			if _, err := c.gate.RequestReplacement(ctx, attemptKey); err != nil {
				return zero, fmt.Errorf("riot %s: replace credential: %w", op, err)
			}
			c.logger.Info("credential replaced", zap.String("op", op))
		case http.StatusTooManyRequests:
			apiRateLimitHits.Inc()
			wait := apiErr.RetryAfter
			if wait <= 0 {
				wait = c.rateBackoff * time.Duration(attempt)
			}
			c.logger.Warn("rate limited, backing off",
				zap.String("op", op), zap.Duration("wait", wait))
			if err := c.sleep(ctx, wait); err != nil {
				return zero, fmt.Errorf("riot %s: %w", op, err)
			}
		default:
			c.logger.Warn("transient upstream failure",
				zap.String("op", op),
				zap.Int("status", apiErr.StatusCode),
				zap.Int("attempt", attempt))
		}
	}
	return zero, fmt.Errorf("riot %s: %d attempts exhausted: %w", op, maxAttempts, ErrUnavailable)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
