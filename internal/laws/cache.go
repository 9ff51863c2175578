package laws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const summaryVersionKey = "laws:summary:version"

// SummaryCache stores Summary values in Redis under versioned keys. Bumping
// the version orphans every cached summary at once; entries then age out by
// TTL. Concurrent misses for the same key share one loader call.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewSummaryCache instantiates the cache. A nil client disables caching.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *SummaryCache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, summaryVersionKey).Int64()
	if errors.Is(err, redis.Nil) || (err == nil && ver <= 0) {
		// SetNX keeps a concurrent Bump from being overwritten.
		if err := c.client.SetNX(ctx, summaryVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, summaryVersionKey).Int64()
	}
	return ver, err
}

func (c *SummaryCache) key(ctx context.Context, period SummaryPeriod) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("laws:summary:%s:%d:%02d:%d", period.Calendar, period.Year, period.Month, ver), nil
}

// Summary returns the cached summary for the period, calling load on a miss.
func (c *SummaryCache) Summary(ctx context.Context, period SummaryPeriod, load func(context.Context) (Summary, error)) (Summary, error) {
	if load == nil {
		return Summary{}, errors.New("laws: summary loader required")
	}
	if c == nil || c.client == nil {
		return load(ctx)
	}
	key, err := c.key(ctx, period)
	if err != nil {
		return Summary{}, err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var out Summary
		if err := json.Unmarshal(payload, &out); err == nil {
			return out, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return Summary{}, err
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		summary, err := load(ctx)
		if err != nil {
			return Summary{}, err
		}
		raw, err := json.Marshal(summary)
		if err != nil {
			return Summary{}, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return Summary{}, err
		}
		return summary, nil
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

// Invalidate bumps the version shared by every instance.
func (c *SummaryCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, summaryVersionKey).Err()
}
