package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
)

const defaultCacheTTL = 5 * time.Minute

// CachedCalculator memoises travel estimates in Redis. Departure times are
// bucketed to the 15-minute grid so repeated scans of the same day share
// entries. Cache failures are logged and treated as misses.
type CachedCalculator struct {
	inner  domain.TravelCalculator
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCalculator wraps inner with a Redis cache.
func NewCachedCalculator(inner domain.TravelCalculator, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedCalculator {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCalculator{inner: inner, client: client, ttl: ttl, logger: logger}
}

// DistanceKM delegates to the wrapped calculator; pure geometry is cheaper than
// a round trip.
func (c *CachedCalculator) DistanceKM(from, to domain.Location) float64 {
	return c.inner.DistanceKM(from, to)
}

// Travel returns a cached estimate when present, otherwise computes and stores.
func (c *CachedCalculator) Travel(ctx context.Context, from, to domain.Location, departAt time.Time) (domain.TravelEstimate, error) {
	key := cacheKey(from, to, departAt)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var est domain.TravelEstimate
		if err := json.Unmarshal(raw, &est); err == nil {
			return est, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("travel cache read failed", zap.Error(err))
	}

	est, err := c.inner.Travel(ctx, from, to, departAt)
	if err != nil {
		return domain.TravelEstimate{}, err
	}

	if raw, err := json.Marshal(est); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("travel cache write failed", zap.Error(err))
		}
	}
	return est, nil
}

func cacheKey(from, to domain.Location, departAt time.Time) string {
	bucket := departAt.UTC().Truncate(15 * time.Minute).Unix()
	return fmt.Sprintf("travel:%.5f,%.5f:%.5f,%.5f:%d", from.Lat, from.Lng, to.Lat, to.Lng, bucket)
}
