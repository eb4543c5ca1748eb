package travel_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
	"github.com/AliEdi10/artinbooking-sub001/internal/travel"
)

type countingCalculator struct {
	calls int
}

func (c *countingCalculator) DistanceKM(_, _ domain.Location) float64 { return 1 }

func (c *countingCalculator) Travel(_ context.Context, _, _ domain.Location, _ time.Time) (domain.TravelEstimate, error) {
	c.calls++
	return domain.TravelEstimate{Minutes: 12, DistanceKM: 8}, nil
}

func newCacheClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCachedCalculatorMemoisesWithinBucket(t *testing.T) {
	inner := &countingCalculator{}
	cache := travel.NewCachedCalculator(inner, newCacheClient(t), time.Minute, nil)

	departAt := time.Date(2026, time.September, 1, 9, 3, 0, 0, time.UTC)
	first, err := cache.Travel(context.Background(), from, to, departAt)
	require.NoError(t, err)

	// Same 15-minute bucket, different second: served from cache.
	second, err := cache.Travel(context.Background(), from, to, departAt.Add(5*time.Minute))
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)
}

func TestCachedCalculatorSeparatesBuckets(t *testing.T) {
	inner := &countingCalculator{}
	cache := travel.NewCachedCalculator(inner, newCacheClient(t), time.Minute, nil)

	departAt := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	_, err := cache.Travel(context.Background(), from, to, departAt)
	require.NoError(t, err)
	_, err = cache.Travel(context.Background(), from, to, departAt.Add(20*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestCachedCalculatorDistanceDelegates(t *testing.T) {
	inner := &countingCalculator{}
	cache := travel.NewCachedCalculator(inner, newCacheClient(t), time.Minute, nil)
	require.Equal(t, 1.0, cache.DistanceKM(from, to))
	require.Zero(t, inner.calls)
}
