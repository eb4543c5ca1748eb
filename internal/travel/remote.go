package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
)

var remoteFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "travel_remote_fallback_total",
	Help: "Remote travel estimates replaced by the local estimator, by reason.",
}, []string{"reason"})

// RemoteCalculator queries a traffic-aware routing endpoint. Any failure
// (network, status, malformed body, missing fields) transparently degrades to
// the local estimator: travel estimation must never abort slot computation.
type RemoteCalculator struct {
	baseURL  string
	client   *http.Client
	fallback *Estimator
	logger   *zap.Logger
}

// NewRemoteCalculator constructs the remote client. fallback must not be nil.
func NewRemoteCalculator(baseURL string, client *http.Client, fallback *Estimator, logger *zap.Logger) *RemoteCalculator {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteCalculator{baseURL: baseURL, client: client, fallback: fallback, logger: logger}
}

// DistanceKM is a pure geometry check and never goes over the network.
func (r *RemoteCalculator) DistanceKM(from, to domain.Location) float64 {
	return r.fallback.DistanceKM(from, to)
}

type routeResponse struct {
	DurationMinutes *float64 `json:"duration_minutes"`
	DistanceKM      *float64 `json:"distance_km"`
}

// Travel fetches a traffic-aware estimate for the leg, degrading to the local
// estimator on any failure.
func (r *RemoteCalculator) Travel(ctx context.Context, from, to domain.Location, departAt time.Time) (domain.TravelEstimate, error) {
	est, err := r.fetch(ctx, from, to, departAt)
	if err != nil {
		r.logger.Warn("remote travel estimate failed, using local estimator", zap.Error(err))
		return r.fallback.Travel(ctx, from, to, departAt)
	}
	return est, nil
}

func (r *RemoteCalculator) fetch(ctx context.Context, from, to domain.Location, departAt time.Time) (domain.TravelEstimate, error) {
	q := url.Values{}
	q.Set("from_lat", formatCoord(from.Lat))
	q.Set("from_lng", formatCoord(from.Lng))
	q.Set("to_lat", formatCoord(to.Lat))
	q.Set("to_lng", formatCoord(to.Lng))
	q.Set("depart_at", strconv.FormatInt(departAt.Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/route?"+q.Encode(), nil)
	if err != nil {
		remoteFallbackTotal.WithLabelValues("request").Inc()
		return domain.TravelEstimate{}, fmt.Errorf("build route request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		remoteFallbackTotal.WithLabelValues("network").Inc()
		return domain.TravelEstimate{}, fmt.Errorf("route request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		remoteFallbackTotal.WithLabelValues("status").Inc()
		return domain.TravelEstimate{}, fmt.Errorf("route request: status %d", resp.StatusCode)
	}

	var payload routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		remoteFallbackTotal.WithLabelValues("decode").Inc()
		return domain.TravelEstimate{}, fmt.Errorf("decode route response: %w", err)
	}
	if payload.DurationMinutes == nil || payload.DistanceKM == nil {
		remoteFallbackTotal.WithLabelValues("missing_fields").Inc()
		return domain.TravelEstimate{}, fmt.Errorf("route response missing fields")
	}
	return domain.TravelEstimate{Minutes: *payload.DurationMinutes, DistanceKM: *payload.DistanceKM}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
