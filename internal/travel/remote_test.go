package travel_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
	"github.com/AliEdi10/artinbooking-sub001/internal/travel"
)

var (
	from = domain.Location{Lat: 52.37, Lng: 4.89}
	to   = domain.Location{Lat: 52.09, Lng: 5.12}
)

func TestRemoteCalculatorUsesRemoteEstimate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/route", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("depart_at"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"duration_minutes": 42.5, "distance_km": 33.1}`))
	}))
	defer srv.Close()

	calc := travel.NewRemoteCalculator(srv.URL, srv.Client(), travel.NewEstimator(0), nil)
	est, err := calc.Travel(context.Background(), from, to, time.Now())
	require.NoError(t, err)
	require.Equal(t, 42.5, est.Minutes)
	require.Equal(t, 33.1, est.DistanceKM)
}

func TestRemoteCalculatorFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	local := travel.NewEstimator(0)
	calc := travel.NewRemoteCalculator(srv.URL, srv.Client(), local, nil)

	est, err := calc.Travel(context.Background(), from, to, time.Now())
	require.NoError(t, err)

	want, err := local.Travel(context.Background(), from, to, time.Now())
	require.NoError(t, err)
	require.Equal(t, want, est)
}

func TestRemoteCalculatorFallsBackOnMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"duration_minutes": 10}`))
	}))
	defer srv.Close()

	local := travel.NewEstimator(0)
	calc := travel.NewRemoteCalculator(srv.URL, srv.Client(), local, nil)

	est, err := calc.Travel(context.Background(), from, to, time.Now())
	require.NoError(t, err)

	want, err := local.Travel(context.Background(), from, to, time.Now())
	require.NoError(t, err)
	require.Equal(t, want, est)
}

func TestRemoteCalculatorFallsBackOnUnreachableHost(t *testing.T) {
	local := travel.NewEstimator(0)
	calc := travel.NewRemoteCalculator("http://127.0.0.1:1", &http.Client{Timeout: 200 * time.Millisecond}, local, nil)

	est, err := calc.Travel(context.Background(), from, to, time.Now())
	require.NoError(t, err)
	require.Greater(t, est.DistanceKM, 0.0)
}

func TestRemoteCalculatorDistanceIsLocal(t *testing.T) {
	local := travel.NewEstimator(0)
	calc := travel.NewRemoteCalculator("http://127.0.0.1:1", nil, local, nil)
	require.Equal(t, local.DistanceKM(from, to), calc.DistanceKM(from, to))
}
