// Package travel provides TravelCalculator implementations: a pure great-circle
// estimator, a traffic-aware remote client that degrades to the estimator, and a
// Redis-backed caching layer.
package travel

import (
	"context"
	"math"
	"time"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
)

// DefaultSpeedKPH is the assumed average driving speed for local estimates.
const DefaultSpeedKPH = 40.0

// Estimator approximates travel cost with haversine distance at constant speed.
// It is always available and never returns an error.
type Estimator struct {
	SpeedKPH float64
}

// NewEstimator builds an Estimator, defaulting to DefaultSpeedKPH.
func NewEstimator(speedKPH float64) *Estimator {
	if speedKPH <= 0 {
		speedKPH = DefaultSpeedKPH
	}
	return &Estimator{SpeedKPH: speedKPH}
}

// DistanceKM returns the great-circle distance between two coordinates.
func (e *Estimator) DistanceKM(from, to domain.Location) float64 {
	return haversineKM(from, to)
}

// Travel estimates the leg at constant speed, ignoring departure time.
func (e *Estimator) Travel(_ context.Context, from, to domain.Location, _ time.Time) (domain.TravelEstimate, error) {
	km := haversineKM(from, to)
	return domain.TravelEstimate{
		Minutes:    km / e.SpeedKPH * 60,
		DistanceKM: km,
	}, nil
}

func haversineKM(a, b domain.Location) float64 {
	const earthRadiusKM = 6371.0
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dlat := toRadians(b.Lat - a.Lat)
	dlng := toRadians(b.Lng - a.Lng)

	sinDlat := math.Sin(dlat / 2)
	sinDlng := math.Sin(dlng / 2)
	h := sinDlat*sinDlat + math.Cos(lat1)*math.Cos(lat2)*sinDlng*sinDlng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
