package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "availability_compute_seconds",
		Help:    "Time spent computing feasible lesson slots for one request.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	candidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_candidates_total",
		Help: "Grid candidates evaluated grouped by outcome.",
	}, []string{"outcome"})
)
