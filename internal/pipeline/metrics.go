package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plates_frames_total",
		Help: "Frames read from the capture source by result",
	}, []string{"result"})

	stableTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plates_stable_candidates_total",
		Help: "Stable candidates declared by the voter",
	})

	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plates_submissions_total",
		Help: "Stable candidates submitted for validation by outcome",
	}, []string{"outcome"})

	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "plates_frame_duration_seconds",
		Help:    "Time spent processing one frame",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
	})
)
