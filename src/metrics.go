package storybot

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybot_generation_requests_total",
			Help: "Total number of story generation requests by provider and outcome.",
		},
		[]string{"provider", "status"},
	)
	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybot_generation_request_duration_seconds",
			Help:    "Histogram of story generation request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	storyLength = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybot_story_length_chars",
			Help:    "Histogram of generated story lengths in characters.",
			Buckets: prometheus.LinearBuckets(500, 500, 10),
		},
		[]string{"provider"},
	)
)

// Outcome labels for generationRequests.
const (
	statusSuccess   = "success"
	statusTransport = "error_transport"
	statusEnvelope  = "error_envelope"
)

func observeGeneration(provider, status string, started time.Time, story string) {
	generationRequests.With(prometheus.Labels{"provider": provider, "status": status}).Inc()
	generationDuration.With(prometheus.Labels{"provider": provider}).Observe(time.Since(started).Seconds())
	if status == statusSuccess {
		storyLength.With(prometheus.Labels{"provider": provider}).Observe(float64(len(story)))
	}
}
