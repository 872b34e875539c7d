package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offio_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "offio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offio_rate_limited_total",
			Help: "Agent requests rejected by the rate limiter",
		},
	)

	// Agent ingestion metrics
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offio_sessions_started_total",
			Help: "Work sessions started by desktop agents",
		},
	)

	SessionsEnded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offio_sessions_ended_total",
			Help: "Work sessions ended by desktop agents",
		},
	)

	ActivitySamples = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offio_activity_samples_total",
			Help: "Activity samples appended to sessions",
		},
	)

	ScreenshotsRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offio_screenshots_registered_total",
			Help: "Screenshot metadata rows registered",
		},
	)

	// Review metrics
	SessionReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offio_session_reviews_total",
			Help: "Session approval decisions",
		},
		[]string{"decision"},
	)

	VacationReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offio_vacation_reviews_total",
			Help: "Vacation approval decisions",
		},
		[]string{"decision"},
	)

	// Session detail cache
	DetailCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offio_session_detail_cache_hits_total",
			Help: "Session detail cache hits by tier",
		},
		[]string{"tier"},
	)

	DetailCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offio_session_detail_cache_misses_total",
			Help: "Session detail cache misses",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RateLimited,
		SessionsStarted,
		SessionsEnded,
		ActivitySamples,
		ScreenshotsRegistered,
		SessionReviews,
		VacationReviews,
		DetailCacheHits,
		DetailCacheMisses,
	)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
