package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis pipeline
var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookpulse_analyses_total",
			Help: "Analyses by outcome (success, no_results, invalid_input, source_unavailable, lexicon_unavailable, cancelled, internal_error)",
		},
		[]string{"outcome"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookpulse_analysis_duration_seconds",
			Help:    "Time to fetch, score and aggregate one query",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	PostsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookpulse_posts_fetched_total",
			Help: "Posts kept by the fetcher after cleaning and gating",
		},
	)

	PostsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookpulse_posts_discarded_total",
			Help: "Candidates dropped by the fetcher or quality filter, by reason",
		},
		[]string{"reason"},
	)

	PartialFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookpulse_partial_fetches_total",
			Help: "Fetches aborted mid-iteration by a source error",
		},
	)
)

// External source
var (
	RedditRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookpulse_reddit_requests_total",
			Help: "Reddit API requests by HTTP status class",
		},
		[]string{"status"},
	)

	SourceReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookpulse_source_ready",
			Help: "1 when the last source readiness probe succeeded",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookpulse_search_cache_lookups_total",
			Help: "Search cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// HTTP
var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookpulse_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)
)
