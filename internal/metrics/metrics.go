package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TitlesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotitle_titles_generated_total",
			Help: "Total number of titles generated successfully",
		},
		[]string{"backend"},
	)

	TitleGenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotitle_title_generation_failures_total",
			Help: "Total number of failed title generations by error kind",
		},
		[]string{"backend", "kind"},
	)

	TitleGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "autotitle_title_generation_duration_seconds",
			Help: "Duration of title generation including refinement round-trips",
		},
		[]string{"backend"},
	)

	ModelCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotitle_model_cache_hits_total",
			Help: "Model catalogue reads served from a fresh cache entry",
		},
		[]string{"backend"},
	)

	ModelCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotitle_model_cache_misses_total",
			Help: "Model catalogue reads that required a live backend query",
		},
		[]string{"backend"},
	)

	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotitle_catalog_refreshes_total",
			Help: "Model catalogue refresh attempts by outcome",
		},
		[]string{"backend", "outcome"},
	)

	DuplicateLinesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autotitle_duplicate_lines_removed_total",
			Help: "Document lines removed as duplicate titles",
		},
	)
)
