package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan pipeline metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_cleaner_scan_runs_total",
			Help: "Total number of scan runs started",
		},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_cleaner_scan_is_running",
			Help: "Whether a scan is currently running (1) or not (0)",
		},
	)

	ScanFilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_cleaner_scan_files_processed_total",
			Help: "Total number of files processed by scans",
		},
		[]string{"type"}, // "image", "video"
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_cleaner_scan_last_run_duration_seconds",
			Help: "Duration of the last completed scan run in seconds",
		},
	)

	ScanCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_cleaner_scan_cancellations_total",
			Help: "Total number of scan runs stopped before completion",
		},
	)

	ScanFileErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_cleaner_scan_file_errors_total",
			Help: "Total number of per-file errors tolerated during scans",
		},
	)
)

// Feature extraction metrics
var (
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_cleaner_extraction_duration_seconds",
			Help:    "Per-feature extraction duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"feature"}, // "blur", "phash", "faces", "video_signature", "video_content"
	)

	ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_cleaner_extraction_failures_total",
			Help: "Total number of sub-feature extraction failures",
		},
		[]string{"feature"},
	)
)

// Feature cache metrics
var (
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_cleaner_cache_hits_total",
			Help: "Total number of valid feature cache entries reused",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_cleaner_cache_misses_total",
			Help: "Total number of cache misses forcing recomputation",
		},
	)

	CacheDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_cleaner_cache_degraded_total",
			Help: "Total number of storage errors degraded to cache misses",
		},
	)

	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_cleaner_db_queries_total",
			Help: "Total number of feature cache queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_cleaner_db_query_duration_seconds",
			Help:    "Feature cache query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Grouping metrics
var (
	GroupsEmitted = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_cleaner_groups_emitted",
			Help: "Number of duplicate groups emitted by the last scan",
		},
		[]string{"kind"}, // "similar_images", "duplicate_videos"
	)
)
