package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search path labels.
const (
	PathExact = "exact"
	PathFuzzy = "fuzzy"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdex",
			Name:      "search_requests_total",
			Help:      "Total number of catalog searches",
		},
		[]string{"path", "status"}, // path: exact / fuzzy, status: ok / error
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rentdex",
			Name:      "search_duration_seconds",
			Help:      "Catalog search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"path"},
	)

	IndexRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdex",
			Name:      "index_rebuilds_total",
			Help:      "Fuzzy index rebuilds by outcome",
		},
		[]string{"result"}, // "ok" / "error"
	)

	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rentdex",
			Name:      "index_build_duration_seconds",
			Help:      "Time to load a snapshot and build the fuzzy index",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	IndexItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rentdex",
			Name:      "index_items",
			Help:      "Items in the current fuzzy index",
		},
	)

	SnapshotCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdex",
			Name:      "snapshot_cache_total",
			Help:      "Catalog snapshot cache lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(IndexBuildDuration)
	prometheus.MustRegister(IndexItems)
	prometheus.MustRegister(SnapshotCacheTotal)
	searchMetricsRegistered = true
}

// Search bundles the collectors the search service records into.
type Search struct {
	Requests      *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	Rebuilds      *prometheus.CounterVec
	BuildDuration prometheus.Observer
	IndexItems    prometheus.Gauge
}

// DefaultSearch returns the package-level collectors.
func DefaultSearch() *Search {
	return &Search{
		Requests:      SearchRequestsTotal,
		Duration:      SearchDuration,
		Rebuilds:      IndexRebuildsTotal,
		BuildDuration: IndexBuildDuration,
		IndexItems:    IndexItems,
	}
}
