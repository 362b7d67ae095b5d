package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradewire_fetches_total",
			Help: "Headline source fetches",
		},
		[]string{"status"}, // status: success|error
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradewire_cache_lookups_total",
			Help: "Refresh cache reads",
		},
		[]string{"result"}, // result: hit|miss|stale
	)

	LastRefresh = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradewire_last_refresh_timestamp",
			Help: "Unix timestamp of the last successful fetch",
		},
	)

	HeadlinesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradewire_headlines_processed_total",
			Help: "Headlines run through the pipeline, by category and sentiment",
		},
		[]string{"category", "sentiment"},
	)

	UrgentHeadlines = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradewire_urgent_headlines_total",
			Help: "Headlines flagged as urgent",
		},
	)

	PollerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradewire_poller_runs_total",
			Help: "Periodic refresh runs",
		},
		[]string{"status"},
	)
)

var once sync.Once

// Init registers all collectors with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(Fetches)
		prometheus.MustRegister(CacheLookups)
		prometheus.MustRegister(LastRefresh)
		prometheus.MustRegister(HeadlinesProcessed)
		prometheus.MustRegister(UrgentHeadlines)
		prometheus.MustRegister(PollerRuns)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPollerRun records one periodic refresh.
func RecordPollerRun(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PollerRuns.WithLabelValues(status).Inc()
}
