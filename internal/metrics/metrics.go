package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoadDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orgmap_load_duration_seconds",
		Help:    "Time to fetch every entity collection at startup",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
	EntitiesLoaded = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orgmap_entities_loaded",
		Help: "Entities held in the current snapshot",
	}, []string{"collection"})
	PagesFetchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orgmap_pages_fetched_total",
		Help: "Pages fetched from the data source",
	}, []string{"collection"})
	BoundariesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orgmap_boundaries_total",
		Help: "Boundaries resolved by shape kind (none when not drawn)",
	}, []string{"kind"})
	TransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orgmap_transitions_total",
		Help: "Navigation messages by type and whether they changed state",
	}, []string{"message", "changed"})
	RenderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orgmap_render_duration_ms",
		Help:    "Time to build the visible feature set in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	StreamSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orgmap_stream_subscribers",
		Help: "Open navigation update streams",
	})
	StreamDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orgmap_stream_dropped_total",
		Help: "Navigation updates skipped for subscribers with a full buffer",
	})
	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orgmap_rate_limited_total",
		Help: "Requests rejected by the rate limiter by route",
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(LoadDurationSeconds)
	prometheus.MustRegister(EntitiesLoaded)
	prometheus.MustRegister(PagesFetchedTotal)
	prometheus.MustRegister(BoundariesTotal)
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(RenderDurationMs)
	prometheus.MustRegister(StreamSubscribers)
	prometheus.MustRegister(StreamDroppedTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
