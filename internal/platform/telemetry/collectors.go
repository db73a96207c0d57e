package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quotescreen"

// Collectors are the Prometheus metrics exported at /-/metrics.
// A nil *Collectors is valid and records nothing.
type Collectors struct {
	quotes        prometheus.Gauge
	capacity      prometheus.Gauge
	currentIndex  prometheus.Gauge
	renders       *prometheus.CounterVec
	renderSeconds prometheus.Histogram
	storageErrors prometheus.Counter
}

// NewCollectors creates and registers the collectors.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		quotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quotes_stored",
			Help:      "Number of quotes in the store.",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quotes_capacity",
			Help:      "Maximum number of quotes the region can hold.",
		}),
		currentIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quote_current_index",
			Help:      "Index of the quote currently on the panel.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Frame commits by result.",
		}, []string{"result"}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time from layout start to commit return.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		storageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Failed reads or writes of the persisted region.",
		}),
	}

	reg.MustRegister(c.quotes, c.capacity, c.currentIndex, c.renders, c.renderSeconds, c.storageErrors)

	return c
}

// ObserveStore records the store size.
func (c *Collectors) ObserveStore(count, capacity int) {
	if c == nil {
		return
	}

	c.quotes.Set(float64(count))
	c.capacity.Set(float64(capacity))
}

// ObserveIndex records the displayed index.
func (c *Collectors) ObserveIndex(i int) {
	if c == nil {
		return
	}

	c.currentIndex.Set(float64(i))
}

// ObserveRender records a commit outcome.
func (c *Collectors) ObserveRender(err error, d time.Duration) {
	if c == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	c.renders.WithLabelValues(result).Inc()
	c.renderSeconds.Observe(d.Seconds())
}

// StorageError counts a failed region access.
func (c *Collectors) StorageError() {
	if c == nil {
		return
	}

	c.storageErrors.Inc()
}
