package reveal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the reveal collectors
type Metrics struct {
	total    *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the reveal collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		total: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agencydash",
			Name:      "reveal_total",
			Help:      "Contact reveals by outcome.",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agencydash",
			Name:      "reveal_duration_seconds",
			Help:      "Time spent serving a contact reveal.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observe(status Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.total.WithLabelValues(string(status)).Inc()
	m.duration.Observe(elapsed.Seconds())
}
