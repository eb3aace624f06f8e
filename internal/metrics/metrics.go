package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes used as the "result" label.
const (
	ResultOK          = "ok"
	ResultInvalid     = "invalid"
	ResultUnavailable = "unavailable"
	ResultBlocked     = "blocked"
	ResultNoProxy     = "no_proxy"
)

type Collector struct {
	fetchesTotal    *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	proxiesReturned *prometheus.CounterVec
}

// NewCollector registers the provider metrics with reg. A nil reg falls back
// to a private registry so several clients never collide.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Collector{
		fetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Total number of proxy fetch calls by outcome",
			},
			[]string{"mode", "result"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Provider request duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"mode"},
		),
		proxiesReturned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proxies_returned_total",
				Help:      "Total number of proxies returned to callers",
			},
			[]string{"type"},
		),
	}
}

func (c *Collector) RecordFetch(mode, result string) {
	c.fetchesTotal.WithLabelValues(mode, result).Inc()
}

func (c *Collector) RecordFetchDuration(mode string, seconds float64) {
	c.fetchDuration.WithLabelValues(mode).Observe(seconds)
}

func (c *Collector) RecordProxiesReturned(connType string, count int) {
	c.proxiesReturned.WithLabelValues(connType).Add(float64(count))
}
