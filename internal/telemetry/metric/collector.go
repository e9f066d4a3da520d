package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is the state a Collector reports on each scrape.
type Snapshot struct {
	Keys       int
	Sources    int
	Unresolved int
	Degraded   bool
}

// Collector reports the live merged configuration on each scrape.
type Collector struct {
	snapshot func() Snapshot

	keys       *prometheus.Desc
	sources    *prometheus.Desc
	unresolved *prometheus.Desc
	degraded   *prometheus.Desc
}

// NewCollector creates a collector that calls snapshot on every scrape.
func NewCollector(snapshot func() Snapshot) *Collector {
	return &Collector{
		snapshot: snapshot,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "config", "keys"),
			"Number of keys in the merged configuration.", nil, nil),
		sources: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "config", "sources"),
			"Number of named property sources.", nil, nil),
		unresolved: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "config", "unresolved"),
			"Unresolved placeholder keys in the merged configuration.", nil, nil),
		degraded: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "config", "degraded"),
			"1 if the last merged read failed.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.sources
	ch <- c.unresolved
	ch <- c.degraded
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.snapshot == nil {
		return
	}
	s := c.snapshot()
	degraded := 0.0
	if s.Degraded {
		degraded = 1
	}
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(s.Keys))
	ch <- prometheus.MustNewConstMetric(c.sources, prometheus.GaugeValue, float64(s.Sources))
	ch <- prometheus.MustNewConstMetric(c.unresolved, prometheus.GaugeValue, float64(s.Unresolved))
	ch <- prometheus.MustNewConstMetric(c.degraded, prometheus.GaugeValue, degraded)
}
