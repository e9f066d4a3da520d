package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "modi"

// Registry holds all kernel metrics on a private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	// Discovery metrics
	ComponentsDiscovered prometheus.Gauge
	OverridesDiscovered  prometheus.Gauge

	// Merge metrics
	SourcesLoaded  prometheus.Gauge
	SourcesSkipped prometheus.Counter
	Unresolved     prometheus.Gauge
	DegradedReads  prometheus.Counter

	// Lifecycle metrics
	SourceChanges prometheus.Counter
	BootDuration  prometheus.Gauge
}

// NewRegistry creates a registry with every kernel metric registered, plus
// the standard Go and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		ComponentsDiscovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "catalog",
			Name:      "components",
			Help:      "Number of valid components found by the last scan.",
		}),
		OverridesDiscovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "catalog",
			Name:      "overrides",
			Help:      "Number of override descriptors matched to components.",
		}),
		SourcesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "properties",
			Name:      "sources_loaded",
			Help:      "Number of property sources present in the last merge.",
		}),
		SourcesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "properties",
			Name:      "sources_skipped_total",
			Help:      "Optional property sources skipped because they were missing.",
		}),
		Unresolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "properties",
			Name:      "unresolved_placeholders",
			Help:      "Distinct placeholder keys no source could resolve.",
		}),
		DegradedReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "properties",
			Name:      "degraded_reads_total",
			Help:      "Merged property reads that failed and returned an empty view.",
		}),
		SourceChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "properties",
			Name:      "source_changes_total",
			Help:      "Changes observed on loaded property files since boot.",
		}),
		BootDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "kernel",
			Name:      "boot_duration_seconds",
			Help:      "Time from early context to finalized configuration.",
		}),
	}

	r.reg.MustRegister(
		r.ComponentsDiscovered,
		r.OverridesDiscovered,
		r.SourcesLoaded,
		r.SourcesSkipped,
		r.Unresolved,
		r.DegradedReads,
		r.SourceChanges,
		r.BootDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// MustRegister adds extra collectors, such as a Collector.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.reg.MustRegister(cs...)
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{})
}

// SetComponents records the catalog size.
func (r *Registry) SetComponents(n int) {
	if r == nil {
		return
	}
	r.ComponentsDiscovered.Set(float64(n))
}

// SetOverrides records the number of matched override descriptors.
func (r *Registry) SetOverrides(n int) {
	if r == nil {
		return
	}
	r.OverridesDiscovered.Set(float64(n))
}

// SetSourcesLoaded records how many sources the last merge used.
func (r *Registry) SetSourcesLoaded(n int) {
	if r == nil {
		return
	}
	r.SourcesLoaded.Set(float64(n))
}

// IncSourcesSkipped counts one skipped optional source.
func (r *Registry) IncSourcesSkipped() {
	if r == nil {
		return
	}
	r.SourcesSkipped.Inc()
}

// SetUnresolved records the unresolved placeholder count.
func (r *Registry) SetUnresolved(n int) {
	if r == nil {
		return
	}
	r.Unresolved.Set(float64(n))
}

// IncDegradedReads counts one failed merged read.
func (r *Registry) IncDegradedReads() {
	if r == nil {
		return
	}
	r.DegradedReads.Inc()
}

// IncSourceChanges counts one change notification.
func (r *Registry) IncSourceChanges() {
	if r == nil {
		return
	}
	r.SourceChanges.Inc()
}

// ObserveBoot records the boot duration.
func (r *Registry) ObserveBoot(d time.Duration) {
	if r == nil {
		return
	}
	r.BootDuration.Set(d.Seconds())
}
