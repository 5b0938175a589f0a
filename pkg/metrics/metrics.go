// Package metrics defines the Prometheus metrics the coordinator publishes,
// grounded on the teacher's pkg/metrics + pkg/statedb's cell.Metric pattern:
// metrics live in their own small struct constructed once and handed to
// whatever needs to record against it, rather than global package-level
// counters reached into from arbitrary call sites.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles the fabricstated metrics. The coordinator records all of
// them except RoutesUnresolvable, which no code sets.
type Registry struct {
	UpdatesAccepted  prometheus.Counter
	UpdatesRejected  *prometheus.CounterVec
	PublishedGeneration prometheus.Gauge
	ResolvePassSeconds prometheus.Histogram
	RoutesUnresolvable prometheus.Gauge
}

// NewRegistry constructs and registers every metric against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	m := &Registry{
		UpdatesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fabricstated",
			Name:      "updates_accepted_total",
			Help:      "Number of update_done calls that published a new snapshot.",
		}),
		UpdatesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fabricstated",
			Name:      "updates_rejected_total",
			Help:      "Number of update_done calls rejected, by error category.",
		}, []string{"reason"}),
		PublishedGeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fabricstated",
			Name:      "published_generation",
			Help:      "Generation number of the currently published SwitchState.",
		}),
		ResolvePassSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fabricstated",
			Name:      "resolve_pass_seconds",
			Help:      "Wall-clock duration of a single resolver pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		RoutesUnresolvable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fabricstated",
			Name:      "routes_unresolvable",
			Help:      "Number of routes left Unresolvable after the last resolver pass.",
		}),
	}
	reg.MustRegister(m.UpdatesAccepted, m.UpdatesRejected, m.PublishedGeneration, m.ResolvePassSeconds, m.RoutesUnresolvable)
	return m
}
