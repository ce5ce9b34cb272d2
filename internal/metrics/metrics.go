// Package metrics holds the prometheus collectors for store operations,
// search degradation and index rebuilds.
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder groups the collectors registered for one store.
type Recorder struct {
	ops            *prometheus.CounterVec
	opDuration     *prometheus.HistogramVec
	searchDegraded *prometheus.CounterVec
	rebuilds       prometheus.Counter
	rebuildSeconds prometheus.Histogram
}

// New creates a Recorder and registers its collectors with reg.
// Passing nil registers nothing, which is convenient in tests.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rchart",
			Name:      "store_operations_total",
			Help:      "Store operations by name and outcome.",
		}, []string{"op", "outcome"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rchart",
			Name:      "store_operation_duration_seconds",
			Help:      "Time spent holding the store lock per operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
		searchDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rchart",
			Name:      "search_degraded_total",
			Help:      "Entity types dropped from a search because their query failed.",
		}, []string{"entity"}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rchart",
			Name:      "search_index_rebuilds_total",
			Help:      "Full search index rebuilds.",
		}),
		rebuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rchart",
			Name:      "search_index_rebuild_duration_seconds",
			Help:      "Duration of full search index rebuilds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(r.ops, r.opDuration, r.searchDegraded, r.rebuilds, r.rebuildSeconds)
	}
	return r
}

// ObserveOp records one completed store operation.
func (r *Recorder) ObserveOp(op string, err error, d time.Duration) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.ops.WithLabelValues(op, outcome).Inc()
	r.opDuration.WithLabelValues(op).Observe(d.Seconds())
}

// SearchDegraded counts an entity type skipped during a search.
func (r *Recorder) SearchDegraded(entity string) {
	if r == nil {
		return
	}
	r.searchDegraded.WithLabelValues(entity).Inc()
}

// IndexRebuilt records a full search index rebuild.
func (r *Recorder) IndexRebuilt(d time.Duration) {
	if r == nil {
		return
	}
	r.rebuilds.Inc()
	r.rebuildSeconds.Observe(d.Seconds())
}
