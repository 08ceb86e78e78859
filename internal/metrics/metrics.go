// Package metrics holds the prometheus instrumentation for the
// health-checking daemon: one struct of pre-registered collectors built
// once by NewMetrics and threaded through every component that needs to
// record something.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every prometheus collector the health-check core and its
// ambient daemon export.
type Metrics struct {
	// per-probe outcomes, one counter per (peer, outcome) pair
	ProbesTotal *prometheus.CounterVec

	// wall-clock duration of a single probe, connect through verdict
	ProbeDuration *prometheus.HistogramVec

	// published down bit, mirrored as a gauge for dashboards/alerting
	PeerDown *prometheus.GaugeVec

	// current consecutive like-kind run length
	RunLength *prometheus.GaugeVec

	// count of successful ownership takeovers, i.e. a prior owner was
	// judged dead by the staleness deadline
	OwnershipTransfers *prometheus.CounterVec

	// per-upstream confidence score, see internal/healthcheck/confidence.go
	ConfidenceScore *prometheus.GaugeVec

	// round trip time of the most recent successful probe per peer
	ProbeRTT *prometheus.GaugeVec
}

// NewMetrics creates and registers every collector under namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ProbesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Total completed probes by peer and terminal outcome.",
		}, []string{"peer", "outcome"}),

		ProbeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of a single probe, connect through verdict.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"peer"}),

		PeerDown: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peer_down",
			Help:      "Published health state per peer (1 = down, 0 = up).",
		}, []string{"peer"}),

		RunLength: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_length",
			Help:      "Consecutive probes sharing the current verdict, per peer.",
		}, []string{"peer"}),

		OwnershipTransfers: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ownership_transfers_total",
			Help:      "Count of ownership takeovers from a presumed-dead worker, per peer.",
		}, []string{"peer"}),

		ConfidenceScore: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "confidence_score",
			Help:      "Aggregate [0,1] confidence score per upstream group.",
		}, []string{"upstream"}),

		ProbeRTT: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_rtt_seconds",
			Help:      "Round trip time of the most recent successful probe, per peer.",
		}, []string{"peer"}),
	}
}
