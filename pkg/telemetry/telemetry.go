// Package telemetry holds the Prometheus instrumentation for the
// riskgate serving path. Metrics are registered once at package init
// and shared process-wide; the gateway exposes them on /metrics.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	// ScoresTotal counts scoring responses by risk label.
	ScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskgate",
			Subsystem: "gateway",
			Name:      "scores_total",
			Help:      "Total scoring responses served, by risk label.",
		},
		[]string{"label"},
	)

	// ScoreDuration tracks encode+predict latency. The pipeline is
	// in-memory and CPU-bound, so the buckets start sub-millisecond.
	ScoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "riskgate",
			Subsystem: "gateway",
			Name:      "score_duration_seconds",
			Help:      "Latency of the encode+predict+label pipeline.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)

	// RiskRuleOutOfRange counts requests whose rule-engine score fell
	// outside [0,1]. A data-quality signal, not an error.
	RiskRuleOutOfRange = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskgate",
			Subsystem: "gateway",
			Name:      "risk_rule_out_of_range_total",
			Help:      "Requests with risk_rule outside [0,1], scored anyway.",
		},
	)

	// ArtifactReloads counts successful atomic artifact swaps.
	ArtifactReloads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskgate",
			Subsystem: "gateway",
			Name:      "artifact_reloads_total",
			Help:      "Successful model artifact reloads.",
		},
	)

	// RequestsShed counts /score requests rejected by the concurrency
	// limiter.
	RequestsShed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskgate",
			Subsystem: "gateway",
			Name:      "requests_shed_total",
			Help:      "Scoring requests rejected due to concurrency saturation.",
		},
	)
)

func init() {
	// Safe register; ignore duplicate registration in case of multiple imports
	_ = prometheus.Register(ScoresTotal)
	_ = prometheus.Register(ScoreDuration)
	_ = prometheus.Register(RiskRuleOutOfRange)
	_ = prometheus.Register(ArtifactReloads)
	_ = prometheus.Register(RequestsShed)
}
