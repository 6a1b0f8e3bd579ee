// Package metrics defines strategy-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Strategy-specific counter vectors
var (
	StrategyDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sodium_tycoon",
		Name:      "strategy_decisions_total",
		Help:      "Total number of decisions by strategy and chosen side",
	}, []string{"strategy_name", "side"})

	FailSafeDecisionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sodium_tycoon",
		Name:      "fail_safe_decisions_total",
		Help:      "Decisions made without history for at least one fighter",
	})
)

// Strategy-specific histogram vectors
var (
	StrategyConfidenceScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sodium_tycoon",
		Name:      "strategy_confidence_score",
		Help:      "Confidence scores for strategy decisions",
		Buckets:   []float64{0.5, 0.55, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9, 1.0},
	}, []string{"strategy_name"})
)

// Strategy-specific gauge vectors
var (
	StrategyEdge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sodium_tycoon",
		Name:      "strategy_edge",
		Help:      "Model probability minus crowd-proxy probability at the last decision",
	}, []string{"strategy_name"})
)

// RecordStrategyDecision records a strategy decision.
func RecordStrategyDecision(strategyName, side string, confidence, edge float64) {
	StrategyDecisionsTotal.WithLabelValues(strategyName, side).Inc()
	StrategyConfidenceScore.WithLabelValues(strategyName).Observe(confidence)
	StrategyEdge.WithLabelValues(strategyName).Set(edge)
}

// RecordFailSafeDecision records a decision made on the no-data path.
func RecordFailSafeDecision() {
	FailSafeDecisionsTotal.Inc()
}
