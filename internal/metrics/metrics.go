// Package metrics provides centralized Prometheus metrics registry for the betting bot.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	DataFetchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sodium_tycoon",
		Name:      "data_fetch_failures_total",
		Help:      "Total number of failed fight history fetches",
	})
	WagersRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sodium_tycoon",
		Name:      "wagers_recorded_total",
		Help:      "Total number of wagers handed to execution",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sodium_tycoon",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker trips",
	})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sodium_tycoon",
		Name:      "current_bankroll",
		Help:      "Bankroll observed at the last decision",
	})
	CalibrationCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sodium_tycoon",
		Name:      "calibration_cache_hit_ratio",
		Help:      "Hit ratio of the per-fighter calibration cache",
	})
)

// Histogram metrics
var (
	StakeAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sodium_tycoon",
		Name:      "stake_amount",
		Help:      "Stake sizes returned by the staking engine",
		Buckets:   []float64{1, 10, 100, 1000, 10000, 50000, 100000, 300000},
	})
	DecisionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sodium_tycoon",
		Name:      "decision_duration_seconds",
		Help:      "End-to-end duration of a decision including the history fetch",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(DataFetchFailuresTotal)
		registry.MustRegister(WagersRecordedTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(CalibrationCacheHitRatio)

		registry.MustRegister(StakeAmount)
		registry.MustRegister(DecisionDuration)

		// Register strategy metrics
		registry.MustRegister(StrategyDecisionsTotal)
		registry.MustRegister(StrategyConfidenceScore)
		registry.MustRegister(StrategyEdge)
		registry.MustRegister(FailSafeDecisionsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordDataFetchFailure records a failed history fetch.
func RecordDataFetchFailure() {
	DataFetchFailuresTotal.Inc()
}

// RecordWager records a wager handed to execution along with its stake.
func RecordWager(stake int64) {
	WagersRecordedTotal.Inc()
	StakeAmount.Observe(float64(stake))
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateBankroll updates the current bankroll gauge.
func UpdateBankroll(amount int64) {
	CurrentBankroll.Set(float64(amount))
}

// RecordDecisionDuration records how long a decision took.
func RecordDecisionDuration(durationSeconds float64) {
	DecisionDuration.Observe(durationSeconds)
}
