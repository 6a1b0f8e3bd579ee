package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sodium-tycoon/internal/config"
	"github.com/yourusername/sodium-tycoon/internal/metrics"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed means stakes are sized normally
	CircuitClosed CircuitState = iota
	// CircuitHalfOpen means sizing resumes after cooldown until the next trip
	CircuitHalfOpen
	// CircuitOpen means every wager is forced to the minimum stake
	CircuitOpen
)

// String returns string representation of circuit state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	case CircuitOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// TripEvent describes the breaker state at the moment it opened
type TripEvent struct {
	Reason       string
	Drawdown     float64
	Bankroll     int64
	FailureCount int
}

// TripCallback is called when the breaker opens. It runs with the breaker
// locked and must not call back into it.
type TripCallback func(event TripEvent)

// CircuitBreaker forces minimal stakes after a bankroll drawdown or a run of
// failed data fetches
type CircuitBreaker struct {
	config       config.CircuitBreakerConfig
	state        CircuitState
	failureCount int
	drawdown     float64
	peakBankroll int64
	lastBankroll int64
	openedAt     time.Time
	now          func() time.Time
	callbacks    []TripCallback
	mu           sync.Mutex
	logger       *logrus.Logger
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(cfg config.CircuitBreakerConfig, logger *logrus.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		config: cfg,
		state:  CircuitClosed,
		now:    time.Now,
		logger: logger,
	}
}

// ObserveBankroll tracks the peak balance and trips on drawdown
func (cb *CircuitBreaker) ObserveBankroll(bankroll int64) {
	if !cb.config.Enabled {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastBankroll = bankroll
	if bankroll > cb.peakBankroll {
		cb.peakBankroll = bankroll
	}
	if cb.peakBankroll > 0 {
		cb.drawdown = float64(cb.peakBankroll-bankroll) / float64(cb.peakBankroll)
	}

	if cb.config.MaxDrawdownPercent > 0 && cb.drawdown >= cb.config.MaxDrawdownPercent {
		cb.tripLocked(fmt.Sprintf(
			"Max drawdown exceeded (%.2f%% >= %.2f%%)",
			cb.drawdown*100, cb.config.MaxDrawdownPercent*100,
		))
	}
}

// RecordFailure counts a consecutive data-unavailable fetch
func (cb *CircuitBreaker) RecordFailure(err error) {
	if !cb.config.Enabled {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	fields := logrus.Fields{
		"failure_count": cb.failureCount,
		"max_allowed":   cb.config.MaxFailureCount,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	cb.logger.WithFields(fields).Warn("Failure recorded")

	if cb.config.MaxFailureCount > 0 && cb.failureCount >= cb.config.MaxFailureCount {
		cb.tripLocked(fmt.Sprintf(
			"Max failure count exceeded (%d >= %d)",
			cb.failureCount, cb.config.MaxFailureCount,
		))
	}
}

// RecordSuccess resets failure count
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
}

// IsOpen reports whether stakes must be forced to the minimum.
// An open breaker moves to half-open once the cooldown has elapsed.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) > cb.config.Cooldown() {
		cb.state = CircuitHalfOpen
		cb.failureCount = 0
		cb.peakBankroll = 0
		cb.drawdown = 0
		cb.logger.Info("Circuit breaker entering half-open state after cooldown")
	}

	return cb.state == CircuitOpen
}

// GetState returns current circuit state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// Drawdown returns the fraction lost from the observed peak
func (cb *CircuitBreaker) Drawdown() float64 {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.drawdown
}

// Reset manually resets circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = CircuitClosed
	cb.failureCount = 0
	cb.peakBankroll = 0
	cb.lastBankroll = 0
	cb.drawdown = 0

	cb.logger.WithFields(logrus.Fields{
		"old_state": oldState.String(),
		"new_state": cb.state.String(),
	}).Info("Circuit breaker manually reset")
}

// RegisterTripCallback registers a callback run whenever the breaker opens
func (cb *CircuitBreaker) RegisterTripCallback(callback TripCallback) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.callbacks = append(cb.callbacks, callback)
}

// Trip opens the breaker immediately
func (cb *CircuitBreaker) Trip(reason string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.tripLocked(reason)
}

// tripLocked assumes the lock is held
func (cb *CircuitBreaker) tripLocked(reason string) {
	if cb.state == CircuitOpen {
		return
	}

	oldState := cb.state
	cb.state = CircuitOpen
	cb.openedAt = cb.now()
	metrics.RecordCircuitBreakerTrip()

	cb.logger.WithFields(logrus.Fields{
		"old_state":       oldState.String(),
		"new_state":       cb.state.String(),
		"reason":          reason,
		"drawdown":        cb.drawdown,
		"failure_count":   cb.failureCount,
		"cooldown_period": cb.config.Cooldown(),
	}).Error("Circuit breaker tripped, forcing minimum stakes")

	event := TripEvent{
		Reason:       reason,
		Drawdown:     cb.drawdown,
		Bankroll:     cb.lastBankroll,
		FailureCount: cb.failureCount,
	}
	for _, callback := range cb.callbacks {
		callback(event)
	}
}
