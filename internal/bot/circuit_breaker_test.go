package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/sodium-tycoon/internal/config"
)

func newTestBreaker() (*CircuitBreaker, *time.Time) {
	cb := NewCircuitBreaker(config.CircuitBreakerConfig{
		Enabled:            true,
		MaxDrawdownPercent: 0.5,
		MaxFailureCount:    3,
		CooldownSeconds:    60,
	}, quietLogger())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreakerDrawdown(t *testing.T) {
	cb, _ := newTestBreaker()

	cb.ObserveBankroll(10000)
	cb.ObserveBankroll(7000)
	assert.False(t, cb.IsOpen())
	assert.InDelta(t, 0.3, cb.Drawdown(), 1e-9)

	cb.ObserveBankroll(5000)
	assert.True(t, cb.IsOpen())
	assert.Equal(t, CircuitOpen, cb.GetState())
}

func TestCircuitBreakerTripEvent(t *testing.T) {
	cb, _ := newTestBreaker()
	var events []TripEvent
	cb.RegisterTripCallback(func(event TripEvent) { events = append(events, event) })

	cb.ObserveBankroll(10000)
	cb.ObserveBankroll(4000)

	assert.Len(t, events, 1)
	assert.Equal(t, int64(4000), events[0].Bankroll)
	assert.InDelta(t, 0.6, events[0].Drawdown, 1e-9)
	assert.Contains(t, events[0].Reason, "Max drawdown exceeded")
}

func TestCircuitBreakerFailures(t *testing.T) {
	cb, _ := newTestBreaker()
	fetchErr := errors.New("timeout")

	cb.RecordFailure(fetchErr)
	cb.RecordFailure(fetchErr)
	cb.RecordSuccess()
	cb.RecordFailure(fetchErr)
	cb.RecordFailure(fetchErr)
	assert.False(t, cb.IsOpen())

	cb.RecordFailure(fetchErr)
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreakerCooldown(t *testing.T) {
	cb, now := newTestBreaker()
	var reasons []string
	cb.RegisterTripCallback(func(event TripEvent) { reasons = append(reasons, event.Reason) })

	cb.Trip("manual")
	cb.Trip("duplicate")
	assert.True(t, cb.IsOpen())
	assert.Equal(t, []string{"manual"}, reasons)

	*now = now.Add(61 * time.Second)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, CircuitHalfOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.GetState())
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker(config.CircuitBreakerConfig{MaxFailureCount: 1}, quietLogger())

	cb.RecordFailure(errors.New("boom"))
	cb.ObserveBankroll(100)
	cb.ObserveBankroll(1)

	assert.False(t, cb.IsOpen())
	assert.Equal(t, "CLOSED", cb.GetState().String())
}
