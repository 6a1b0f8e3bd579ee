package backtest

import (
	"fmt"
	"time"
)

// BacktestConfig holds replay settings
type BacktestConfig struct {
	StartDate       time.Time
	EndDate         time.Time
	InitialBankroll int64
	MatchLimit      int
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if !b.StartDate.IsZero() && !b.EndDate.IsZero() && b.StartDate.After(b.EndDate) {
		return fmt.Errorf("start date must be before end date")
	}
	if b.InitialBankroll <= 0 {
		return fmt.Errorf("initial bankroll must be positive")
	}
	if b.MatchLimit < 0 {
		return fmt.Errorf("match limit cannot be negative")
	}
	return nil
}

// InRange reports whether t falls inside the configured window. Zero bounds are open.
func (b BacktestConfig) InRange(t time.Time) bool {
	if !b.StartDate.IsZero() && t.Before(b.StartDate) {
		return false
	}
	if !b.EndDate.IsZero() && t.After(b.EndDate) {
		return false
	}
	return true
}
