package backtest

import (
	"time"

	"github.com/yourusername/sodium-tycoon/internal/models"
)

// BacktestState tracks current backtest state
type BacktestState struct {
	CurrentBankroll int64
	PeakBankroll    int64
	Wagers          []*models.Wager
	EquityCurve     EquityCurve
	DailyPnL        map[time.Time]int64
	Skipped         int
	Busted          bool
}

// NewBacktestState initializes backtest state
func NewBacktestState(initialBankroll int64, start time.Time) *BacktestState {
	state := &BacktestState{
		CurrentBankroll: initialBankroll,
		PeakBankroll:    initialBankroll,
		Wagers:          []*models.Wager{},
		EquityCurve:     EquityCurve{},
		DailyPnL:        make(map[time.Time]int64),
	}
	state.RecordEquityPoint(start, initialBankroll)
	return state
}

// UpdateState applies a settled wager to the bankroll
func (s *BacktestState) UpdateState(w *models.Wager, pnl int64) {
	s.CurrentBankroll += pnl
	if s.CurrentBankroll > s.PeakBankroll {
		s.PeakBankroll = s.CurrentBankroll
	}
	s.Wagers = append(s.Wagers, w)

	if w.SettledAt != nil {
		at := w.SettledAt.UTC()
		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
		s.DailyPnL[day] += pnl
	}
}

// GetCurrentDrawdown calculates peak-to-trough drawdown
func (s *BacktestState) GetCurrentDrawdown() float64 {
	if s.PeakBankroll <= 0 {
		return 0
	}
	drawdown := float64(s.PeakBankroll-s.CurrentBankroll) / float64(s.PeakBankroll)
	if drawdown < 0 {
		return 0
	}
	return drawdown
}

// RecordEquityPoint adds an equity point to the curve
func (s *BacktestState) RecordEquityPoint(t time.Time, value int64) {
	drawdown := 0.0
	if value < s.PeakBankroll && s.PeakBankroll > 0 {
		drawdown = float64(s.PeakBankroll-value) / float64(s.PeakBankroll)
	}
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Time:     t,
		Value:    value,
		Drawdown: drawdown,
	})
}
