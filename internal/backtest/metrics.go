package backtest

import (
	"encoding/json"
	"math"
	"time"

	"github.com/yourusername/sodium-tycoon/internal/models"
)

// Metrics represents replay performance metrics
type Metrics struct {
	Strategy       string    `json:"strategy"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	InitialBalance int64     `json:"initial_balance"`
	FinalBalance   int64     `json:"final_balance"`
	TotalReturn    float64   `json:"total_return"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	TotalBets      int       `json:"total_bets"`
	WinningBets    int       `json:"winning_bets"`
	LosingBets     int       `json:"losing_bets"`
	WinRate        float64   `json:"win_rate"`
	ROI            float64   `json:"roi"`
	ProfitFactor   float64   `json:"profit_factor"`
	LargestWin     int64     `json:"largest_win"`
	LargestLoss    int64     `json:"largest_loss"`
	Predicted      int       `json:"predicted"`
	Accuracy       float64   `json:"accuracy"`
	FailSafes      int       `json:"fail_safes"`
	Skipped        int       `json:"skipped"`
	Busted         bool      `json:"busted"`
}

// CalculateMetrics calculates metrics from backtest state
func CalculateMetrics(state *BacktestState, strategyName string) Metrics {
	metrics := Metrics{Strategy: strategyName}
	if state == nil || len(state.EquityCurve) == 0 {
		return metrics
	}

	first := state.EquityCurve[0]
	last := state.EquityCurve[len(state.EquityCurve)-1]
	metrics.StartDate = first.Time
	metrics.EndDate = last.Time
	metrics.InitialBalance = first.Value
	metrics.FinalBalance = state.CurrentBankroll
	if first.Value > 0 {
		metrics.TotalReturn = float64(state.CurrentBankroll-first.Value) / float64(first.Value)
	}
	metrics.MaxDrawdown = state.EquityCurve.MaxDrawdown()
	metrics.SharpeRatio = calculateSharpeRatio(state.EquityCurve.GetReturns())

	perf := models.Summarize(state.Wagers)
	metrics.TotalBets = perf.Settled
	metrics.WinningBets = perf.Wins
	metrics.LosingBets = perf.Settled - perf.Wins
	metrics.WinRate = perf.WinRate
	metrics.ROI = perf.ROI
	metrics.ProfitFactor = calculateProfitFactor(state.Wagers)
	metrics.LargestWin, metrics.LargestLoss = extremes(state.Wagers)
	metrics.Predicted, metrics.Accuracy, metrics.FailSafes = calculateAccuracy(state.Wagers)
	metrics.Skipped = state.Skipped
	metrics.Busted = state.Busted

	return metrics
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.MarshalIndent(m, "", "  ")
	return string(data)
}

// Per-wager ratio, not annualised: contests are not evenly spaced in time.
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std * math.Sqrt(float64(len(returns)))
}

func calculateProfitFactor(wagers []*models.Wager) float64 {
	var grossProfit, grossLoss int64
	for _, w := range wagers {
		pnl := w.Profit()
		if pnl > 0 {
			grossProfit += pnl
		} else {
			grossLoss -= pnl
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return 999
		}
		return 0
	}
	return float64(grossProfit) / float64(grossLoss)
}

func extremes(wagers []*models.Wager) (int64, int64) {
	var largestWin, largestLoss int64
	for _, w := range wagers {
		pnl := w.Profit()
		if pnl > largestWin {
			largestWin = pnl
		}
		if pnl < largestLoss {
			largestLoss = pnl
		}
	}
	return largestWin, largestLoss
}

// Accuracy counts only wagers where the model produced a pick.
func calculateAccuracy(wagers []*models.Wager) (int, float64, int) {
	predicted, correct, failSafes := 0, 0, 0
	for _, w := range wagers {
		if w.Degraded || !w.Decision.HasConfidence() {
			failSafes++
			continue
		}
		predicted++
		if w.Won() {
			correct++
		}
	}
	if predicted == 0 {
		return 0, 0, failSafes
	}
	return predicted, float64(correct) / float64(predicted), failSafes
}
