// Package logger provides strategy-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// StrategyLogger provides dedicated logging for strategy operations.
type StrategyLogger struct {
	*logrus.Entry
}

// NewStrategyLogger creates a new strategy logger.
func NewStrategyLogger(baseLogger *logrus.Logger) *StrategyLogger {
	return &StrategyLogger{
		Entry: baseLogger.WithField("component", "strategy"),
	}
}

// LogFeatureExtraction logs the sample sizes behind a decision.
func (sl *StrategyLogger) LogFeatureExtraction(red, blue string, h2hTotal, comparativeTotal int, comparativeAvailable bool) {
	sl.WithFields(logrus.Fields{
		"fighter_red":           red,
		"fighter_blue":          blue,
		"h2h_total":             h2hTotal,
		"comparative_total":     comparativeTotal,
		"comparative_available": comparativeAvailable,
	}).Debug("Features extracted")
}

// LogStrategyDecision logs a strategy decision.
func (sl *StrategyLogger) LogStrategyDecision(strategyName, red, blue, side string, confidence, edge float64, stake, bankroll int64) {
	sl.WithFields(logrus.Fields{
		"strategy_name": strategyName,
		"fighter_red":   red,
		"fighter_blue":  blue,
		"side":          side,
		"confidence":    confidence,
		"edge":          edge,
		"stake_amount":  stake,
		"bankroll":      bankroll,
	}).Info("Strategy decision made")
}

// LogFailSafe logs a decision that fell back to the minimum stake.
func (sl *StrategyLogger) LogFailSafe(red, blue, reason string, stake int64) {
	sl.WithFields(logrus.Fields{
		"fighter_red":  red,
		"fighter_blue": blue,
		"reason":       reason,
		"stake_amount": stake,
		"event_type":   "fail_safe",
	}).Warn("Fail-safe decision applied")
}

// LogStrategyActivation logs the strategy that will serve decisions.
func (sl *StrategyLogger) LogStrategyActivation(strategyName, reason string, parameters map[string]interface{}) {
	sl.WithFields(logrus.Fields{
		"strategy_name": strategyName,
		"event_type":    "activation",
		"reason":        reason,
		"parameters":    parameters,
	}).Info("Strategy activated")
}

// LogBankrollDrawdown logs drawdown events.
func (sl *StrategyLogger) LogBankrollDrawdown(drawdownPercent float64, currentBankroll int64) {
	sl.WithFields(logrus.Fields{
		"drawdown_percent": drawdownPercent,
		"current_bankroll": currentBankroll,
	}).Warn("Bankroll drawdown threshold exceeded")
}
