// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogWagerRecorded logs a wager handed to execution.
func (al *AuditLogger) LogWagerRecorded(wagerID, red, blue, side, tier string, stake, bankroll int64, degraded bool, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"wager_id":     wagerID,
		"fighter_red":  red,
		"fighter_blue": blue,
		"side":         side,
		"tier":         tier,
		"stake":        stake,
		"bankroll":     bankroll,
		"degraded":     degraded,
		"timestamp":    timestamp.Unix(),
	}).Info("Wager recorded")
}

// LogCoefficientChange logs a replacement of the model coefficients.
func (al *AuditLogger) LogCoefficientChange(source string, oldValue, newValue interface{}) {
	al.WithFields(logrus.Fields{
		"source":    source,
		"old_value": oldValue,
		"new_value": newValue,
	}).Info("Model coefficients changed")
}

// LogCircuitBreakerEvent logs circuit breaker events.
func (al *AuditLogger) LogCircuitBreakerEvent(eventType, reason string, metricsSnapshot map[string]interface{}, actionTaken string) {
	al.WithFields(logrus.Fields{
		"event_type":       eventType,
		"reason":           reason,
		"metrics_snapshot": metricsSnapshot,
		"action_taken":     actionTaken,
	}).Warn("Circuit breaker event recorded")
}
