package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug", "production")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger("chatty", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestStrategyLoggerDecision(t *testing.T) {
	log, buf := setupTestLogger()
	strategyLogger := NewStrategyLogger(log)

	strategyLogger.LogStrategyDecision("logistic", "Ryu", "Ken", "red", 0.71, 0.04, 1200, 50000)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "strategy", logEntry["component"])
	assert.Equal(t, "red", logEntry["side"])
	assert.Equal(t, float64(1200), logEntry["stake_amount"])
}

func TestStrategyLoggerFailSafe(t *testing.T) {
	log, buf := setupTestLogger()
	strategyLogger := NewStrategyLogger(log)

	strategyLogger.LogFailSafe("Ryu", "Unknown Fighter", "missing_history", 1)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "fail_safe", logEntry["event_type"])
	assert.Equal(t, "missing_history", logEntry["reason"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestStrategyLoggerFeatureExtraction(t *testing.T) {
	log, buf := setupTestLogger()
	strategyLogger := NewStrategyLogger(log)

	strategyLogger.LogFeatureExtraction("Ryu", "Ken", 5, 0, false)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(5), logEntry["h2h_total"])
	assert.Equal(t, false, logEntry["comparative_available"])
}

func TestStrategyLoggerActivation(t *testing.T) {
	log, buf := setupTestLogger()
	strategyLogger := NewStrategyLogger(log)

	strategyLogger.LogStrategyActivation("weighted_blend", "startup", map[string]interface{}{"h2h_weight": 5.0})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "activation", logEntry["event_type"])
	assert.Equal(t, "weighted_blend", logEntry["strategy_name"])
}

func TestModelLoggerCoefficients(t *testing.T) {
	log, buf := setupTestLogger()
	modelLogger := NewModelLogger(log)

	modelLogger.LogCoefficientsLoaded("database", 7, map[string]float64{"h2h": 1.5})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "model", logEntry["component"])
	assert.Equal(t, float64(7), logEntry["model_id"])
}

func TestModelLoggerError(t *testing.T) {
	log, buf := setupTestLogger()
	modelLogger := NewModelLogger(log)

	modelLogger.LogCoefficientsLoadError("database", errors.New("connection refused"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "connection refused", logEntry["error_reason"])
}

func TestAuditLoggerWagerRecorded(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogWagerRecorded(
		"wager_123",
		"Ryu",
		"Ken",
		"blue",
		"X",
		20000,
		900000,
		false,
		time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC),
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "wager_123", logEntry["wager_id"])
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, false, logEntry["degraded"])
}

func TestAuditLoggerCoefficientChange(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogCoefficientChange("scheduler", 1.5, 1.7)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "scheduler", logEntry["source"])
}

func TestAuditLoggerCircuitBreakerEvent(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogCircuitBreakerEvent(
		"OPENED",
		"max_drawdown_exceeded",
		map[string]interface{}{"drawdown": 0.55},
		"FORCE_MINIMUM_STAKE",
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "OPENED", logEntry["event_type"])
}

func BenchmarkStrategyLoggerDecision(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	strategyLogger := NewStrategyLogger(log)

	for i := 0; i < b.N; i++ {
		strategyLogger.LogStrategyDecision("logistic", "Ryu", "Ken", "red", 0.71, 0.04, 1200, 50000)
	}
}
