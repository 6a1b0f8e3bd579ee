// Package logger provides model-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ModelLogger provides dedicated logging for coefficient and calibration upkeep.
type ModelLogger struct {
	*logrus.Entry
}

// NewModelLogger creates a new model logger.
func NewModelLogger(baseLogger *logrus.Logger) *ModelLogger {
	return &ModelLogger{
		Entry: baseLogger.WithField("component", "model"),
	}
}

// LogCoefficientsLoaded logs a coefficient set taking effect.
func (ml *ModelLogger) LogCoefficientsLoaded(source string, modelID int64, coefficients map[string]float64) {
	ml.WithFields(logrus.Fields{
		"source":       source,
		"model_id":     modelID,
		"coefficients": coefficients,
	}).Info("Model coefficients loaded")
}

// LogCoefficientsLoadError logs a failed coefficient refresh.
func (ml *ModelLogger) LogCoefficientsLoadError(source string, err error) {
	ml.WithFields(logrus.Fields{
		"source":       source,
		"error_reason": err.Error(),
	}).Error("Model coefficient refresh failed")
}

// LogCalibrationCacheStats logs calibration cache effectiveness.
func (ml *ModelLogger) LogCalibrationCacheStats(hits, misses int64, items int) {
	ml.WithFields(logrus.Fields{
		"cache_hits":   hits,
		"cache_misses": misses,
		"cache_items":  items,
	}).Debug("Calibration cache stats")
}
