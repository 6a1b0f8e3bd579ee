// Package config provides configuration management for the Sodium Tycoon bot.
package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("strategyname", validateStrategyName)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateStrategyName accepts the registered probability models
func validateStrategyName(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "weighted_blend", "logistic":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	s := cfg.Staking

	if s.MinFraction > s.MaxFraction {
		return fmt.Errorf("staking min_fraction cannot exceed max_fraction")
	}

	if s.MinStake > s.MaxStake {
		return fmt.Errorf("staking min_stake cannot exceed max_stake")
	}

	for tier, limit := range s.TierCaps {
		if limit < 0 {
			return fmt.Errorf("staking tier cap for %q cannot be negative", tier)
		}
		if limit > s.MaxStake {
			return fmt.Errorf("staking tier cap for %q cannot exceed max_stake", tier)
		}
	}

	if cfg.Engine.Strategy == "weighted_blend" &&
		cfg.Engine.BlendRatingWeight+cfg.Engine.BlendH2HWeight+cfg.Engine.BlendCompWeight == 0 {
		return fmt.Errorf("weighted_blend requires at least one positive blend weight")
	}

	if cfg.CircuitBreaker.Enabled {
		if cfg.CircuitBreaker.MaxDrawdownPercent <= 0 {
			return fmt.Errorf("circuit_breaker max_drawdown_percent must be positive when enabled")
		}
		if cfg.CircuitBreaker.MaxFailureCount <= 0 {
			return fmt.Errorf("circuit_breaker max_failure_count must be positive when enabled")
		}
	}

	if cfg.Scheduler.CoefficientRefresh != "" {
		if _, err := cron.ParseStandard(cfg.Scheduler.CoefficientRefresh); err != nil {
			return fmt.Errorf("invalid scheduler coefficient_refresh expression: %w", err)
		}
	}

	if cfg.Features.DatabaseEnabled {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when the database is enabled")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	if (cfg.Features.PersistWagers || cfg.Features.RecordHistory) && !cfg.Features.DatabaseEnabled {
		return fmt.Errorf("persist_wagers and record_history require database_enabled")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "strategyname":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: weighted_blend, logistic\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.Features.DatabaseEnabled && isTestCredential(cfg.Database.Password) {
			return fmt.Errorf("production environment should not use test database credentials")
		}
		if cfg.App.LogLevel == "debug" {
			return fmt.Errorf("debug logging should be disabled in production")
		}
	}

	return nil
}

// isTestCredential checks if a credential looks like a test credential
func isTestCredential(credential string) bool {
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}
