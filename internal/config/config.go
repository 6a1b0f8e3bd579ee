// Package config provides configuration management for the Sodium Tycoon bot.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App              AppConfig            `mapstructure:"app" validate:"required"`
	Database         DatabaseConfig       `mapstructure:"database"`
	SaltyBoy         SaltyBoyConfig       `mapstructure:"saltyboy" validate:"required"`
	Engine           EngineConfig         `mapstructure:"engine" validate:"required"`
	Staking          StakingConfig        `mapstructure:"staking" validate:"required"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CalibrationCache CacheConfig          `mapstructure:"calibration_cache"`
	Scheduler        SchedulerConfig      `mapstructure:"scheduler" validate:"required"`
	Metrics          MetricsConfig        `mapstructure:"metrics"`
	Health           HealthConfig         `mapstructure:"health"`
	Features         FeaturesConfig       `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration.
// Only checked when features.database_enabled is set.
type DatabaseConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name              string `mapstructure:"name"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	SSLMode           string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections    int    `mapstructure:"max_connections" validate:"gte=0"`
	MatchHistoryLimit int    `mapstructure:"match_history_limit" validate:"gte=0"`
}

// SaltyBoyConfig represents the current-match API the bot reads from
type SaltyBoyConfig struct {
	APIURL          string  `mapstructure:"api_url" validate:"required,url"`
	BalanceURL      string  `mapstructure:"balance_url" validate:"omitempty,url"`
	SessionCookie   string  `mapstructure:"session_cookie"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts   int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	DefaultBankroll int64   `mapstructure:"default_bankroll" validate:"gte=0"`
}

// EngineConfig holds the probability model selection and its coefficients
type EngineConfig struct {
	Strategy          string  `mapstructure:"strategy" validate:"required,strategyname"`
	Intercept         float64 `mapstructure:"intercept"`
	TierEloWeight     float64 `mapstructure:"tier_elo_weight"`
	H2HWeight         float64 `mapstructure:"h2h_weight"`
	CompWeight        float64 `mapstructure:"comp_weight"`
	MinMatches        int     `mapstructure:"min_matches" validate:"gte=0"`
	EdgeMultiplier    float64 `mapstructure:"edge_multiplier" validate:"gte=0"`
	BlendRatingWeight float64 `mapstructure:"blend_rating_weight" validate:"gte=0"`
	BlendH2HWeight    float64 `mapstructure:"blend_h2h_weight" validate:"gte=0"`
	BlendCompWeight   float64 `mapstructure:"blend_comp_weight" validate:"gte=0"`
}

// StakingConfig bounds the stake produced for a confidence
type StakingConfig struct {
	ConfidenceCeiling    float64          `mapstructure:"confidence_ceiling" validate:"required,gt=0.5,lte=1"`
	MaxFraction          float64          `mapstructure:"max_fraction" validate:"required,gt=0,lte=1"`
	MinFraction          float64          `mapstructure:"min_fraction" validate:"gte=0,lte=1"`
	TaperBankroll        int64            `mapstructure:"taper_bankroll" validate:"required,gt=0"`
	EffectiveBankrollCap int64            `mapstructure:"effective_bankroll_cap" validate:"required,gt=0"`
	MaxStake             int64            `mapstructure:"max_stake" validate:"required,gt=0"`
	MinStake             int64            `mapstructure:"min_stake" validate:"gte=0"`
	TierCaps             map[string]int64 `mapstructure:"tier_caps"`
}

// TierCap returns the stake ceiling of a high-variance tier.
// Tier keys are matched case-insensitively because viper lowercases map keys.
func (s StakingConfig) TierCap(tier string) (int64, bool) {
	for k, v := range s.TierCaps {
		if strings.EqualFold(k, tier) {
			return v, true
		}
	}
	return 0, false
}

// CircuitBreakerConfig represents the stake-halting thresholds
type CircuitBreakerConfig struct {
	Enabled            bool    `mapstructure:"enabled"`
	MaxDrawdownPercent float64 `mapstructure:"max_drawdown_percent" validate:"gte=0,lt=1"`
	MaxFailureCount    int     `mapstructure:"max_failure_count" validate:"gte=0"`
	CooldownSeconds    int     `mapstructure:"cooldown_seconds" validate:"gte=0"`
}

// Cooldown returns the open period as a duration
func (c CircuitBreakerConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// CacheConfig represents the calibration cache configuration
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" validate:"gte=0"`
	MaxSize    int  `mapstructure:"max_size" validate:"gte=0"`
}

// SchedulerConfig represents the polling and refresh schedule
type SchedulerConfig struct {
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`
	DecisionTimeoutSec  int    `mapstructure:"decision_timeout_seconds" validate:"gte=0"`
	CoefficientRefresh  string `mapstructure:"coefficient_refresh"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// HealthConfig represents the health server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	DatabaseEnabled bool `mapstructure:"database_enabled"`
	PersistWagers   bool `mapstructure:"persist_wagers"`
	RecordHistory   bool `mapstructure:"record_history"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// DecisionTimeout returns the bound on one fetch-and-decide cycle
func (c *Config) DecisionTimeout() time.Duration {
	if c.Scheduler.DecisionTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Scheduler.DecisionTimeoutSec) * time.Second
}
