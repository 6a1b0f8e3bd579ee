// Package config provides configuration management for the Sodium Tycoon bot.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SODIUM_TYCOON"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with the reference values for every
// engine and staking option; a missing file is not an error
func LoadWithDefaults(configPath string) (*Config, error) {
	v := newViper()
	SetDefaults(v)

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// SetDefaults registers the reference value of every recognised option
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sodium-tycoon")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.match_history_limit", 100)

	v.SetDefault("saltyboy.api_url", "https://www.salty-boy.com")
	v.SetDefault("saltyboy.timeout_seconds", 5)
	v.SetDefault("saltyboy.retry_attempts", 3)
	v.SetDefault("saltyboy.rate_limit", 1.0)
	v.SetDefault("saltyboy.default_bankroll", 1000)

	v.SetDefault("engine.strategy", "logistic")
	v.SetDefault("engine.intercept", -0.02)
	v.SetDefault("engine.tier_elo_weight", 0.0055)
	v.SetDefault("engine.h2h_weight", 1.5)
	v.SetDefault("engine.comp_weight", 0.16)
	v.SetDefault("engine.min_matches", 3)
	v.SetDefault("engine.edge_multiplier", 1.5)
	v.SetDefault("engine.blend_rating_weight", 2.0)
	v.SetDefault("engine.blend_h2h_weight", 5.0)
	v.SetDefault("engine.blend_comp_weight", 3.0)

	v.SetDefault("staking.confidence_ceiling", 0.85)
	v.SetDefault("staking.max_fraction", 0.05)
	v.SetDefault("staking.min_fraction", 0.01)
	v.SetDefault("staking.taper_bankroll", 1000000)
	v.SetDefault("staking.effective_bankroll_cap", 5000000)
	v.SetDefault("staking.max_stake", 300000)
	v.SetDefault("staking.min_stake", 1)
	v.SetDefault("staking.tier_caps", map[string]int64{"X": 20000, "P": 1})

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_drawdown_percent", 0.5)
	v.SetDefault("circuit_breaker.max_failure_count", 5)
	v.SetDefault("circuit_breaker.cooldown_seconds", 600)

	v.SetDefault("calibration_cache.enabled", true)
	v.SetDefault("calibration_cache.ttl_seconds", 3600)
	v.SetDefault("calibration_cache.max_size", 10000)

	v.SetDefault("scheduler.poll_interval_seconds", 5)
	v.SetDefault("scheduler.decision_timeout_seconds", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("health.port", "8080")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}
