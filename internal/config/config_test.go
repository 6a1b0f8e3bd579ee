package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	blendConfigPath       = "testdata/blend_config.yaml"
	invalidConfigPath     = "testdata/invalid_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
	testDBPassword        = "TEST_DB_PASSWORD"
)

func TestLoadConfigSuccess(t *testing.T) {
	t.Setenv(testDBPassword, "expanded_secret_value")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "sodium-tycoon", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "expanded_secret_value", cfg.Database.Password)
	assert.Equal(t, "logistic", cfg.Engine.Strategy)
	assert.InDelta(t, 0.0055, cfg.Engine.TierEloWeight, 1e-12)
	assert.Equal(t, int64(300000), cfg.Staking.MaxStake)
	assert.Equal(t, int64(2500), cfg.SaltyBoy.DefaultBankroll)

	require.NoError(t, Validate(cfg))
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "logistic", cfg.Engine.Strategy)
	assert.InDelta(t, -0.02, cfg.Engine.Intercept, 1e-12)
	assert.InDelta(t, 1.5, cfg.Engine.H2HWeight, 1e-12)
	assert.InDelta(t, 0.16, cfg.Engine.CompWeight, 1e-12)
	assert.Equal(t, 3, cfg.Engine.MinMatches)
	assert.InDelta(t, 0.85, cfg.Staking.ConfidenceCeiling, 1e-12)
	assert.Equal(t, int64(5000000), cfg.Staking.EffectiveBankrollCap)
	assert.Equal(t, int64(1), cfg.Staking.MinStake)

	xCap, ok := cfg.Staking.TierCap("X")
	require.True(t, ok)
	assert.Equal(t, int64(20000), xCap)

	require.NoError(t, Validate(cfg))
}

func TestLoadWithDefaultsOverlaysFile(t *testing.T) {
	cfg, err := LoadWithDefaults(blendConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "weighted_blend", cfg.Engine.Strategy)
	assert.InDelta(t, 4.0, cfg.Engine.BlendH2HWeight, 1e-12)
	assert.InDelta(t, 0.0, cfg.Engine.BlendCompWeight, 1e-12)
	assert.InDelta(t, 0.05, cfg.Staking.MaxFraction, 1e-12)

	xCap, ok := cfg.Staking.TierCap("x")
	require.True(t, ok)
	assert.Equal(t, int64(15000), xCap)

	require.NoError(t, Validate(cfg))
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SODIUM_TYCOON_ENGINE_STRATEGY", "weighted_blend")

	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "weighted_blend", cfg.Engine.Strategy)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cfg, err := LoadWithDefaults(invalidConfigPath)
	require.NoError(t, err)

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Environment")
	assert.Contains(t, err.Error(), "LogLevel")
	assert.Contains(t, err.Error(), "weighted_blend, logistic")
}

func TestValidateCrossField(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "min fraction above max",
			mutate:  func(c *Config) { c.Staking.MinFraction = 0.2 },
			wantErr: "min_fraction",
		},
		{
			name:    "min stake above max",
			mutate:  func(c *Config) { c.Staking.MinStake = c.Staking.MaxStake + 1 },
			wantErr: "min_stake",
		},
		{
			name:    "tier cap above whale cap",
			mutate:  func(c *Config) { c.Staking.TierCaps = map[string]int64{"X": 400000} },
			wantErr: "tier cap",
		},
		{
			name: "blend without weights",
			mutate: func(c *Config) {
				c.Engine.Strategy = "weighted_blend"
				c.Engine.BlendRatingWeight = 0
				c.Engine.BlendH2HWeight = 0
				c.Engine.BlendCompWeight = 0
			},
			wantErr: "blend weight",
		},
		{
			name:    "bad refresh cron",
			mutate:  func(c *Config) { c.Scheduler.CoefficientRefresh = "every tuesday" },
			wantErr: "coefficient_refresh",
		},
		{
			name:    "wager persistence without database",
			mutate:  func(c *Config) { c.Features.PersistWagers = true },
			wantErr: "database_enabled",
		},
		{
			name: "database without host",
			mutate: func(c *Config) {
				c.Features.DatabaseEnabled = true
			},
			wantErr: "database host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithDefaults(nonexistentConfigPath)
			require.NoError(t, err)
			tt.mutate(cfg)

			err = Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateEnvironment(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)

	cfg.App.Environment = "production"
	cfg.App.LogLevel = "debug"
	assert.Error(t, ValidateEnvironment(cfg))

	cfg.App.LogLevel = "info"
	cfg.Features.DatabaseEnabled = true
	cfg.Database.Password = "placeholder"
	assert.Error(t, ValidateEnvironment(cfg))

	cfg.Database.Password = "s3cure-random"
	assert.NoError(t, ValidateEnvironment(cfg))
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5432, Name: "saltybet", User: "tycoon", Password: "pw", SSLMode: "disable",
	}}
	assert.Equal(t, "postgres://tycoon:pw@db:5432/saltybet?sslmode=disable", cfg.GetDatabaseDSN())
}

func TestOverlaySecrets(t *testing.T) {
	cfg := &Config{}
	overlaySecretsOnConfig(cfg, &SecretsOverlay{DatabasePassword: "from-aws"})

	assert.Equal(t, "from-aws", cfg.Database.Password)
	assert.Empty(t, cfg.SaltyBoy.SessionCookie)
}
