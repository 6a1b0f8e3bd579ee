package strategy

import (
	"errors"
	"fmt"

	"github.com/yourusername/sodium-tycoon/internal/config"
)

// ErrUnknownStrategy is returned when the configured strategy name is not registered
var ErrUnknownStrategy = errors.New("unknown strategy")

// CoefficientsFromConfig returns the logistic weights held in the engine section
func CoefficientsFromConfig(cfg *config.EngineConfig) Coefficients {
	return Coefficients{
		Intercept: cfg.Intercept,
		TierElo:   cfg.TierEloWeight,
		H2H:       cfg.H2HWeight,
		Comp:      cfg.CompWeight,
	}
}

// New builds the strategy named in the engine configuration
func New(cfg *config.EngineConfig) (Strategy, error) {
	return NewWithCoefficients(cfg, CoefficientsFromConfig(cfg))
}

// NewWithCoefficients builds the configured strategy with an explicit set of
// logistic weights, used when trained coefficients replace the configured ones
func NewWithCoefficients(cfg *config.EngineConfig, coefficients Coefficients) (Strategy, error) {
	switch cfg.Strategy {
	case LogisticName:
		s := NewLogisticStrategy(coefficients)
		s.MinMatches = cfg.MinMatches
		s.EdgeMultiplier = cfg.EdgeMultiplier
		return s, nil
	case WeightedBlendName:
		s := NewWeightedBlendStrategy()
		s.MinMatches = cfg.MinMatches
		s.RatingWeight = cfg.BlendRatingWeight
		s.H2HWeight = cfg.BlendH2HWeight
		s.ComparativeWeight = cfg.BlendCompWeight
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Strategy)
	}
}
