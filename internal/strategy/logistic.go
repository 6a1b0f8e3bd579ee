package strategy

import (
	"github.com/yourusername/sodium-tycoon/internal/features"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

// LogisticName is the configuration name of the logistic regression strategy
const LogisticName = "logistic"

// DefaultEdgeMultiplier is the reference aggression applied to crowd divergence
const DefaultEdgeMultiplier = 1.5

// Coefficients are the externally fitted logistic regression weights
type Coefficients struct {
	Intercept float64 `json:"intercept"`
	TierElo   float64 `json:"tier_elo"`
	H2H       float64 `json:"h2h"`
	Comp      float64 `json:"comp"`
}

// DefaultCoefficients returns the reference weights used until a trained set is supplied
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Intercept: -0.02,
		TierElo:   0.0055,
		H2H:       1.5,
		Comp:      0.16,
	}
}

// LogisticStrategy scores a contest with fixed logistic coefficients and then
// leans into or away from the pick by how far it diverges from the crowd proxy
type LogisticStrategy struct {
	BaseStrategy
	Coefficients   Coefficients
	EdgeMultiplier float64
}

// NewLogisticStrategy creates a logistic strategy with reference settings
func NewLogisticStrategy(coefficients Coefficients) *LogisticStrategy {
	return &LogisticStrategy{
		BaseStrategy:   BaseStrategy{MinMatches: features.DefaultMinMatches},
		Coefficients:   coefficients,
		EdgeMultiplier: DefaultEdgeMultiplier,
	}
}

// Name returns strategy name
func (s *LogisticStrategy) Name() string {
	return LogisticName
}

// Score returns the linear predictor z for red
func (s *LogisticStrategy) Score(in Inputs) float64 {
	c := s.Coefficients
	z := c.Intercept + c.TierElo*(in.Red.TierElo-in.Blue.TierElo)
	if rate, ok := in.Features.H2HWinRate(s.MinMatches); ok {
		z += c.H2H * (rate - 0.5)
	}
	if rate, ok := in.Features.ComparativeWinRate(s.MinMatches); ok {
		z += c.Comp * (rate - 0.5)
	}
	return z
}

// ComputeProbability applies the sigmoid, the crowd edge and then the
// calibration penalty, in that order
func (s *LogisticStrategy) ComputeProbability(in Inputs) Result {
	z := s.Score(in)
	probRed := s.NormalizeProbability(Sigmoid(z))
	side, modelConfidence := s.PickSide(probRed)

	crowdRed := RatingProbability(in.Red.TierElo, in.Blue.TierElo)
	crowd := crowdRed
	if side == models.SideBlue {
		crowd = 1 - crowdRed
	}
	edge := modelConfidence - crowd

	confidence := modelConfidence * (1 + edge*s.EdgeMultiplier)
	confidence = s.ApplyCalibration(confidence, side, in)

	return Result{
		Side:             side,
		Probability:      probRed,
		Confidence:       s.NormalizeProbability(confidence),
		Score:            z,
		CrowdProbability: crowd,
		Edge:             edge,
	}
}

// GetParameters returns strategy parameters for status output
func (s *LogisticStrategy) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"intercept":       s.Coefficients.Intercept,
		"tier_elo_weight": s.Coefficients.TierElo,
		"h2h_weight":      s.Coefficients.H2H,
		"comp_weight":     s.Coefficients.Comp,
		"edge_multiplier": s.EdgeMultiplier,
		"min_matches":     s.MinMatches,
	}
}
