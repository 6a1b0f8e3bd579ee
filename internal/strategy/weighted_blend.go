package strategy

import (
	"github.com/yourusername/sodium-tycoon/internal/features"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

// WeightedBlendName is the configuration name of the weighted blend strategy
const WeightedBlendName = "weighted_blend"

// WeightedBlendStrategy averages the rating probability with whichever
// head-to-head and common-opponent win rates have enough sample behind them
type WeightedBlendStrategy struct {
	BaseStrategy
	RatingWeight      float64
	H2HWeight         float64
	ComparativeWeight float64
}

// NewWeightedBlendStrategy creates a blend with the reference weights 2/5/3
func NewWeightedBlendStrategy() *WeightedBlendStrategy {
	return &WeightedBlendStrategy{
		BaseStrategy:      BaseStrategy{MinMatches: features.DefaultMinMatches},
		RatingWeight:      2,
		H2HWeight:         5,
		ComparativeWeight: 3,
	}
}

// Name returns strategy name
func (s *WeightedBlendStrategy) Name() string {
	return WeightedBlendName
}

// ComputeProbability blends the available signals into red's win probability
func (s *WeightedBlendStrategy) ComputeProbability(in Inputs) Result {
	ratingProb := RatingProbability(in.Red.Elo, in.Blue.Elo)

	sum := ratingProb * s.RatingWeight
	weights := s.RatingWeight
	if rate, ok := in.Features.H2HWinRate(s.MinMatches); ok {
		sum += rate * s.H2HWeight
		weights += s.H2HWeight
	}
	if rate, ok := in.Features.ComparativeWinRate(s.MinMatches); ok {
		sum += rate * s.ComparativeWeight
		weights += s.ComparativeWeight
	}

	probRed := ratingProb
	if weights > 0 {
		probRed = sum / weights
	}
	probRed = s.NormalizeProbability(probRed)

	side, confidence := s.PickSide(probRed)
	crowd := ratingProb
	if side != models.SideRed {
		crowd = 1 - ratingProb
	}

	return Result{
		Side:             side,
		Probability:      probRed,
		Confidence:       s.NormalizeProbability(s.ApplyCalibration(confidence, side, in)),
		Score:            probRed,
		CrowdProbability: crowd,
		Edge:             confidence - crowd,
	}
}

// GetParameters returns strategy parameters for status output
func (s *WeightedBlendStrategy) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"rating_weight":      s.RatingWeight,
		"h2h_weight":         s.H2HWeight,
		"comparative_weight": s.ComparativeWeight,
		"min_matches":        s.MinMatches,
	}
}
