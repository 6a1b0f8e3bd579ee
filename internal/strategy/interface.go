package strategy

import (
	"github.com/yourusername/sodium-tycoon/internal/models"
)

// Strategy turns a feature set and ratings into a side and a confidence
type Strategy interface {
	Name() string
	ComputeProbability(in Inputs) Result
	GetParameters() map[string]interface{}
}

// Ratings are a fighter's global and tier-scoped ELO
type Ratings struct {
	Elo     float64 `json:"elo"`
	TierElo float64 `json:"tier_elo"`
}

// Inputs are the per-contest values every strategy consumes.
// A nil calibration index means the fighter has no market history.
type Inputs struct {
	Features        models.FeatureSet
	Red             Ratings
	Blue            Ratings
	RedCalibration  *float64
	BlueCalibration *float64
}

// Result is the strategy's view of one contest
type Result struct {
	Side             models.Side `json:"side"`
	Probability      float64     `json:"probability"`
	Confidence       float64     `json:"confidence"`
	Score            float64     `json:"score"`
	CrowdProbability float64     `json:"crowd_probability"`
	Edge             float64     `json:"edge"`
}

// Decision converts the result into the terminal bet decision
func (r Result) Decision(strategyName string) models.BetDecision {
	c := r.Confidence
	return models.BetDecision{
		Side:       r.Side,
		Confidence: &c,
		ModelScore: r.Score,
		Strategy:   strategyName,
	}
}

// Metadata describes a strategy for logging and status output
type Metadata struct {
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`
}

// Describe returns the metadata of a strategy
func Describe(s Strategy) Metadata {
	return Metadata{Name: s.Name(), Parameters: s.GetParameters()}
}
