package strategy

import (
	"math"

	"github.com/yourusername/sodium-tycoon/internal/models"
)

// eloScale is the rating gap at which the stronger fighter is a 10:1 favourite
const eloScale = 400.0

// BaseStrategy provides shared functionality for strategies
type BaseStrategy struct {
	MinMatches int
}

// RatingProbability returns red's win probability from ratings alone
func RatingProbability(redRating, blueRating float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (blueRating-redRating)/eloScale))
}

// Sigmoid maps a linear score to (0,1) without overflowing on large |z|
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

// NormalizeProbability ensures probability in [0,1]
func (b *BaseStrategy) NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// PickSide returns the favoured side and the probability it wins
func (b *BaseStrategy) PickSide(probRed float64) (models.Side, float64) {
	if probRed > 0.5 {
		return models.SideRed, probRed
	}
	return models.SideBlue, 1.0 - probRed
}

// ApplyCalibration scales confidence by the chosen side's calibration index.
// A missing index leaves confidence untouched.
func (b *BaseStrategy) ApplyCalibration(confidence float64, side models.Side, in Inputs) float64 {
	idx := in.RedCalibration
	if side == models.SideBlue {
		idx = in.BlueCalibration
	}
	if idx == nil {
		return confidence
	}
	return confidence * b.NormalizeProbability(*idx)
}

// ratingK is the largest rating change a single result can cause
const ratingK = 32.0

// UpdateRating returns the rating after one result against an opponent.
// Ratings are kept whole, so the change truncates toward zero.
func UpdateRating(rating, opponent float64, won bool) float64 {
	score := 0.0
	if won {
		score = 1.0
	}
	return math.Trunc(rating + ratingK*(score-RatingProbability(rating, opponent)))
}
