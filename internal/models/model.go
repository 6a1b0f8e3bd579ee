package models

import (
	"time"
)

// ModelWeight is one persisted set of logistic coefficients.
// Rows are produced by an external trainer; the newest row wins.
type ModelWeight struct {
	ID        int64     `db:"id" json:"id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Intercept float64   `db:"intercept" json:"intercept"`
	TierElo   float64   `db:"tier_elo" json:"tier_elo"`
	H2H       float64   `db:"h2h" json:"h2h"`
	Comp      float64   `db:"comp" json:"comp"`
}

// IsZero reports whether every coefficient is zero, which the trainer writes when it had no data
func (w *ModelWeight) IsZero() bool {
	return w.Intercept == 0 && w.TierElo == 0 && w.H2H == 0 && w.Comp == 0
}
