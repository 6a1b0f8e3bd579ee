// Package calibration scores how accurately the betting pot has historically
// priced a fighter.
package calibration

import (
	"github.com/yourusername/sodium-tycoon/internal/models"
)

// Index returns 1 minus the mean Brier score of the pot-implied win
// probability over every match of fighterID that carried a pot.
// It returns false when no match qualifies.
func Index(matches []*models.Match, fighterID int64) (float64, bool) {
	var (
		sumSquared float64
		qualifying int
	)
	for _, m := range matches {
		if m == nil || !m.Involves(fighterID) {
			continue
		}
		total := m.TotalStake()
		if total <= 0 {
			continue
		}
		implied := float64(m.StakeFor(fighterID)) / float64(total)
		outcome := 0.0
		if m.WonBy(fighterID) {
			outcome = 1.0
		}
		diff := implied - outcome
		sumSquared += diff * diff
		qualifying++
	}
	if qualifying == 0 {
		return 0, false
	}

	index := 1.0 - sumSquared/float64(qualifying)
	if index < 0 {
		index = 0
	}
	if index > 1 {
		index = 1
	}
	return index, true
}

// ForFighter computes the index of a fighter snapshot; nil means undefined
func ForFighter(f *models.Fighter) *float64 {
	if f == nil {
		return nil
	}
	v, ok := Index(f.Matches, f.ID)
	if !ok {
		return nil
	}
	return &v
}
