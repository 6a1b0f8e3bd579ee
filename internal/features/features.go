// Package features derives head-to-head and common-opponent statistics from
// two fighters' match histories.
package features

import (
	"github.com/yourusername/sodium-tycoon/internal/models"
)

// DefaultMinMatches is the smallest sample a derived win rate is trusted on
const DefaultMinMatches = 3

// H2H is the direct record between red and blue, seen from red
type H2H struct {
	RedWins   int   `json:"red_wins"`
	Total     int   `json:"total"`
	RedStake  int64 `json:"red_stake"`
	BlueStake int64 `json:"blue_stake"`
}

// Comparative counts shared opponents by how each fighter fared against them
type Comparative struct {
	RedWon   int `json:"red_compare_won"`
	RedLost  int `json:"red_compare_lost"`
	BlueWon  int `json:"blue_compare_won"`
	BlueLost int `json:"blue_compare_lost"`
}

// HeadToHead scans red's history for direct contests against blue.
// Stake is credited to the fighter it was placed on, whichever corner they stood in.
func HeadToHead(matches []*models.Match, redID, blueID int64) H2H {
	var h H2H
	for _, m := range matches {
		if m == nil || !m.IsBetween(redID, blueID) {
			continue
		}
		h.Total++
		if m.WonBy(redID) {
			h.RedWins++
		}
		h.RedStake += m.StakeFor(redID)
		h.BlueStake += m.StakeFor(blueID)
	}
	return h
}

// ComparativeStats measures transitive strength through shared opposition.
// It returns false when either history is unavailable (nil).
func ComparativeStats(redHistory, blueHistory []*models.Match, redID, blueID int64) (Comparative, bool) {
	if redHistory == nil || blueHistory == nil {
		return Comparative{}, false
	}

	redBeat, redLostTo := partition(redHistory, redID, blueID)
	blueBeat, blueLostTo := partition(blueHistory, blueID, redID)

	opponents := make(map[int64]struct{}, len(redBeat)+len(redLostTo)+len(blueBeat)+len(blueLostTo))
	for _, set := range []map[int64]struct{}{redBeat, redLostTo, blueBeat, blueLostTo} {
		for id := range set {
			opponents[id] = struct{}{}
		}
	}

	var c Comparative
	for id := range opponents {
		if has(redBeat, id) && has(blueLostTo, id) {
			c.RedWon++
		}
		if has(redLostTo, id) && has(blueBeat, id) {
			c.RedLost++
		}
		if has(blueBeat, id) && has(redLostTo, id) {
			c.BlueWon++
		}
		if has(blueLostTo, id) && has(redBeat, id) {
			c.BlueLost++
		}
	}
	return c, true
}

// Extract builds the feature set for a red/blue pairing
func Extract(red, blue *models.Fighter) models.FeatureSet {
	if red == nil || blue == nil {
		return models.FeatureSet{}
	}

	h := HeadToHead(red.Matches, red.ID, blue.ID)
	fs := models.FeatureSet{
		H2HRedWins:   h.RedWins,
		H2HTotal:     h.Total,
		H2HRedStake:  h.RedStake,
		H2HBlueStake: h.BlueStake,
	}

	if c, ok := ComparativeStats(red.Matches, blue.Matches, red.ID, blue.ID); ok {
		fs.ComparativeAvailable = true
		fs.ComparativeRedWon = c.RedWon
		fs.ComparativeRedLost = c.RedLost
		fs.ComparativeTotal = c.RedWon + c.RedLost
	}
	return fs
}

// Reliable reports whether a sample of count is large enough to derive a rate from
func Reliable(count, minMatches int) bool {
	return count > 0 && count >= minMatches
}

// partition splits self's non-direct opponents into those it beat and those it lost to
func partition(history []*models.Match, selfID, excludeID int64) (beat, lostTo map[int64]struct{}) {
	beat = make(map[int64]struct{})
	lostTo = make(map[int64]struct{})
	for _, m := range history {
		if m == nil {
			continue
		}
		opp, ok := m.OpponentOf(selfID)
		if !ok || opp == excludeID {
			continue
		}
		if m.WonBy(selfID) {
			beat[opp] = struct{}{}
		} else {
			lostTo[opp] = struct{}{}
		}
	}
	return beat, lostTo
}

func has(set map[int64]struct{}, id int64) bool {
	_, ok := set[id]
	return ok
}
