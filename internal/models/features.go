package models

// FeatureSet is the per-decision statistics derived from both fighters' histories.
// It is never stored; the same histories always produce the same set.
type FeatureSet struct {
	H2HRedWins   int   `json:"h2h_red_wins"`
	H2HTotal     int   `json:"h2h_total"`
	H2HRedStake  int64 `json:"h2h_red_stake"`
	H2HBlueStake int64 `json:"h2h_blue_stake"`

	ComparativeRedWon    int  `json:"comparative_red_won"`
	ComparativeRedLost   int  `json:"comparative_red_lost"`
	ComparativeTotal     int  `json:"comparative_total"`
	ComparativeAvailable bool `json:"comparative_available"`
}

// H2HWinRate returns red's head-to-head win rate when the sample reaches minSample
func (fs FeatureSet) H2HWinRate(minSample int) (float64, bool) {
	if !reliable(fs.H2HTotal, minSample) {
		return 0.5, false
	}
	return float64(fs.H2HRedWins) / float64(fs.H2HTotal), true
}

// ComparativeWinRate returns red's common-opponent win rate when the sample reaches minSample
func (fs FeatureSet) ComparativeWinRate(minSample int) (float64, bool) {
	if !fs.ComparativeAvailable || !reliable(fs.ComparativeTotal, minSample) {
		return 0.5, false
	}
	return float64(fs.ComparativeRedWon) / float64(fs.ComparativeTotal), true
}

// reliable guards every ratio: a zero count is never trusted whatever the threshold
func reliable(count, minSample int) bool {
	return count > 0 && count >= minSample
}
