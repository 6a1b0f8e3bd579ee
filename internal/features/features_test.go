package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

const (
	redID  int64 = 1
	blueID int64 = 2
)

var nextMatchID int64

func match(red, blue, winner int64, stakeRed, stakeBlue int64) *models.Match {
	nextMatchID++
	return &models.Match{
		ID:        nextMatchID,
		RedID:     red,
		BlueID:    blue,
		WinnerID:  winner,
		StakeRed:  stakeRed,
		StakeBlue: stakeBlue,
		Tier:      models.TierA,
		Format:    models.MatchFormatMatchmaking,
	}
}

func TestHeadToHead(t *testing.T) {
	tests := []struct {
		name     string
		matches  []*models.Match
		expected H2H
	}{
		{
			name:     "nil history",
			matches:  nil,
			expected: H2H{},
		},
		{
			name: "direct contests in both corner orders",
			matches: []*models.Match{
				match(redID, blueID, redID, 100, 50),
				match(blueID, redID, redID, 30, 70),
				match(blueID, redID, blueID, 200, 10),
			},
			expected: H2H{RedWins: 2, Total: 3, RedStake: 100 + 70 + 10, BlueStake: 50 + 30 + 200},
		},
		{
			name: "matches against other fighters ignored",
			matches: []*models.Match{
				match(redID, 3, redID, 10, 10),
				match(4, redID, 4, 10, 10),
				match(redID, blueID, blueID, 5, 15),
			},
			expected: H2H{RedWins: 0, Total: 1, RedStake: 5, BlueStake: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HeadToHead(tt.matches, redID, blueID))
		})
	}
}

func TestComparativeStatsUnavailable(t *testing.T) {
	_, ok := ComparativeStats(nil, []*models.Match{}, redID, blueID)
	assert.False(t, ok)

	_, ok = ComparativeStats([]*models.Match{}, nil, redID, blueID)
	assert.False(t, ok)

	c, ok := ComparativeStats([]*models.Match{}, []*models.Match{}, redID, blueID)
	assert.True(t, ok)
	assert.Equal(t, Comparative{}, c)
}

func TestComparativeStatsSharedOpponents(t *testing.T) {
	red := []*models.Match{
		match(redID, 10, redID, 0, 0),      // red beat 10
		match(11, redID, 11, 0, 0),         // red lost to 11
		match(redID, 12, redID, 0, 0),      // red beat 12, blue never met 12
		match(redID, blueID, redID, 0, 0),  // direct, excluded
		match(13, redID, redID, 0, 0),      // red beat 13
	}
	blue := []*models.Match{
		match(blueID, 10, 10, 0, 0),       // blue lost to 10
		match(blueID, 11, blueID, 0, 0),   // blue beat 11
		match(13, blueID, 13, 0, 0),       // blue lost to 13
		match(blueID, redID, redID, 0, 0), // direct, excluded
		match(blueID, 14, blueID, 0, 0),   // red never met 14
	}

	c, ok := ComparativeStats(red, blue, redID, blueID)
	require.True(t, ok)
	assert.Equal(t, 2, c.RedWon)
	assert.Equal(t, 1, c.RedLost)
	assert.Equal(t, 1, c.BlueWon)
	assert.Equal(t, 2, c.BlueLost)
}

func TestComparativeStatsSplitRecord(t *testing.T) {
	// Red both beat and lost to 10; blue lost to 10.
	red := []*models.Match{
		match(redID, 10, redID, 0, 0),
		match(redID, 10, 10, 0, 0),
	}
	blue := []*models.Match{
		match(blueID, 10, 10, 0, 0),
	}

	c, ok := ComparativeStats(red, blue, redID, blueID)
	require.True(t, ok)
	assert.Equal(t, 1, c.RedWon)
	assert.Equal(t, 0, c.RedLost)
}

func TestExtract(t *testing.T) {
	t.Run("missing fighter yields zero features", func(t *testing.T) {
		assert.Equal(t, models.FeatureSet{}, Extract(nil, &models.Fighter{ID: blueID}))
	})

	t.Run("fighters without matches", func(t *testing.T) {
		fs := Extract(&models.Fighter{ID: redID, Matches: []*models.Match{}}, &models.Fighter{ID: blueID, Matches: []*models.Match{}})
		assert.Zero(t, fs.H2HTotal)
		assert.Zero(t, fs.ComparativeTotal)
		_, ok := fs.H2HWinRate(DefaultMinMatches)
		assert.False(t, ok)
		_, ok = fs.ComparativeWinRate(DefaultMinMatches)
		assert.False(t, ok)
	})

	t.Run("four of five head to head", func(t *testing.T) {
		var history []*models.Match
		for i := 0; i < 4; i++ {
			history = append(history, match(redID, blueID, redID, 10, 10))
		}
		history = append(history, match(blueID, redID, blueID, 10, 10))

		fs := Extract(&models.Fighter{ID: redID, Matches: history}, &models.Fighter{ID: blueID, Matches: history})
		assert.Equal(t, 4, fs.H2HRedWins)
		assert.Equal(t, 5, fs.H2HTotal)
		rate, ok := fs.H2HWinRate(DefaultMinMatches)
		require.True(t, ok)
		assert.InDelta(t, 0.8, rate, 1e-9)
		assert.True(t, fs.ComparativeAvailable)
		assert.Zero(t, fs.ComparativeTotal)
	})
}

func TestReliable(t *testing.T) {
	assert.False(t, Reliable(0, 0))
	assert.False(t, Reliable(2, 3))
	assert.True(t, Reliable(3, 3))
	assert.True(t, Reliable(1, 0))
}
