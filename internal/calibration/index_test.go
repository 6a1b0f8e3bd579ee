package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

const fighterID int64 = 7

func pot(red, blue, winner, stakeRed, stakeBlue int64) *models.Match {
	return &models.Match{RedID: red, BlueID: blue, WinnerID: winner, StakeRed: stakeRed, StakeBlue: stakeBlue}
}

func TestIndexPerfectPricing(t *testing.T) {
	matches := []*models.Match{
		pot(fighterID, 2, fighterID, 1000, 0),
		pot(3, fighterID, 3, 500, 0),
		pot(fighterID, 4, 4, 0, 250),
	}

	idx, ok := Index(matches, fighterID)
	require.True(t, ok)
	assert.InDelta(t, 1.0, idx, 1e-12)
}

func TestIndexMaximallyWrong(t *testing.T) {
	matches := []*models.Match{
		pot(fighterID, 2, fighterID, 0, 1000),
		pot(3, fighterID, fighterID, 400, 0),
		pot(fighterID, 4, 4, 900, 0),
	}

	idx, ok := Index(matches, fighterID)
	require.True(t, ok)
	assert.InDelta(t, 0.0, idx, 1e-12)
}

func TestIndexMixed(t *testing.T) {
	matches := []*models.Match{
		pot(fighterID, 2, fighterID, 500, 500), // 0.25
		pot(fighterID, 3, 3, 750, 250),         // 0.5625
	}

	idx, ok := Index(matches, fighterID)
	require.True(t, ok)
	assert.InDelta(t, 1.0-(0.25+0.5625)/2, idx, 1e-12)
}

func TestIndexExcludesEmptyPots(t *testing.T) {
	t.Run("only empty pots", func(t *testing.T) {
		_, ok := Index([]*models.Match{pot(fighterID, 2, fighterID, 0, 0)}, fighterID)
		assert.False(t, ok)
	})

	t.Run("empty pot does not dilute", func(t *testing.T) {
		matches := []*models.Match{
			pot(fighterID, 2, fighterID, 0, 0),
			pot(fighterID, 3, fighterID, 0, 100),
		}
		idx, ok := Index(matches, fighterID)
		require.True(t, ok)
		assert.InDelta(t, 0.0, idx, 1e-12)
	})

	t.Run("no history", func(t *testing.T) {
		_, ok := Index(nil, fighterID)
		assert.False(t, ok)
	})
}

func TestForFighter(t *testing.T) {
	assert.Nil(t, ForFighter(nil))
	assert.Nil(t, ForFighter(&models.Fighter{ID: fighterID}))

	f := &models.Fighter{ID: fighterID, Matches: []*models.Match{pot(fighterID, 2, fighterID, 1, 0)}}
	v := ForFighter(f)
	require.NotNil(t, v)
	assert.InDelta(t, 1.0, *v, 1e-12)
}
