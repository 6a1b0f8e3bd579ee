package models

import (
	"fmt"
	"math"
)

// FighterStats holds aggregate record statistics
type FighterStats struct {
	TotalMatches int     `json:"total_matches" validate:"gte=0"`
	WinRate      float64 `json:"win_rate" validate:"gte=0,lte=1"`
}

// Fighter is an immutable snapshot of a competitor and its match history
type Fighter struct {
	ID      int64        `db:"id" json:"id" validate:"required,gt=0"`
	Name    string       `db:"name" json:"name"`
	Tier    Tier         `db:"tier" json:"tier"`
	Elo     float64      `db:"elo" json:"elo"`
	TierElo float64      `db:"tier_elo" json:"tier_elo"`
	Stats   FighterStats `db:"-" json:"stats"`
	Matches []*Match     `db:"-" json:"matches"`
}

// NewFighter builds a fighter snapshot and validates it along with its history
func NewFighter(id int64, name string, tier Tier, elo, tierElo float64, stats FighterStats, matches []*Match) (*Fighter, error) {
	f := &Fighter{
		ID:      id,
		Name:    name,
		Tier:    tier,
		Elo:     elo,
		TierElo: tierElo,
		Stats:   stats,
		Matches: matches,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks identity, ratings and every match in the history
func (f *Fighter) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil fighter", ErrInvalidFighter)
	}
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: fighter %d: %v", ErrInvalidFighter, f.ID, err)
	}
	if !isFinite(f.Elo) || !isFinite(f.TierElo) {
		return fmt.Errorf("%w: fighter %d: rating is not finite", ErrInvalidFighter, f.ID)
	}
	for _, m := range f.Matches {
		if err := m.Validate(); err != nil {
			return err
		}
		if !m.Involves(f.ID) {
			return fmt.Errorf("%w: match %d does not involve fighter %d", ErrInvalidMatch, m.ID, f.ID)
		}
	}
	return nil
}

// Clone returns a deep copy so later history appends are not observed
func (f *Fighter) Clone() *Fighter {
	if f == nil {
		return nil
	}
	c := *f
	if f.Matches != nil {
		c.Matches = make([]*Match, len(f.Matches))
		for i, m := range f.Matches {
			mc := *m
			c.Matches[i] = &mc
		}
	}
	return &c
}

// MatchCount returns the number of recorded matches in the snapshot
func (f *Fighter) MatchCount() int {
	if f == nil {
		return 0
	}
	return len(f.Matches)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
