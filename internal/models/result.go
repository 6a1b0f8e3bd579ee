package models

import (
	"fmt"
	"time"
)

// MatchResult is a finished contest reported by the caller, keyed by fighter name
type MatchResult struct {
	RedName  string      `json:"fighter_red" validate:"required"`
	BlueName string      `json:"fighter_blue" validate:"required,nefield=RedName"`
	Winner   Side        `json:"winner" validate:"required,oneof=red blue"`
	PoolRed  int64       `json:"pool_red" validate:"gte=0"`
	PoolBlue int64       `json:"pool_blue" validate:"gte=0"`
	Tier     Tier        `json:"tier"`
	Format   MatchFormat `json:"match_format"`
	Date     time.Time   `json:"date"`
}

// Validate checks the result names two distinct fighters and a winning side
func (r *MatchResult) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: result %s vs %s: %v", ErrInvalidMatch, r.RedName, r.BlueName, err)
	}
	return nil
}

// IsExhibition reports whether the result came from an exhibition match
func (r *MatchResult) IsExhibition() bool {
	return r.Format == MatchFormatExhibition
}

// WinnerName returns the name of the winning fighter
func (r *MatchResult) WinnerName() string {
	if r.Winner == SideBlue {
		return r.BlueName
	}
	return r.RedName
}
