package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Side is the corner a fighter occupies in a match
type Side string

const (
	SideRed  Side = "red"
	SideBlue Side = "blue"
)

// Opposite returns the other corner
func (s Side) Opposite() Side {
	if s == SideRed {
		return SideBlue
	}
	return SideRed
}

// Tier is the contest class a match is fought in
type Tier string

const (
	TierPotato  Tier = "P"
	TierB       Tier = "B"
	TierA       Tier = "A"
	TierS       Tier = "S"
	TierX       Tier = "X"
	TierUnknown Tier = "U"
)

// MatchFormat is the event type a match belongs to
type MatchFormat string

const (
	MatchFormatMatchmaking MatchFormat = "matchmaking"
	MatchFormatTournament  MatchFormat = "tournament"
	MatchFormatExhibition  MatchFormat = "exhibition"
)

var validate = validator.New()

// Match is a settled historical contest between two fighters
type Match struct {
	ID        int64       `db:"id" json:"id"`
	RedID     int64       `db:"fighter_red" json:"fighter_red" validate:"required,gt=0"`
	BlueID    int64       `db:"fighter_blue" json:"fighter_blue" validate:"required,gt=0,nefield=RedID"`
	WinnerID  int64       `db:"winner" json:"winner" validate:"required,gt=0"`
	StakeRed  int64       `db:"bet_red" json:"bet_red" validate:"gte=0"`
	StakeBlue int64       `db:"bet_blue" json:"bet_blue" validate:"gte=0"`
	Tier      Tier        `db:"tier" json:"tier"`
	Format    MatchFormat `db:"match_format" json:"match_format"`
	Date      time.Time   `db:"date" json:"date"`
}

// NewMatch builds a match and rejects malformed records
func NewMatch(id, redID, blueID, winnerID, stakeRed, stakeBlue int64, tier Tier, format MatchFormat, date time.Time) (*Match, error) {
	m := &Match{
		ID:        id,
		RedID:     redID,
		BlueID:    blueID,
		WinnerID:  winnerID,
		StakeRed:  stakeRed,
		StakeBlue: stakeBlue,
		Tier:      tier,
		Format:    format,
		Date:      date,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the record is internally consistent
func (m *Match) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil match", ErrInvalidMatch)
	}
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: match %d: %v", ErrInvalidMatch, m.ID, err)
	}
	if m.WinnerID != m.RedID && m.WinnerID != m.BlueID {
		return fmt.Errorf("%w: match %d: winner %d did not fight", ErrInvalidMatch, m.ID, m.WinnerID)
	}
	return nil
}

// Involves reports whether the fighter took part in the match
func (m *Match) Involves(fighterID int64) bool {
	return m.RedID == fighterID || m.BlueID == fighterID
}

// IsBetween reports whether the match was a direct contest between a and b in either corner
func (m *Match) IsBetween(a, b int64) bool {
	return (m.RedID == a && m.BlueID == b) || (m.RedID == b && m.BlueID == a)
}

// OpponentOf returns the other fighter in the match
func (m *Match) OpponentOf(fighterID int64) (int64, bool) {
	switch fighterID {
	case m.RedID:
		return m.BlueID, true
	case m.BlueID:
		return m.RedID, true
	default:
		return 0, false
	}
}

// WonBy reports whether the fighter won the match
func (m *Match) WonBy(fighterID int64) bool {
	return m.WinnerID == fighterID
}

// StakeFor returns the pot placed on the fighter, whichever corner they were in
func (m *Match) StakeFor(fighterID int64) int64 {
	switch fighterID {
	case m.RedID:
		return m.StakeRed
	case m.BlueID:
		return m.StakeBlue
	default:
		return 0
	}
}

// TotalStake returns the combined pot of both corners
func (m *Match) TotalStake() int64 {
	return m.StakeRed + m.StakeBlue
}
