package models

import (
	"time"

	"github.com/google/uuid"
)

// DecisionInput is everything the engine needs for one contest.
// A nil fighter means the history store has no prior data for that side.
type DecisionInput struct {
	Red      *Fighter    `json:"fighter_red_info"`
	Blue     *Fighter    `json:"fighter_blue_info"`
	RedName  string      `json:"fighter_red"`
	BlueName string      `json:"fighter_blue"`
	Tier     Tier        `json:"tier"`
	Format   MatchFormat `json:"match_format"`
	Bankroll int64       `json:"bankroll"`
}

// Snapshot deep-copies both fighters so the caller may keep appending history
func (in DecisionInput) Snapshot() DecisionInput {
	out := in
	out.Red = in.Red.Clone()
	out.Blue = in.Blue.Clone()
	return out
}

// HasHistory reports whether both sides are known
func (in DecisionInput) HasHistory() bool {
	return in.Red != nil && in.Blue != nil
}

// BetDecision is the terminal output of the probability model for one contest
type BetDecision struct {
	Side       Side     `json:"side"`
	Confidence *float64 `json:"confidence"`
	ModelScore float64  `json:"model_score"`
	Strategy   string   `json:"strategy"`
}

// HasConfidence reports whether the model produced a confidence value
func (d BetDecision) HasConfidence() bool {
	return d.Confidence != nil
}

// Wager is the decision context written once per contest by the caller and
// handed to the execution side
type Wager struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	RedName   string      `db:"fighter_red" json:"fighter_red"`
	BlueName  string      `db:"fighter_blue" json:"fighter_blue"`
	Decision  BetDecision `db:"-" json:"decision"`
	Stake     int64       `db:"wager" json:"stake"`
	Bankroll  int64       `db:"balance" json:"bankroll"`
	Tier      Tier        `db:"tier" json:"tier"`
	Format    MatchFormat `db:"match_format" json:"match_format"`
	Features  FeatureSet  `db:"-" json:"features"`
	Degraded  bool        `db:"degraded" json:"degraded"`
	DecidedAt time.Time   `db:"decided_at" json:"decided_at"`

	// Settlement, filled once the contest result is known
	Outcome   Side       `db:"outcome" json:"outcome,omitempty"`
	PoolRed   int64      `db:"pool_red" json:"pool_red,omitempty"`
	PoolBlue  int64      `db:"pool_blue" json:"pool_blue,omitempty"`
	SettledAt *time.Time `db:"settled_at" json:"settled_at,omitempty"`
}

// IsExhibition reports whether the wager was made on an exhibition match
func (w *Wager) IsExhibition() bool {
	return w.Format == MatchFormatExhibition
}

// IsSettled reports whether the contest result has been attached
func (w *Wager) IsSettled() bool {
	return w.Outcome != ""
}

// Won reports whether the chosen side won
func (w *Wager) Won() bool {
	return w.IsSettled() && w.Outcome == w.Decision.Side
}

// Profit returns the parimutuel return of a settled wager: the stake times
// the opposing pool over the backed pool when it won, minus the stake otherwise
func (w *Wager) Profit() int64 {
	if !w.IsSettled() {
		return 0
	}
	if !w.Won() {
		return -w.Stake
	}
	own, other := w.PoolRed, w.PoolBlue
	if w.Decision.Side == SideBlue {
		own, other = w.PoolBlue, w.PoolRed
	}
	if own <= 0 {
		return 0
	}
	return w.Stake * other / own
}
