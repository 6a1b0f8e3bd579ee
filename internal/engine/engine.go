// Package engine turns one contest snapshot into a sized wager.
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sodium-tycoon/internal/bot"
	"github.com/yourusername/sodium-tycoon/internal/calibration"
	"github.com/yourusername/sodium-tycoon/internal/features"
	"github.com/yourusername/sodium-tycoon/internal/logger"
	"github.com/yourusername/sodium-tycoon/internal/metrics"
	"github.com/yourusername/sodium-tycoon/internal/models"
	"github.com/yourusername/sodium-tycoon/internal/strategy"
)

// Fail-safe reasons
const (
	ReasonMissingHistory  = "missing_history"
	ReasonDataUnavailable = "data_unavailable"
	ReasonCircuitOpen     = "circuit_open"
)

// CalibrationSource returns a fighter's calibration index, nil when undefined
type CalibrationSource interface {
	Lookup(f *models.Fighter) *float64
}

type directCalibration struct{}

func (directCalibration) Lookup(f *models.Fighter) *float64 {
	return calibration.ForFighter(f)
}

// Engine runs feature extraction, the active strategy and stake sizing.
// It holds no per-contest state and may be shared between goroutines.
type Engine struct {
	strategy    strategy.Strategy
	risk        *bot.RiskManager
	calibration CalibrationSource
	log         *logger.StrategyLogger
	now         func() time.Time
}

// New creates an engine. A nil calibration source computes indices on every call.
func New(s strategy.Strategy, risk *bot.RiskManager, cal CalibrationSource, log *logrus.Logger) *Engine {
	if cal == nil {
		cal = directCalibration{}
	}
	return &Engine{
		strategy:    s,
		risk:        risk,
		calibration: cal,
		log:         logger.NewStrategyLogger(log),
		now:         time.Now,
	}
}

// Strategy returns the active strategy
func (e *Engine) Strategy() strategy.Strategy {
	return e.strategy
}

// WithStrategy returns a copy of the engine serving decisions from s
func (e *Engine) WithStrategy(s strategy.Strategy) *Engine {
	clone := *e
	clone.strategy = s
	return &clone
}

// Decide produces the wager for one contest. Either fighter being unknown
// yields the fail-safe wager: red side, no confidence, minimum stake.
func (e *Engine) Decide(in models.DecisionInput) models.Wager {
	if !in.HasHistory() {
		return e.FailSafe(in, ReasonMissingHistory)
	}

	fs := features.Extract(in.Red, in.Blue)
	red, blue := names(in)
	e.log.LogFeatureExtraction(red, blue, fs.H2HTotal, fs.ComparativeTotal, fs.ComparativeAvailable)

	res := e.strategy.ComputeProbability(strategy.Inputs{
		Features:        fs,
		Red:             strategy.Ratings{Elo: in.Red.Elo, TierElo: in.Red.TierElo},
		Blue:            strategy.Ratings{Elo: in.Blue.Elo, TierElo: in.Blue.TierElo},
		RedCalibration:  e.calibration.Lookup(in.Red),
		BlueCalibration: e.calibration.Lookup(in.Blue),
	})

	decision := res.Decision(e.strategy.Name())
	stake := e.risk.CalculateStake(decision.Confidence, in.Bankroll, in.Tier)

	metrics.RecordStrategyDecision(decision.Strategy, string(decision.Side), res.Confidence, res.Edge)
	e.log.LogStrategyDecision(decision.Strategy, red, blue, string(decision.Side), res.Confidence, res.Edge, stake, in.Bankroll)

	w := e.wager(in, decision, stake)
	w.Features = fs
	return w
}

// FailSafe builds the minimum-information wager
func (e *Engine) FailSafe(in models.DecisionInput, reason string) models.Wager {
	decision := models.BetDecision{
		Side:     models.SideRed,
		Strategy: e.strategy.Name(),
	}
	stake := e.risk.CalculateStake(nil, in.Bankroll, in.Tier)

	red, blue := names(in)
	metrics.RecordFailSafeDecision()
	e.log.LogFailSafe(red, blue, reason, stake)

	w := e.wager(in, decision, stake)
	w.Degraded = true
	return w
}

// ForceMinimumStake keeps the decision but resizes it to the minimum stake
func (e *Engine) ForceMinimumStake(w *models.Wager, reason string) {
	w.Stake = e.risk.CalculateStake(nil, w.Bankroll, w.Tier)
	w.Degraded = true
	e.log.LogFailSafe(w.RedName, w.BlueName, reason, w.Stake)
}

func (e *Engine) wager(in models.DecisionInput, decision models.BetDecision, stake int64) models.Wager {
	red, blue := names(in)
	return models.Wager{
		ID:        uuid.New(),
		RedName:   red,
		BlueName:  blue,
		Decision:  decision,
		Stake:     stake,
		Bankroll:  in.Bankroll,
		Tier:      in.Tier,
		Format:    in.Format,
		DecidedAt: e.now(),
	}
}

func names(in models.DecisionInput) (string, string) {
	red, blue := in.RedName, in.BlueName
	if red == "" && in.Red != nil {
		red = in.Red.Name
	}
	if blue == "" && in.Blue != nil {
		blue = in.Blue.Name
	}
	return red, blue
}
