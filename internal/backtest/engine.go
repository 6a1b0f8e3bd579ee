// Package backtest replays recorded contest results through the decision
// engine and reports how the staking policy would have performed.
package backtest

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sodium-tycoon/internal/engine"
	"github.com/yourusername/sodium-tycoon/internal/models"
	"github.com/yourusername/sodium-tycoon/internal/repository"
)

// Engine orchestrates backtesting runs
type Engine struct {
	config  BacktestConfig
	decider *engine.Engine
	logger  *logrus.Logger
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg BacktestConfig, decider *engine.Engine, logger *logrus.Logger) (*Engine, error) {
	if decider == nil {
		return nil, fmt.Errorf("decision engine is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MatchLimit == 0 {
		cfg.MatchLimit = repository.DefaultMatchLimit
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		config:  cfg,
		decider: decider,
		logger:  logger,
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() BacktestConfig {
	return e.config
}

// Run replays the results and calculates metrics over the outcome
func (e *Engine) Run(ctx context.Context, results []models.MatchResult) (*BacktestState, Metrics, error) {
	e.logger.WithFields(logrus.Fields{
		"results":  len(results),
		"start":    e.config.StartDate,
		"end":      e.config.EndDate,
		"bankroll": e.config.InitialBankroll,
	}).Info("Starting backtest run")

	state, err := e.HistoricalReplay(ctx, results)
	if err != nil {
		return nil, Metrics{}, err
	}
	metrics := CalculateMetrics(state, e.decider.Strategy().Name())

	e.logger.WithFields(logrus.Fields{
		"bets":          metrics.TotalBets,
		"final_balance": metrics.FinalBalance,
		"accuracy":      metrics.Accuracy,
		"roi":           metrics.ROI,
	}).Info("Backtest run complete")
	return state, metrics, nil
}

// HistoricalReplay walks the results in date order. Before each contest the
// engine sees only what was known at the time; the result is then settled
// against the recorded pools and folded into the fighters' history.
func (e *Engine) HistoricalReplay(ctx context.Context, results []models.MatchResult) (*BacktestState, error) {
	ordered := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if e.config.InRange(r.Date) {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	start := e.config.StartDate
	if len(ordered) > 0 {
		start = ordered[0].Date
	}
	state := NewBacktestState(e.config.InitialBankroll, start)
	book := newRoster(e.config.MatchLimit)

	for i := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if state.CurrentBankroll <= 0 {
			state.Busted = true
			e.logger.WithField("contest", i).Warn("Bankroll exhausted, stopping replay")
			break
		}

		result := ordered[i]
		if err := result.Validate(); err != nil {
			state.Skipped++
			e.logger.WithError(err).Warn("Skipping invalid result")
			continue
		}

		w := e.decide(result, book, state.CurrentBankroll)
		state.UpdateState(w, w.Profit())
		state.RecordEquityPoint(result.Date, state.CurrentBankroll)

		if !result.IsExhibition() {
			book.record(result)
		}
	}

	return state, nil
}

func (e *Engine) decide(result models.MatchResult, book *roster, bankroll int64) *models.Wager {
	in := models.DecisionInput{
		Red:      book.lookup(result.RedName),
		Blue:     book.lookup(result.BlueName),
		RedName:  result.RedName,
		BlueName: result.BlueName,
		Tier:     result.Tier,
		Format:   result.Format,
		Bankroll: bankroll,
	}

	w := e.decider.Decide(in.Snapshot())
	settledAt := result.Date
	w.DecidedAt = result.Date
	w.Outcome = result.Winner
	w.PoolRed = result.PoolRed
	w.PoolBlue = result.PoolBlue
	w.SettledAt = &settledAt
	return &w
}

// roster is the in-memory history built up as the replay advances
type roster struct {
	limit    int
	byName   map[string]*models.Fighter
	nextID   int64
	nextBout int64
}

func newRoster(limit int) *roster {
	return &roster{limit: limit, byName: make(map[string]*models.Fighter)}
}

func (r *roster) lookup(name string) *models.Fighter {
	return r.byName[name]
}

func (r *roster) getOrCreate(name string, tier models.Tier) *models.Fighter {
	if f, ok := r.byName[name]; ok {
		return f
	}
	r.nextID++
	f := &models.Fighter{ID: r.nextID, Name: name, Tier: tier, Elo: 1500, TierElo: 1500}
	r.byName[name] = f
	return f
}

func (r *roster) record(result models.MatchResult) {
	red := r.getOrCreate(result.RedName, result.Tier)
	blue := r.getOrCreate(result.BlueName, result.Tier)

	winnerID := red.ID
	if result.Winner == models.SideBlue {
		winnerID = blue.ID
	}
	r.nextBout++
	match := &models.Match{
		ID:        r.nextBout,
		RedID:     red.ID,
		BlueID:    blue.ID,
		WinnerID:  winnerID,
		StakeRed:  result.PoolRed,
		StakeBlue: result.PoolBlue,
		Tier:      result.Tier,
		Format:    result.Format,
		Date:      result.Date,
	}

	redWon := result.Winner == models.SideRed
	updatedRed := repository.Rated(red, blue, result.Tier, redWon)
	updatedBlue := repository.Rated(blue, red, result.Tier, !redWon)
	r.apply(red, updatedRed, match)
	r.apply(blue, updatedBlue, match)
}

func (r *roster) apply(f, updated *models.Fighter, match *models.Match) {
	f.Tier = updated.Tier
	f.Elo = updated.Elo
	f.TierElo = updated.TierElo
	f.Matches = append(f.Matches, match)
	if len(f.Matches) > r.limit {
		f.Matches = f.Matches[len(f.Matches)-r.limit:]
	}
	f.Stats = repository.StatsFor(f.ID, f.Matches)
}
