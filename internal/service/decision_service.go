// Package service runs the decision loop: fetch the open contest, decide,
// record, and fold finished results back into history.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sodium-tycoon/internal/bot"
	"github.com/yourusername/sodium-tycoon/internal/calibration"
	"github.com/yourusername/sodium-tycoon/internal/config"
	"github.com/yourusername/sodium-tycoon/internal/datasource"
	"github.com/yourusername/sodium-tycoon/internal/engine"
	"github.com/yourusername/sodium-tycoon/internal/logger"
	"github.com/yourusername/sodium-tycoon/internal/metrics"
	"github.com/yourusername/sodium-tycoon/internal/models"
	"github.com/yourusername/sodium-tycoon/internal/strategy"
)

const (
	coefficientSource = "model_weight"

	// unknownContest keys the fail-safe wager made while the source is down
	unknownContest = "\x00"

	// maxTrackedContests bounds the contest to fighter ID index
	maxTrackedContests = 64
)

var (
	// ErrNoOpenMatch means the source has nothing to bet on
	ErrNoOpenMatch = errors.New("no open match")
	// ErrAlreadyDecided means the open contest already has a wager
	ErrAlreadyDecided = errors.New("contest already decided")
)

// HistorySource fills in fighter history and records finished contests
type HistorySource interface {
	Enrich(ctx context.Context, in *models.DecisionInput) error
	RecordResult(ctx context.Context, result models.MatchResult) (*models.Match, error)
}

// CoefficientSource supplies the newest trained coefficients
type CoefficientSource interface {
	GetLatest(ctx context.Context) (*models.ModelWeight, error)
}

// Options are the optional collaborators of a DecisionService
type Options struct {
	History      HistorySource
	Coefficients CoefficientSource
	Cache        *calibration.Cache
	Breaker      *bot.CircuitBreaker
	Recorder     *DecisionRecorder
}

// DecisionService produces one wager per open contest
type DecisionService struct {
	source       datasource.MatchSource
	engine       atomic.Pointer[engine.Engine]
	engineCfg    *config.EngineConfig
	timeout      time.Duration
	history      HistorySource
	coefficients CoefficientSource
	cache        *calibration.Cache
	breaker      *bot.CircuitBreaker
	recorder     *DecisionRecorder
	stats        *DecisionStats
	audit        *logger.AuditLogger
	modelLog     *logger.ModelLogger
	logger       *logrus.Logger

	mu           sync.Mutex
	lastContest  string
	lastBankroll int64
	lastWeightID int64
	current      strategy.Coefficients
	// fighters maps a contest key to the IDs of its two fighters
	fighters map[string][2]int64
}

// NewDecisionService creates a decision service around an engine
func NewDecisionService(
	source datasource.MatchSource,
	eng *engine.Engine,
	cfg *config.Config,
	opts Options,
	log *logrus.Logger,
) *DecisionService {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = NewDecisionRecorder(nil, log)
	}

	s := &DecisionService{
		source:       source,
		engineCfg:    &cfg.Engine,
		timeout:      cfg.DecisionTimeout(),
		history:      opts.History,
		coefficients: opts.Coefficients,
		cache:        opts.Cache,
		breaker:      opts.Breaker,
		recorder:     recorder,
		stats:        NewDecisionStats(),
		audit:        logger.NewAuditLogger(log),
		modelLog:     logger.NewModelLogger(log),
		logger:       log,
		lastBankroll: cfg.SaltyBoy.DefaultBankroll,
		current:      strategy.CoefficientsFromConfig(&cfg.Engine),
		fighters:     make(map[string][2]int64),
	}
	s.engine.Store(eng)
	return s
}

// Engine returns the engine currently serving decisions
func (s *DecisionService) Engine() *engine.Engine {
	return s.engine.Load()
}

// DecideCurrent fetches the open contest and records one wager for it.
// It returns ErrNoOpenMatch when there is nothing to bet on and
// ErrAlreadyDecided when the contest was decided by an earlier poll.
func (s *DecisionService) DecideCurrent(ctx context.Context) (*models.Wager, error) {
	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	in, err := s.source.FetchCurrentMatch(fetchCtx)
	switch {
	case err == nil:
	case errors.Is(err, datasource.ErrNoOpenMatch):
		s.stats.RecordIdlePoll()
		return nil, ErrNoOpenMatch
	case errors.Is(err, models.ErrDataUnavailable):
		s.fetchFailed(err)
		if !s.claim(unknownContest) {
			return nil, ErrAlreadyDecided
		}
		w := s.Engine().FailSafe(models.DecisionInput{Bankroll: s.bankroll()}, engine.ReasonDataUnavailable)
		return s.publish(ctx, w, start)
	default:
		return nil, fmt.Errorf("failed to fetch current match: %w", err)
	}

	key := contestKey(in.RedName, in.BlueName)
	if !s.claim(key) {
		return nil, ErrAlreadyDecided
	}

	if in.Bankroll <= 0 {
		balance, err := s.source.FetchBalance(fetchCtx)
		if err != nil {
			s.fetchFailed(err)
			in.Bankroll = s.bankroll()
			w := s.Engine().FailSafe(*in, engine.ReasonDataUnavailable)
			return s.publish(ctx, w, start)
		}
		in.Bankroll = balance
	}
	s.setBankroll(in.Bankroll)

	w, err := s.Evaluate(fetchCtx, *in)
	if err != nil {
		s.release(key)
		return nil, err
	}
	return s.publish(ctx, w, start)
}

// Evaluate decides one contest without recording it. History the input
// lacks is loaded from the history source; a storage failure degrades
// to the fail-safe wager.
func (s *DecisionService) Evaluate(ctx context.Context, in models.DecisionInput) (models.Wager, error) {
	eng := s.Engine()

	if s.history != nil {
		if err := s.history.Enrich(ctx, &in); err != nil {
			if !errors.Is(err, models.ErrDataUnavailable) {
				return models.Wager{}, err
			}
			s.fetchFailed(err)
			return eng.FailSafe(in, engine.ReasonDataUnavailable), nil
		}
	}
	s.trackFighters(in)

	if s.breaker != nil {
		s.breaker.RecordSuccess()
		s.breaker.ObserveBankroll(in.Bankroll)
	}

	w := eng.Decide(in.Snapshot())
	if s.breaker != nil && s.breaker.IsOpen() {
		eng.ForceMinimumStake(&w, engine.ReasonCircuitOpen)
		s.stats.RecordForcedMinimum()
	}
	return w, nil
}

// RecordResult folds a finished contest into history, drops the stale
// calibration entries of both fighters and settles the open wager
func (s *DecisionService) RecordResult(ctx context.Context, result models.MatchResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	key := contestKey(result.RedName, result.BlueName)
	var match *models.Match
	if s.history != nil {
		var err error
		match, err = s.history.RecordResult(ctx, result)
		if err != nil {
			return fmt.Errorf("failed to record result: %w", err)
		}
	}
	s.invalidateFighters(key, match)

	if err := s.recorder.Settle(ctx, result); err != nil {
		return fmt.Errorf("failed to settle wager: %w", err)
	}

	s.release(key)
	s.stats.RecordResult()
	return nil
}

// ReloadCoefficients swaps in the newest stored coefficients.
// A missing or all-zero row keeps the current ones.
func (s *DecisionService) ReloadCoefficients(ctx context.Context) error {
	if s.coefficients == nil {
		return nil
	}

	w, err := s.coefficients.GetLatest(ctx)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Debug("No stored coefficients, keeping current set")
		return nil
	}
	if err != nil {
		s.modelLog.LogCoefficientsLoadError(coefficientSource, err)
		return fmt.Errorf("failed to load coefficients: %w", err)
	}
	if w.IsZero() {
		s.logger.WithField("model_id", w.ID).Warn("Stored coefficients are all zero, keeping current set")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == s.lastWeightID {
		return nil
	}

	next := strategy.Coefficients{Intercept: w.Intercept, TierElo: w.TierElo, H2H: w.H2H, Comp: w.Comp}
	st, err := strategy.NewWithCoefficients(s.engineCfg, next)
	if err != nil {
		return err
	}

	s.engine.Store(s.Engine().WithStrategy(st))
	s.audit.LogCoefficientChange(coefficientSource, s.current, next)
	s.modelLog.LogCoefficientsLoaded(coefficientSource, w.ID, map[string]float64{
		"intercept": next.Intercept,
		"tier_elo":  next.TierElo,
		"h2h":       next.H2H,
		"comp":      next.Comp,
	})
	s.current = next
	s.lastWeightID = w.ID
	return nil
}

// LatestDecision returns the most recently recorded wager
func (s *DecisionService) LatestDecision() (models.Wager, bool) {
	return s.recorder.Latest()
}

// Performance summarises recent settled wagers
func (s *DecisionService) Performance(ctx context.Context, limit int) (models.Performance, error) {
	return s.recorder.Performance(ctx, limit)
}

// Stats returns the decision loop counters
func (s *DecisionService) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// LogCacheStats reports calibration cache effectiveness
func (s *DecisionService) LogCacheStats() {
	if s.cache == nil {
		return
	}
	hits, misses, _ := s.cache.Stats()
	s.modelLog.LogCalibrationCacheStats(int64(hits), int64(misses), s.cache.ItemCount())
}

func (s *DecisionService) publish(ctx context.Context, w models.Wager, start time.Time) (*models.Wager, error) {
	if err := s.recorder.Record(ctx, w); err != nil {
		s.logger.WithError(err).Warn("Wager published but not persisted")
	}
	s.stats.RecordDecision(w.DecidedAt, w.Degraded)
	metrics.RecordDecisionDuration(time.Since(start).Seconds())
	return &w, nil
}

func (s *DecisionService) fetchFailed(err error) {
	metrics.RecordDataFetchFailure()
	s.stats.RecordFetchError()
	if s.breaker != nil {
		s.breaker.RecordFailure(err)
	}
	s.logger.WithError(err).Warn("Contest data unavailable, using fail-safe wager")
}

// claim marks the contest as decided, reporting false when it already was
func (s *DecisionService) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.lastContest {
		return false
	}
	s.lastContest = key
	return true
}

// release forgets a claim so the contest can be decided again
func (s *DecisionService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastContest == key {
		s.lastContest = ""
	}
}

func (s *DecisionService) trackFighters(in models.DecisionInput) {
	if in.Red == nil && in.Blue == nil {
		return
	}
	var ids [2]int64
	if in.Red != nil {
		ids[0] = in.Red.ID
	}
	if in.Blue != nil {
		ids[1] = in.Blue.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fighters) >= maxTrackedContests {
		clear(s.fighters)
	}
	s.fighters[contestKey(in.RedName, in.BlueName)] = ids
}

// invalidateFighters drops the calibration entries of both fighters of a
// finished contest. IDs seen at decision time cover results that history
// did not store.
func (s *DecisionService) invalidateFighters(key string, match *models.Match) {
	s.mu.Lock()
	ids, ok := s.fighters[key]
	delete(s.fighters, key)
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if match != nil {
		s.cache.Invalidate(match.RedID)
		s.cache.Invalidate(match.BlueID)
	}
	if ok {
		for _, id := range ids {
			if id != 0 {
				s.cache.Invalidate(id)
			}
		}
	}
}

func contestKey(red, blue string) string {
	return red + "\x00" + blue
}

func (s *DecisionService) bankroll() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBankroll
}

func (s *DecisionService) setBankroll(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBankroll = v
}
