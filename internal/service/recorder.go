package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sodium-tycoon/internal/logger"
	"github.com/yourusername/sodium-tycoon/internal/metrics"
	"github.com/yourusername/sodium-tycoon/internal/models"
	"github.com/yourusername/sodium-tycoon/internal/repository"
)

// DecisionRecorder keeps the latest wager for the execution side and,
// when a repository is configured, appends every wager to the decision log
type DecisionRecorder struct {
	mu     sync.RWMutex
	latest *models.Wager
	wagers repository.WagerRepository
	audit  *logger.AuditLogger
	logger *logrus.Logger
	now    func() time.Time
}

// NewDecisionRecorder creates a recorder. wagers may be nil.
func NewDecisionRecorder(wagers repository.WagerRepository, log *logrus.Logger) *DecisionRecorder {
	return &DecisionRecorder{
		wagers: wagers,
		audit:  logger.NewAuditLogger(log),
		logger: log,
		now:    time.Now,
	}
}

// Record publishes the wager as the latest decision and persists it.
// The wager is published even when persistence fails.
func (r *DecisionRecorder) Record(ctx context.Context, w models.Wager) error {
	r.mu.Lock()
	r.latest = &w
	r.mu.Unlock()

	metrics.RecordWager(w.Stake)
	metrics.UpdateBankroll(w.Bankroll)
	r.audit.LogWagerRecorded(w.ID.String(), w.RedName, w.BlueName, string(w.Decision.Side), string(w.Tier),
		w.Stake, w.Bankroll, w.Degraded, w.DecidedAt)

	if r.wagers == nil {
		return nil
	}
	if err := r.wagers.Create(ctx, &w); err != nil {
		return fmt.Errorf("failed to persist wager %s: %w", w.ID, err)
	}
	return nil
}

// Latest returns a copy of the most recent wager
func (r *DecisionRecorder) Latest() (models.Wager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.latest == nil {
		return models.Wager{}, false
	}
	return *r.latest, true
}

// Settle attaches a contest result to the matching open wager
func (r *DecisionRecorder) Settle(ctx context.Context, result models.MatchResult) error {
	settledAt := r.now().UTC()

	r.mu.Lock()
	if r.latest != nil && !r.latest.IsSettled() &&
		r.latest.RedName == result.RedName && r.latest.BlueName == result.BlueName {
		settled := *r.latest
		settled.Outcome = result.Winner
		settled.PoolRed = result.PoolRed
		settled.PoolBlue = result.PoolBlue
		settled.SettledAt = &settledAt
		r.latest = &settled
	}
	r.mu.Unlock()

	if r.wagers == nil {
		return nil
	}

	open, err := r.wagers.GetOpen(ctx, result.RedName, result.BlueName)
	if errors.Is(err, models.ErrNotFound) {
		r.logger.WithFields(logrus.Fields{
			"fighter_red":  result.RedName,
			"fighter_blue": result.BlueName,
		}).Debug("No open wager for result")
		return nil
	}
	if err != nil {
		return err
	}

	return r.wagers.Settle(ctx, open.ID, result.Winner, result.PoolRed, result.PoolBlue)
}

// Performance summarises up to limit recent settled wagers
func (r *DecisionRecorder) Performance(ctx context.Context, limit int) (models.Performance, error) {
	if r.wagers != nil {
		return r.wagers.RecentPerformance(ctx, limit)
	}

	latest, ok := r.Latest()
	if !ok {
		return models.Performance{}, nil
	}
	return models.Summarize([]*models.Wager{&latest}), nil
}
