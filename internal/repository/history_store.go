package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sodium-tycoon/internal/models"
	"github.com/yourusername/sodium-tycoon/internal/strategy"
)

const (
	// DefaultMatchLimit bounds how much history is loaded per fighter
	DefaultMatchLimit = 500

	initialRating = 1500.0
)

// HistoryStore assembles fighter snapshots from persisted history and
// records finished contests back into it
type HistoryStore struct {
	fighters FighterRepository
	matches  MatchRepository
	limit    int
	logger   *logrus.Logger
	now      func() time.Time
}

// NewHistoryStore creates a history store. A non-positive limit uses DefaultMatchLimit.
func NewHistoryStore(fighters FighterRepository, matches MatchRepository, limit int, logger *logrus.Logger) *HistoryStore {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	return &HistoryStore{
		fighters: fighters,
		matches:  matches,
		limit:    limit,
		logger:   logger,
		now:      time.Now,
	}
}

// Snapshot loads a fighter and its recent matches.
// An unknown fighter returns nil without error; a storage failure wraps models.ErrDataUnavailable.
func (h *HistoryStore) Snapshot(ctx context.Context, name string) (*models.Fighter, error) {
	f, err := h.fighters.GetByName(ctx, name)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fighter %q: %v", models.ErrDataUnavailable, name, err)
	}

	history, err := h.matches.GetByFighter(ctx, f.ID, h.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: history for %q: %v", models.ErrDataUnavailable, name, err)
	}

	snapshot, err := models.NewFighter(f.ID, f.Name, f.Tier, f.Elo, f.TierElo, StatsFor(f.ID, history), history)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}

	return snapshot, nil
}

// Enrich fills in any side the upstream source left without history
func (h *HistoryStore) Enrich(ctx context.Context, in *models.DecisionInput) error {
	if in.Red == nil && in.RedName != "" {
		red, err := h.Snapshot(ctx, in.RedName)
		if err != nil {
			return err
		}
		in.Red = red
	}
	if in.Blue == nil && in.BlueName != "" {
		blue, err := h.Snapshot(ctx, in.BlueName)
		if err != nil {
			return err
		}
		in.Blue = blue
	}
	return nil
}

// RecordResult stores a finished contest and updates both fighters' ratings.
// Exhibition results are not recorded and return a nil match.
func (h *HistoryStore) RecordResult(ctx context.Context, result models.MatchResult) (*models.Match, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}
	if result.IsExhibition() {
		h.logger.WithFields(logrus.Fields{
			"fighter_red":  result.RedName,
			"fighter_blue": result.BlueName,
		}).Debug("Skipping exhibition result")
		return nil, nil
	}

	red, err := h.getOrCreate(ctx, result.RedName, result.Tier)
	if err != nil {
		return nil, err
	}
	blue, err := h.getOrCreate(ctx, result.BlueName, result.Tier)
	if err != nil {
		return nil, err
	}

	winnerID := red.ID
	if result.Winner == models.SideBlue {
		winnerID = blue.ID
	}
	date := result.Date
	if date.IsZero() {
		date = h.now().UTC()
	}

	match, err := models.NewMatch(0, red.ID, blue.ID, winnerID, result.PoolRed, result.PoolBlue, result.Tier, result.Format, date)
	if err != nil {
		return nil, err
	}
	if err := h.matches.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	redWon := result.Winner == models.SideRed
	updatedRed := Rated(red, blue, result.Tier, redWon)
	updatedBlue := Rated(blue, red, result.Tier, !redWon)
	if err := h.fighters.UpdateRating(ctx, updatedRed); err != nil {
		return nil, err
	}
	if err := h.fighters.UpdateRating(ctx, updatedBlue); err != nil {
		return nil, err
	}

	h.logger.WithFields(logrus.Fields{
		"match_id":      match.ID,
		"winner":        result.WinnerName(),
		"red_elo":       updatedRed.Elo,
		"blue_elo":      updatedBlue.Elo,
		"red_tier_elo":  updatedRed.TierElo,
		"blue_tier_elo": updatedBlue.TierElo,
	}).Info("Recorded match result")

	return match, nil
}

func (h *HistoryStore) getOrCreate(ctx context.Context, name string, tier models.Tier) (*models.Fighter, error) {
	f, err := h.fighters.GetByName(ctx, name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	f = &models.Fighter{Name: name, Tier: tier, Elo: initialRating, TierElo: initialRating}
	err = h.fighters.Create(ctx, f)
	if errors.Is(err, models.ErrDuplicateKey) {
		// created concurrently by another writer
		return h.fighters.GetByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Rated returns the fighter after one result. The tier rating restarts when
// the fighter has moved tier; the opponent's tier rating is used as stored.
func Rated(f, opponent *models.Fighter, tier models.Tier, won bool) *models.Fighter {
	if tier == "" {
		tier = f.Tier
	}
	tierElo := f.TierElo
	if f.Tier != tier {
		tierElo = initialRating
	}
	return &models.Fighter{
		ID:      f.ID,
		Name:    f.Name,
		Tier:    tier,
		Elo:     strategy.UpdateRating(f.Elo, opponent.Elo, won),
		TierElo: strategy.UpdateRating(tierElo, opponent.TierElo, won),
	}
}

// StatsFor summarises a fighter's record over the given history
func StatsFor(fighterID int64, history []*models.Match) models.FighterStats {
	stats := models.FighterStats{TotalMatches: len(history)}
	if len(history) == 0 {
		return stats
	}
	wins := 0
	for _, m := range history {
		if m.WonBy(fighterID) {
			wins++
		}
	}
	stats.WinRate = float64(wins) / float64(len(history))
	return stats
}
