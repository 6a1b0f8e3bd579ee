package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

// FighterRepository defines the interface for fighter data access
type FighterRepository interface {
	Create(ctx context.Context, fighter *models.Fighter) error
	GetByID(ctx context.Context, id int64) (*models.Fighter, error)
	GetByName(ctx context.Context, name string) (*models.Fighter, error)
	UpdateRating(ctx context.Context, fighter *models.Fighter) error
}

// MatchRepository defines the interface for match history access
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByFighter(ctx context.Context, fighterID int64, limit int) ([]*models.Match, error)
}

// ModelWeightRepository defines the interface for persisted coefficients
type ModelWeightRepository interface {
	Create(ctx context.Context, weight *models.ModelWeight) error
	GetLatest(ctx context.Context) (*models.ModelWeight, error)
}

// WagerRepository defines the interface for the decision log
type WagerRepository interface {
	Create(ctx context.Context, wager *models.Wager) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error)
	GetOpen(ctx context.Context, redName, blueName string) (*models.Wager, error)
	Settle(ctx context.Context, id uuid.UUID, outcome models.Side, poolRed, poolBlue int64) error
	GetRecent(ctx context.Context, limit int) ([]*models.Wager, error)
	RecentPerformance(ctx context.Context, limit int) (models.Performance, error)
}
