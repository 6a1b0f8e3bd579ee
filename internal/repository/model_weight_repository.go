package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sodium-tycoon/internal/database"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

// PostgresModelWeightRepository implements ModelWeightRepository for PostgreSQL
type PostgresModelWeightRepository struct {
	db *database.DB
}

// NewPostgresModelWeightRepository creates a new coefficient repository
func NewPostgresModelWeightRepository(db *database.DB) ModelWeightRepository {
	return &PostgresModelWeightRepository{db: db}
}

// Create stores a set of coefficients
func (r *PostgresModelWeightRepository) Create(ctx context.Context, weight *models.ModelWeight) error {
	query := `
		INSERT INTO model_weight (intercept, tier_elo, h2h, comp)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp
	`

	err := r.db.GetPool().QueryRow(ctx, query, weight.Intercept, weight.TierElo, weight.H2H, weight.Comp).
		Scan(&weight.ID, &weight.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create model weight: %w", err)
	}

	return nil
}

// GetLatest retrieves the newest set of coefficients
func (r *PostgresModelWeightRepository) GetLatest(ctx context.Context) (*models.ModelWeight, error) {
	query := `
		SELECT id, timestamp, intercept, tier_elo, h2h, comp
		FROM model_weight
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`

	w := &models.ModelWeight{}
	err := r.db.GetPool().QueryRow(ctx, query).Scan(&w.ID, &w.Timestamp, &w.Intercept, &w.TierElo, &w.H2H, &w.Comp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest model weight: %w", err)
	}

	return w, nil
}
