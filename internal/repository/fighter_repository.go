package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/sodium-tycoon/internal/database"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

// PostgresFighterRepository implements FighterRepository for PostgreSQL
type PostgresFighterRepository struct {
	db *database.DB
}

// NewPostgresFighterRepository creates a new fighter repository
func NewPostgresFighterRepository(db *database.DB) FighterRepository {
	return &PostgresFighterRepository{db: db}
}

// Create inserts a fighter. A zero ID is assigned by the database.
func (r *PostgresFighterRepository) Create(ctx context.Context, fighter *models.Fighter) error {
	if fighter.ID != 0 {
		query := `
			INSERT INTO fighter (id, name, tier, elo, tier_elo)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := r.db.GetPool().Exec(ctx, query, fighter.ID, fighter.Name, fighter.Tier, fighter.Elo, fighter.TierElo); err != nil {
			return createError(err)
		}
		return nil
	}

	query := `
		INSERT INTO fighter (name, tier, elo, tier_elo)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.GetPool().QueryRow(ctx, query, fighter.Name, fighter.Tier, fighter.Elo, fighter.TierElo).Scan(&fighter.ID)
	if err != nil {
		return createError(err)
	}

	return nil
}

func createError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("failed to create fighter: %w: %s", models.ErrDuplicateKey, pgErr.ConstraintName)
	}
	return fmt.Errorf("failed to create fighter: %w", err)
}

// GetByID retrieves a fighter by ID, without match history
func (r *PostgresFighterRepository) GetByID(ctx context.Context, id int64) (*models.Fighter, error) {
	query := `SELECT id, name, tier, elo, tier_elo FROM fighter WHERE id = $1`
	return r.scanOne(r.db.GetPool().QueryRow(ctx, query, id))
}

// GetByName retrieves a fighter by its display name, without match history
func (r *PostgresFighterRepository) GetByName(ctx context.Context, name string) (*models.Fighter, error) {
	query := `SELECT id, name, tier, elo, tier_elo FROM fighter WHERE name = $1`
	return r.scanOne(r.db.GetPool().QueryRow(ctx, query, name))
}

// UpdateRating stores the fighter's tier and both ratings
func (r *PostgresFighterRepository) UpdateRating(ctx context.Context, fighter *models.Fighter) error {
	query := `
		UPDATE fighter SET tier = $2, elo = $3, tier_elo = $4, last_updated = NOW()
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query, fighter.ID, fighter.Tier, fighter.Elo, fighter.TierElo)
	if err != nil {
		return fmt.Errorf("failed to update fighter rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PostgresFighterRepository) scanOne(row pgx.Row) (*models.Fighter, error) {
	f := &models.Fighter{}
	err := row.Scan(&f.ID, &f.Name, &f.Tier, &f.Elo, &f.TierElo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fighter: %w", err)
	}
	return f, nil
}
