package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sodium-tycoon/internal/database"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

const wagerColumns = `id, fighter_red, fighter_blue, side, confidence, model_score, strategy, wager, balance,
		       tier, match_format, degraded, decided_at, outcome, pool_red, pool_blue, settled_at`

// PostgresWagerRepository implements WagerRepository for PostgreSQL
type PostgresWagerRepository struct {
	db *database.DB
}

// NewPostgresWagerRepository creates a new decision log repository
func NewPostgresWagerRepository(db *database.DB) WagerRepository {
	return &PostgresWagerRepository{db: db}
}

// Create inserts an unsettled wager
func (r *PostgresWagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	if wager.ID == uuid.Nil {
		wager.ID = uuid.New()
	}

	query := `
		INSERT INTO wager (id, fighter_red, fighter_blue, side, confidence, model_score, strategy, wager, balance,
		                   tier, match_format, degraded, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		wager.ID, wager.RedName, wager.BlueName, wager.Decision.Side, wager.Decision.Confidence, wager.Decision.ModelScore,
		wager.Decision.Strategy, wager.Stake, wager.Bankroll, wager.Tier, wager.Format, wager.Degraded, wager.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wager: %w", err)
	}

	return nil
}

// GetByID retrieves a wager by ID
func (r *PostgresWagerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wager WHERE id = $1`

	w, err := scanWager(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}

	return w, nil
}

// GetOpen retrieves the newest unsettled wager on the pairing
func (r *PostgresWagerRepository) GetOpen(ctx context.Context, redName, blueName string) (*models.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wager
		WHERE fighter_red = $1 AND fighter_blue = $2 AND outcome IS NULL
		ORDER BY decided_at DESC
		LIMIT 1
	`

	w, err := scanWager(r.db.GetPool().QueryRow(ctx, query, redName, blueName))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open wager: %w", err)
	}

	return w, nil
}

// Settle attaches the contest outcome and final pools to a wager
func (r *PostgresWagerRepository) Settle(ctx context.Context, id uuid.UUID, outcome models.Side, poolRed, poolBlue int64) error {
	query := `
		UPDATE wager SET outcome = $2, pool_red = $3, pool_blue = $4, settled_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query, id, outcome, poolRed, poolBlue)
	if err != nil {
		return fmt.Errorf("failed to settle wager: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetRecent retrieves the newest wagers, newest first
func (r *PostgresWagerRepository) GetRecent(ctx context.Context, limit int) ([]*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wager ORDER BY decided_at DESC LIMIT $1`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent wagers: %w", err)
	}
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, w)
	}

	return wagers, rows.Err()
}

// RecentPerformance summarises the newest settled wagers
func (r *PostgresWagerRepository) RecentPerformance(ctx context.Context, limit int) (models.Performance, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wager
		WHERE outcome IS NOT NULL
		ORDER BY decided_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return models.Performance{}, fmt.Errorf("failed to query settled wagers: %w", err)
	}
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return models.Performance{}, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, w)
	}
	if err := rows.Err(); err != nil {
		return models.Performance{}, err
	}

	return models.Summarize(wagers), nil
}

func scanWager(row pgx.Row) (*models.Wager, error) {
	var (
		w        models.Wager
		outcome  *string
		poolRed  *int64
		poolBlue *int64
	)

	err := row.Scan(
		&w.ID, &w.RedName, &w.BlueName, &w.Decision.Side, &w.Decision.Confidence, &w.Decision.ModelScore,
		&w.Decision.Strategy, &w.Stake, &w.Bankroll, &w.Tier, &w.Format, &w.Degraded, &w.DecidedAt,
		&outcome, &poolRed, &poolBlue, &w.SettledAt,
	)
	if err != nil {
		return nil, err
	}

	if outcome != nil {
		w.Outcome = models.Side(*outcome)
	}
	if poolRed != nil {
		w.PoolRed = *poolRed
	}
	if poolBlue != nil {
		w.PoolBlue = *poolBlue
	}

	return &w, nil
}
