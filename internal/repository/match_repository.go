package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/sodium-tycoon/internal/database"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// Create inserts a settled match and sets its generated ID
func (r *PostgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO match (fighter_red, fighter_blue, winner, bet_red, bet_blue, tier, match_format, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.GetPool().QueryRow(ctx, query,
		match.RedID, match.BlueID, match.WinnerID, match.StakeRed, match.StakeBlue, match.Tier, match.Format, match.Date,
	).Scan(&match.ID)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// GetByFighter retrieves the fighter's most recent matches in either corner, oldest first
func (r *PostgresMatchRepository) GetByFighter(ctx context.Context, fighterID int64, limit int) ([]*models.Match, error) {
	query := `
		SELECT id, fighter_red, fighter_blue, winner, bet_red, bet_blue, tier, match_format, date
		FROM (
			SELECT * FROM match
			WHERE fighter_red = $1 OR fighter_blue = $1
			ORDER BY date DESC
			LIMIT $2
		) recent
		ORDER BY date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, fighterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches by fighter: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m := &models.Match{}
		err := rows.Scan(&m.ID, &m.RedID, &m.BlueID, &m.WinnerID, &m.StakeRed, &m.StakeBlue, &m.Tier, &m.Format, &m.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}
