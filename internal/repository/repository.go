package repository

import (
	"fmt"

	"github.com/yourusername/sodium-tycoon/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Fighter     FighterRepository
	Match       MatchRepository
	ModelWeight ModelWeightRepository
	Wager       WagerRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Fighter:     NewPostgresFighterRepository(db),
		Match:       NewPostgresMatchRepository(db),
		ModelWeight: NewPostgresModelWeightRepository(db),
		Wager:       NewPostgresWagerRepository(db),
	}, nil
}
