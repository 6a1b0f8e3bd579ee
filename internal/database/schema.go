package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sodium-tycoon/internal/config"
)

// schemaStatements create the history, coefficient and decision-log tables.
// Every statement is idempotent so Initialize can run on each start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS fighter (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR NOT NULL,
		tier VARCHAR NOT NULL DEFAULT 'U',
		elo DOUBLE PRECISION NOT NULL DEFAULT 1500,
		tier_elo DOUBLE PRECISION NOT NULL DEFAULT 1500,
		created_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_fighter_name ON fighter (name)`,
	`CREATE TABLE IF NOT EXISTS match (
		id BIGSERIAL PRIMARY KEY,
		fighter_red BIGINT NOT NULL,
		fighter_blue BIGINT NOT NULL,
		winner BIGINT NOT NULL,
		bet_red BIGINT NOT NULL DEFAULT 0,
		bet_blue BIGINT NOT NULL DEFAULT 0,
		tier VARCHAR NOT NULL,
		match_format VARCHAR NOT NULL,
		date TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_match_fighter_red ON match (fighter_red)`,
	`CREATE INDEX IF NOT EXISTS idx_match_fighter_blue ON match (fighter_blue)`,
	`CREATE INDEX IF NOT EXISTS idx_match_date ON match (date)`,
	`CREATE TABLE IF NOT EXISTS model_weight (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		intercept DOUBLE PRECISION NOT NULL,
		tier_elo DOUBLE PRECISION NOT NULL,
		h2h DOUBLE PRECISION NOT NULL,
		comp DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wager (
		id UUID PRIMARY KEY,
		fighter_red VARCHAR NOT NULL,
		fighter_blue VARCHAR NOT NULL,
		side VARCHAR(10) NOT NULL,
		confidence DOUBLE PRECISION,
		model_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		strategy VARCHAR NOT NULL,
		wager BIGINT NOT NULL,
		balance BIGINT NOT NULL,
		tier VARCHAR NOT NULL,
		match_format VARCHAR NOT NULL,
		degraded BOOLEAN NOT NULL DEFAULT FALSE,
		decided_at TIMESTAMPTZ NOT NULL,
		outcome VARCHAR(10),
		pool_red BIGINT,
		pool_blue BIGINT,
		settled_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wager_decided_at ON wager (decided_at)`,
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := ApplySchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// ApplySchema creates any missing tables and indexes in one transaction
func ApplySchema(ctx context.Context, db *DB) error {
	return db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
