// Package db provides PostgreSQL storage for safe recipes, share tokens,
// domain quotas, and the recipe library.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the tables this service owns if they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recipes (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			servings INT NOT NULL DEFAULT 2,
			ingredients JSONB NOT NULL DEFAULT '[]',
			instructions JSONB NOT NULL DEFAULT '[]',
			categories JSONB NOT NULL DEFAULT '[]',
			source_url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS safe_recipes (
			id TEXT PRIMARY KEY,
			original_recipe_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			title_generic TEXT NOT NULL,
			ingredients JSONB NOT NULL DEFAULT '[]',
			servings INT NOT NULL DEFAULT 2,
			total_time_minutes INT NOT NULL DEFAULT 0,
			method_rewritten JSONB NOT NULL DEFAULT '[]',
			categories JSONB NOT NULL DEFAULT '[]',
			adapted_from_domain TEXT,
			compliance_metrics JSONB NOT NULL,
			source_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (original_recipe_id, owner_id)
		)`,
		`CREATE TABLE IF NOT EXISTS share_tokens (
			token TEXT PRIMARY KEY,
			safe_recipe_ids JSONB NOT NULL DEFAULT '[]',
			sender_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			used BOOLEAN NOT NULL DEFAULT FALSE,
			used_at TIMESTAMPTZ,
			used_by TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS domain_quotas (
			domain TEXT PRIMARY KEY,
			daily_count INT NOT NULL DEFAULT 0,
			daily_reset_at TIMESTAMPTZ NOT NULL,
			rolling_count_90d INT NOT NULL DEFAULT 0,
			last_import_at TIMESTAMPTZ
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
