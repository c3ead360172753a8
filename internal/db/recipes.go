package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/recipe-share/internal/types"
)

// GetRecipe loads a stored recipe, or nil if it does not exist.
func (db *DB) GetRecipe(ctx context.Context, id string) (*types.Recipe, error) {
	var (
		recipe       types.Recipe
		ingredients  []byte
		instructions []byte
		categories   []byte
		sourceURL    *string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, servings, ingredients, instructions,
		        categories, source_url, created_at
		 FROM recipes WHERE id = $1`,
		id,
	).Scan(&recipe.ID, &recipe.OwnerID, &recipe.Name, &recipe.Servings,
		&ingredients, &instructions, &categories, &sourceURL, &recipe.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	if err := json.Unmarshal(instructions, &recipe.Instructions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
	}
	if err := json.Unmarshal(categories, &recipe.Categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	if sourceURL != nil {
		recipe.SourceURL = *sourceURL
	}
	return &recipe, nil
}

// AddImported inserts a recipe copied into a requester's library during
// redemption. The caller has already stripped everything but the facts.
func (db *DB) AddImported(ctx context.Context, recipe *types.Recipe) error {
	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructions, err := json.Marshal(recipe.Instructions)
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}
	categories, err := json.Marshal(recipe.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO recipes (id, owner_id, name, servings, ingredients, instructions, categories, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		recipe.ID, recipe.OwnerID, recipe.Name, recipe.Servings,
		ingredients, instructions, categories, recipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert imported recipe: %w", err)
	}
	return nil
}
