package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/recipe-share/internal/types"
)

// Upsert stores a SafeRecipe, replacing any prior version for the same
// (original recipe, owner) pair.
func (db *DB) Upsert(ctx context.Context, recipe *types.SafeRecipe) error {
	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	method, err := json.Marshal(recipe.MethodRewritten)
	if err != nil {
		return fmt.Errorf("failed to marshal method: %w", err)
	}
	categories, err := json.Marshal(recipe.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	metrics, err := json.Marshal(recipe.ComplianceMetrics)
	if err != nil {
		return fmt.Errorf("failed to marshal compliance metrics: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO safe_recipes
		   (id, original_recipe_id, owner_id, title_generic, ingredients, servings,
		    total_time_minutes, method_rewritten, categories, adapted_from_domain,
		    compliance_metrics, source_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (original_recipe_id, owner_id) DO UPDATE SET
		   id = $1, title_generic = $4, ingredients = $5, servings = $6,
		   total_time_minutes = $7, method_rewritten = $8, categories = $9,
		   adapted_from_domain = $10, compliance_metrics = $11,
		   source_hash = $12, created_at = $13`,
		recipe.ID, recipe.OriginalRecipeID, recipe.OwnerID, recipe.TitleGeneric,
		ingredients, recipe.Servings, recipe.TotalTimeMinutes, method, categories,
		nullable(recipe.AdaptedFromDomain), metrics, recipe.SourceHash, recipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert safe recipe: %w", err)
	}
	return nil
}

// GetByOriginal loads the SafeRecipe for a (recipe, owner) pair, or nil if
// none exists.
func (db *DB) GetByOriginal(ctx context.Context, originalRecipeID, ownerID string) (*types.SafeRecipe, error) {
	row := db.pool.QueryRow(ctx,
		safeRecipeSelect+` WHERE original_recipe_id = $1 AND owner_id = $2`,
		originalRecipeID, ownerID,
	)
	recipe, err := scanSafeRecipe(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get safe recipe: %w", err)
	}
	return recipe, nil
}

// GetByIDs loads SafeRecipes by id. Missing ids are simply absent from the
// result.
func (db *DB) GetByIDs(ctx context.Context, ids []string) ([]types.SafeRecipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx, safeRecipeSelect+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query safe recipes: %w", err)
	}
	defer rows.Close()

	var recipes []types.SafeRecipe
	for rows.Next() {
		recipe, err := scanSafeRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan safe recipe: %w", err)
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, rows.Err()
}

const safeRecipeSelect = `SELECT id, original_recipe_id, owner_id, title_generic,
	ingredients, servings, total_time_minutes, method_rewritten, categories,
	COALESCE(adapted_from_domain, ''), compliance_metrics, source_hash, created_at
	FROM safe_recipes`

// scanSafeRecipe reads one row produced by safeRecipeSelect.
func scanSafeRecipe(row pgx.Row) (*types.SafeRecipe, error) {
	var (
		recipe      types.SafeRecipe
		ingredients []byte
		method      []byte
		categories  []byte
		metrics     []byte
	)
	err := row.Scan(&recipe.ID, &recipe.OriginalRecipeID, &recipe.OwnerID,
		&recipe.TitleGeneric, &ingredients, &recipe.Servings, &recipe.TotalTimeMinutes,
		&method, &categories, &recipe.AdaptedFromDomain, &metrics,
		&recipe.SourceHash, &recipe.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	if err := json.Unmarshal(method, &recipe.MethodRewritten); err != nil {
		return nil, fmt.Errorf("failed to unmarshal method: %w", err)
	}
	if err := json.Unmarshal(categories, &recipe.Categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	if err := json.Unmarshal(metrics, &recipe.ComplianceMetrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal compliance metrics: %w", err)
	}
	return &recipe, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
