// Package types provides type definitions for structured data used throughout the recipe-share system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// IngredientFact represents a single ingredient of a recipe.
// Ingredient facts (name/quantity/unit/category) are not creative expression
// and are never subject to overlap checking.
type IngredientFact struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Category string `json:"category,omitempty"`
}

// Recipe is the stored recipe shape consumed from the recipe store collaborator.
type Recipe struct {
	ID           string           `json:"id"`
	OwnerID      string           `json:"owner_id"`
	Name         string           `json:"name"`
	Servings     int              `json:"servings"`
	Ingredients  []IngredientFact `json:"ingredients"`
	Instructions []string         `json:"instructions"`
	Categories   []string         `json:"categories,omitempty"`
	SourceURL    string           `json:"source_url,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}
