package share

import (
	"context"
	"time"

	"github.com/jonathan/recipe-share/internal/types"
)

// RecipeStore is the external recipe storage collaborator. Implementations
// return (nil, nil) when the recipe does not exist.
type RecipeStore interface {
	GetRecipe(ctx context.Context, id string) (*types.Recipe, error)
}

// RecipeLibrary receives recipes copied into a requester's collection during
// redemption.
type RecipeLibrary interface {
	AddImported(ctx context.Context, recipe *types.Recipe) error
}

// SafeRecipeStore persists compliant shareable artifacts. Upsert is keyed by
// (OriginalRecipeID, OwnerID): a fresh share request supersedes the prior
// version. GetByOriginal returns (nil, nil) when absent.
type SafeRecipeStore interface {
	Upsert(ctx context.Context, recipe *types.SafeRecipe) error
	GetByOriginal(ctx context.Context, originalRecipeID, ownerID string) (*types.SafeRecipe, error)
	GetByIDs(ctx context.Context, ids []string) ([]types.SafeRecipe, error)
}

// TokenStore persists share tokens. Get returns (nil, nil) when absent.
//
// Redeem is the race-critical operation: it must be a single atomic
// conditional write that flips used from false to true, returning true only
// for the call that performed the flip. Two concurrent redemptions of the
// same token must never both observe true.
type TokenStore interface {
	Insert(ctx context.Context, token *types.ShareToken) error
	Get(ctx context.Context, token string) (*types.ShareToken, error)
	Redeem(ctx context.Context, token, requesterID string, usedAt time.Time) (bool, error)
}
