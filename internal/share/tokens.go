package share

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/jonathan/recipe-share/internal/types"
)

// TokenTTL is the fixed lifetime of a share token.
const TokenTTL = 15 * time.Minute

// tokenEntropyBytes gives 256 bits of entropy per token.
const tokenEntropyBytes = 32

// PreviewInfo is the minimal metadata a preview may expose. Never recipe
// content: the whole point of the 15-minute window is that nothing leaks
// before a committed import.
type PreviewInfo struct {
	RecipeCount int       `json:"recipe_count"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenService drives the share-token lifecycle. A token starts active and
// ends either redeemed or expired; expiry is computed lazily at access time,
// never stored.
type TokenService struct {
	store   TokenStore
	recipes SafeRecipeStore
	now     func() time.Time
	random  io.Reader
}

// NewTokenService creates a TokenService. A nil clock defaults to time.Now
// and a nil random source to crypto/rand.
func NewTokenService(store TokenStore, recipes SafeRecipeStore, now func() time.Time, random io.Reader) *TokenService {
	if now == nil {
		now = time.Now
	}
	if random == nil {
		random = rand.Reader
	}
	return &TokenService{store: store, recipes: recipes, now: now, random: random}
}

// Issue creates and persists a fresh single-use token for the given
// SafeRecipe ids.
func (s *TokenService) Issue(ctx context.Context, senderID string, safeRecipeIDs []string) (*types.ShareToken, error) {
	value, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.now()
	token := &types.ShareToken{
		Token:         value,
		SafeRecipeIDs: safeRecipeIDs,
		SenderID:      senderID,
		Scope:         types.ScopePrivateImportOnly,
		CreatedAt:     now,
		ExpiresAt:     now.Add(TokenTTL),
	}

	if err := s.store.Insert(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// Preview returns minimal metadata for a token without consuming it.
func (s *TokenService) Preview(ctx context.Context, token string) (*PreviewInfo, error) {
	rec, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if rec == nil {
		return nil, &ErrTokenNotFound{}
	}
	if rec.Used {
		return nil, &ErrTokenGone{Reason: ReasonUsed}
	}
	if !s.now().Before(rec.ExpiresAt) {
		return nil, &ErrTokenGone{Reason: ReasonExpired}
	}

	return &PreviewInfo{
		RecipeCount: len(rec.SafeRecipeIDs),
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}

// ValidateAndRedeem consumes a token and returns its SafeRecipes. The
// used-flag transition happens through the store's atomic conditional write,
// so of two concurrent redeemers exactly one succeeds; the loser observes
// Gone. Recipes that lost compliance between issuance and redemption are
// silently excluded, not treated as an error.
func (s *TokenService) ValidateAndRedeem(ctx context.Context, token, requesterID string) ([]types.SafeRecipe, error) {
	rec, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if rec == nil {
		return nil, &ErrTokenNotFound{}
	}
	if rec.Used {
		return nil, &ErrTokenGone{Reason: ReasonUsed}
	}
	if !s.now().Before(rec.ExpiresAt) {
		return nil, &ErrTokenGone{Reason: ReasonExpired}
	}
	if rec.Scope != types.ScopePrivateImportOnly {
		return nil, &ErrInvalidScope{Scope: rec.Scope}
	}
	if requesterID == rec.SenderID {
		return nil, &ErrSelfImport{}
	}

	flipped, err := s.store.Redeem(ctx, token, requesterID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}
	if !flipped {
		// Lost the race to a concurrent redeemer.
		return nil, &ErrTokenGone{Reason: ReasonUsed}
	}

	recipes, err := s.recipes.GetByIDs(ctx, rec.SafeRecipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load shared recipes: %w", err)
	}

	compliant := make([]types.SafeRecipe, 0, len(recipes))
	for _, r := range recipes {
		if r.ComplianceMetrics.Passed {
			compliant = append(compliant, r)
		}
	}
	return compliant, nil
}

// generate produces a URL-safe token with 256 bits of entropy.
func (s *TokenService) generate() (string, error) {
	buf := make([]byte, tokenEntropyBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
