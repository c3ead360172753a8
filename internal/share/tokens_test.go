package share

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recipe-share/internal/types"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTokenService(store TokenStore, safe SafeRecipeStore) *TokenService {
	return NewTokenService(store, safe, fixedClock(testNow), &seqReader{})
}

func TestIssue_TokenShape(t *testing.T) {
	store := newMemTokenStore()
	svc := newTestTokenService(store, newMemSafeStore())

	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1", "sr-2"})
	require.NoError(t, err)

	assert.NotEmpty(t, token.Token)
	assert.NotContains(t, token.Token, "+")
	assert.NotContains(t, token.Token, "/")
	assert.NotContains(t, token.Token, "=")
	assert.Equal(t, types.ScopePrivateImportOnly, token.Scope)
	assert.Equal(t, "sender-1", token.SenderID)
	assert.Equal(t, []string{"sr-1", "sr-2"}, token.SafeRecipeIDs)
	assert.Equal(t, testNow.Add(TokenTTL), token.ExpiresAt)
	assert.False(t, token.Used)

	stored, err := store.Get(context.Background(), token.Token)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestIssue_TokensAreUnique(t *testing.T) {
	svc := newTestTokenService(newMemTokenStore(), newMemSafeStore())

	first, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1"})
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestPreview_MetadataOnly(t *testing.T) {
	svc := newTestTokenService(newMemTokenStore(), newMemSafeStore())
	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1", "sr-2", "sr-3"})
	require.NoError(t, err)

	info, err := svc.Preview(context.Background(), token.Token)
	require.NoError(t, err)
	assert.Equal(t, 3, info.RecipeCount)
	assert.Equal(t, token.ExpiresAt, info.ExpiresAt)
}

func TestPreview_UnknownToken(t *testing.T) {
	svc := newTestTokenService(newMemTokenStore(), newMemSafeStore())

	_, err := svc.Preview(context.Background(), "no-such-token")

	var notFound *ErrTokenNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestPreview_UsedToken(t *testing.T) {
	store := newMemTokenStore()
	svc := newTestTokenService(store, newMemSafeStore())
	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1"})
	require.NoError(t, err)

	_, err = store.Redeem(context.Background(), token.Token, "receiver-1", testNow)
	require.NoError(t, err)

	_, err = svc.Preview(context.Background(), token.Token)

	var gone *ErrTokenGone
	require.ErrorAs(t, err, &gone)
	assert.Equal(t, ReasonUsed, gone.Reason)
}

func TestPreview_ExpiredToken(t *testing.T) {
	store := newMemTokenStore()
	svc := NewTokenService(store, newMemSafeStore(), fixedClock(testNow), &seqReader{})
	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1"})
	require.NoError(t, err)

	late := NewTokenService(store, newMemSafeStore(), fixedClock(testNow.Add(TokenTTL)), &seqReader{})
	_, err = late.Preview(context.Background(), token.Token)

	var gone *ErrTokenGone
	require.ErrorAs(t, err, &gone)
	assert.Equal(t, ReasonExpired, gone.Reason)
}

func TestValidateAndRedeem_Success(t *testing.T) {
	store := newMemTokenStore()
	safe := newMemSafeStore()
	require.NoError(t, safe.Upsert(context.Background(), testSafeRecipe("sr-1", "r-1", "sender-1", true)))

	svc := newTestTokenService(store, safe)
	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1"})
	require.NoError(t, err)

	recipes, err := svc.ValidateAndRedeem(context.Background(), token.Token, "receiver-1")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "sr-1", recipes[0].ID)

	stored, err := store.Get(context.Background(), token.Token)
	require.NoError(t, err)
	assert.True(t, stored.Used)
	assert.Equal(t, "receiver-1", stored.UsedBy)
	require.NotNil(t, stored.UsedAt)
}

func TestValidateAndRedeem_SecondAttemptGone(t *testing.T) {
	store := newMemTokenStore()
	safe := newMemSafeStore()
	require.NoError(t, safe.Upsert(context.Background(), testSafeRecipe("sr-1", "r-1", "sender-1", true)))

	svc := newTestTokenService(store, safe)
	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1"})
	require.NoError(t, err)

	_, err = svc.ValidateAndRedeem(context.Background(), token.Token, "receiver-1")
	require.NoError(t, err)

	_, err = svc.ValidateAndRedeem(context.Background(), token.Token, "receiver-2")
	var gone *ErrTokenGone
	require.ErrorAs(t, err, &gone)
	assert.Equal(t, ReasonUsed, gone.Reason)
}

func TestValidateAndRedeem_ConcurrentExactlyOneWins(t *testing.T) {
	store := newMemTokenStore()
	safe := newMemSafeStore()
	require.NoError(t, safe.Upsert(context.Background(), testSafeRecipe("sr-1", "r-1", "sender-1", true)))

	svc := newTestTokenService(store, safe)
	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1"})
	require.NoError(t, err)

	const redeemers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		losers    int
	)
	start := make(chan struct{})

	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			_, err := svc.ValidateAndRedeem(context.Background(), token.Token, "receiver-"+string(rune('a'+n)))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			var gone *ErrTokenGone
			if assert.ErrorAs(t, err, &gone) {
				losers++
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, redeemers-1, losers)
}

func TestValidateAndRedeem_ExpiredBeforeUsedPrecedence(t *testing.T) {
	store := newMemTokenStore()
	svc := NewTokenService(store, newMemSafeStore(), fixedClock(testNow), &seqReader{})
	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1"})
	require.NoError(t, err)

	late := NewTokenService(store, newMemSafeStore(), fixedClock(testNow.Add(TokenTTL+time.Second)), &seqReader{})
	_, err = late.ValidateAndRedeem(context.Background(), token.Token, "receiver-1")

	var gone *ErrTokenGone
	require.ErrorAs(t, err, &gone)
	assert.Equal(t, ReasonExpired, gone.Reason)

	// The failed redemption never flipped the token.
	stored, err := store.Get(context.Background(), token.Token)
	require.NoError(t, err)
	assert.False(t, stored.Used)
}

func TestValidateAndRedeem_SelfImportRejected(t *testing.T) {
	svc := newTestTokenService(newMemTokenStore(), newMemSafeStore())
	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1"})
	require.NoError(t, err)

	_, err = svc.ValidateAndRedeem(context.Background(), token.Token, "sender-1")

	var self *ErrSelfImport
	require.ErrorAs(t, err, &self)
}

func TestValidateAndRedeem_InvalidScopeRejected(t *testing.T) {
	store := newMemTokenStore()
	require.NoError(t, store.Insert(context.Background(), &types.ShareToken{
		Token:         "tampered",
		SafeRecipeIDs: []string{"sr-1"},
		SenderID:      "sender-1",
		Scope:         "public-read",
		CreatedAt:     testNow,
		ExpiresAt:     testNow.Add(TokenTTL),
	}))

	svc := newTestTokenService(store, newMemSafeStore())
	_, err := svc.ValidateAndRedeem(context.Background(), "tampered", "receiver-1")

	var scope *ErrInvalidScope
	require.ErrorAs(t, err, &scope)
	assert.Equal(t, "public-read", scope.Scope)
}

func TestValidateAndRedeem_FiltersNonCompliantRecipes(t *testing.T) {
	safe := newMemSafeStore()
	require.NoError(t, safe.Upsert(context.Background(), testSafeRecipe("sr-1", "r-1", "sender-1", true)))
	require.NoError(t, safe.Upsert(context.Background(), testSafeRecipe("sr-2", "r-2", "sender-1", false)))

	svc := newTestTokenService(newMemTokenStore(), safe)
	token, err := svc.Issue(context.Background(), "sender-1", []string{"sr-1", "sr-2"})
	require.NoError(t, err)

	recipes, err := svc.ValidateAndRedeem(context.Background(), token.Token, "receiver-1")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "sr-1", recipes[0].ID)
}

func TestValidateAndRedeem_UnknownToken(t *testing.T) {
	svc := newTestTokenService(newMemTokenStore(), newMemSafeStore())

	_, err := svc.ValidateAndRedeem(context.Background(), "missing", "receiver-1")

	var notFound *ErrTokenNotFound
	require.ErrorAs(t, err, &notFound)
}
