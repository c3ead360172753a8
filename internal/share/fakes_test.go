package share

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/recipe-share/internal/types"
)

// memTokenStore is an in-memory TokenStore with the same atomic conditional
// write contract as the database implementation.
type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*types.ShareToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]*types.ShareToken)}
}

func (s *memTokenStore) Insert(_ context.Context, token *types.ShareToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *token
	s.tokens[token.Token] = &cp
	return nil
}

func (s *memTokenStore) Get(_ context.Context, token string) (*types.ShareToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *memTokenStore) Redeem(_ context.Context, token, requesterID string, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[token]
	if !ok || rec.Used {
		return false, nil
	}
	rec.Used = true
	rec.UsedAt = &usedAt
	rec.UsedBy = requesterID
	return true, nil
}

// memSafeStore is an in-memory SafeRecipeStore keyed like the database one.
type memSafeStore struct {
	mu      sync.Mutex
	byID    map[string]*types.SafeRecipe
	upserts int
}

func newMemSafeStore() *memSafeStore {
	return &memSafeStore{byID: make(map[string]*types.SafeRecipe)}
}

func (s *memSafeStore) Upsert(_ context.Context, recipe *types.SafeRecipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	for id, existing := range s.byID {
		if existing.OriginalRecipeID == recipe.OriginalRecipeID && existing.OwnerID == recipe.OwnerID {
			delete(s.byID, id)
		}
	}
	cp := *recipe
	s.byID[recipe.ID] = &cp
	return nil
}

func (s *memSafeStore) GetByOriginal(_ context.Context, originalRecipeID, ownerID string) (*types.SafeRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.byID {
		if rec.OriginalRecipeID == originalRecipeID && rec.OwnerID == ownerID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memSafeStore) GetByIDs(_ context.Context, ids []string) ([]types.SafeRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.SafeRecipe
	for _, id := range ids {
		if rec, ok := s.byID[id]; ok {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// memRecipeStore serves recipes from a fixed map and collects imports.
type memRecipeStore struct {
	mu       sync.Mutex
	recipes  map[string]*types.Recipe
	imported []*types.Recipe
}

func newMemRecipeStore(recipes ...*types.Recipe) *memRecipeStore {
	s := &memRecipeStore{recipes: make(map[string]*types.Recipe)}
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	return s
}

func (s *memRecipeStore) GetRecipe(_ context.Context, id string) (*types.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recipes[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *memRecipeStore) AddImported(_ context.Context, recipe *types.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *recipe
	s.imported = append(s.imported, &cp)
	return nil
}

// allowAllLedger accepts every reservation and counts increments.
type allowAllLedger struct {
	mu         sync.Mutex
	increments map[string]int
}

func newAllowAllLedger() *allowAllLedger {
	return &allowAllLedger{increments: make(map[string]int)}
}

func (l *allowAllLedger) CheckAndReserve(context.Context, string) (bool, error) {
	return true, nil
}

func (l *allowAllLedger) Increment(_ context.Context, domain string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.increments[domain]++
	return nil
}

// denyAllLedger rejects every reservation.
type denyAllLedger struct{}

func (denyAllLedger) CheckAndReserve(context.Context, string) (bool, error) { return false, nil }
func (denyAllLedger) Increment(context.Context, string) error               { return nil }

// fixedClock returns a constant time.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// seqReader hands out deterministic pseudo-random bytes so issued tokens are
// unique and reproducible.
type seqReader struct {
	mu   sync.Mutex
	next byte
}

func (r *seqReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	for i := range p {
		p[i] = r.next + byte(i)
	}
	return len(p), nil
}

func testSafeRecipe(id, originalID, ownerID string, passed bool) *types.SafeRecipe {
	return &types.SafeRecipe{
		ID:               id,
		OriginalRecipeID: originalID,
		OwnerID:          ownerID,
		TitleGeneric:     fmt.Sprintf("Generic Dish %s", id),
		Servings:         4,
		Ingredients: []types.IngredientFact{
			{Name: "onion", Quantity: "1", Unit: "piece"},
		},
		MethodRewritten:   []string{"Warm the pan", "Cook until done"},
		Categories:        []string{"dinner"},
		ComplianceMetrics: types.ComplianceMetrics{Passed: passed},
	}
}
