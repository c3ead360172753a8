package share

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/recipe-share/internal/compliance"
	"github.com/jonathan/recipe-share/internal/quota"
	"github.com/jonathan/recipe-share/internal/rewriting"
	"github.com/jonathan/recipe-share/internal/stepgraph"
	"github.com/jonathan/recipe-share/internal/types"
)

// defaultWorkers bounds concurrent recipe processing inside one batch. Each
// worker performs an LLM call, so the bound also protects upstream quota.
const defaultWorkers = 4

// Pipeline orchestrates create-share and redeem across the step graph
// builder, rewrite service, compliance evaluator, quota ledger, and stores.
type Pipeline struct {
	recipes   RecipeStore
	library   RecipeLibrary
	safe      SafeRecipeStore
	tokens    *TokenService
	ledger    quota.Ledger
	rewriter  rewriting.Service
	evaluator *compliance.Evaluator
	builder   *stepgraph.Builder
	now       func() time.Time
	workers   int
}

// PipelineConfig wires the pipeline's collaborators. Clock defaults to
// time.Now and Workers to defaultWorkers.
type PipelineConfig struct {
	Recipes   RecipeStore
	Library   RecipeLibrary
	Safe      SafeRecipeStore
	Tokens    *TokenService
	Ledger    quota.Ledger
	Rewriter  rewriting.Service
	Evaluator *compliance.Evaluator
	Builder   *stepgraph.Builder
	Clock     func() time.Time
	Workers   int
}

// NewPipeline creates a Pipeline from its collaborators.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Pipeline{
		recipes:   cfg.Recipes,
		library:   cfg.Library,
		safe:      cfg.Safe,
		tokens:    cfg.Tokens,
		ledger:    cfg.Ledger,
		rewriter:  cfg.Rewriter,
		evaluator: cfg.Evaluator,
		builder:   cfg.Builder,
		now:       cfg.Clock,
		workers:   cfg.Workers,
	}
}

// CreateShareResult describes a successfully issued share link, including
// non-fatal per-recipe issues.
type CreateShareResult struct {
	Token            string   `json:"token"`
	ExpiresInMinutes int      `json:"expires_in_minutes"`
	RecipeCount      int      `json:"recipe_count"`
	Issues           []string `json:"issues,omitempty"`
}

// CreateShare builds or reuses a compliant SafeRecipe for each requested
// recipe and issues a single-use token over the accepted set. Recipes are
// processed independently: per-recipe failures become issues and the batch
// proceeds. Only a wholly empty accepted set fails the operation.
func (p *Pipeline) CreateShare(ctx context.Context, ownerID string, recipeIDs []string) (*CreateShareResult, error) {
	type outcome struct {
		index  int
		safeID string
		issue  string
	}

	var (
		mu       sync.Mutex
		outcomes []outcome
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, recipeID := range recipeIDs {
		g.Go(func() error {
			safeID, issue := p.processRecipe(gctx, ownerID, recipeID)
			mu.Lock()
			outcomes = append(outcomes, outcome{index: i, safeID: safeID, issue: issue})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stable reporting order regardless of completion order.
	sort.Slice(outcomes, func(a, b int) bool { return outcomes[a].index < outcomes[b].index })

	var accepted []string
	var issues []string
	for _, o := range outcomes {
		if o.safeID != "" {
			accepted = append(accepted, o.safeID)
		}
		if o.issue != "" {
			issues = append(issues, o.issue)
		}
	}

	if len(accepted) == 0 {
		return nil, &ErrEmptyBatch{Issues: issues}
	}

	token, err := p.tokens.Issue(ctx, ownerID, accepted)
	if err != nil {
		return nil, err
	}

	log.Printf("share created: %d/%d recipes accepted, token expires %s",
		len(accepted), len(recipeIDs), token.ExpiresAt.Format(time.RFC3339))

	return &CreateShareResult{
		Token:            token.Token,
		ExpiresInMinutes: int(TokenTTL.Minutes()),
		RecipeCount:      len(accepted),
		Issues:           issues,
	}, nil
}

// processRecipe turns one recipe into a persisted SafeRecipe id, or an issue
// string explaining why it was skipped. Failures here are recovered locally;
// they never abort the batch.
func (p *Pipeline) processRecipe(ctx context.Context, ownerID, recipeID string) (safeID, issue string) {
	recipe, err := p.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return "", fmt.Sprintf("recipe %s: %v", recipeID, err)
	}
	if recipe == nil || recipe.OwnerID != ownerID {
		return "", fmt.Sprintf("recipe %s: not found", recipeID)
	}

	// Reuse a previously passing version without recomputation.
	existing, err := p.safe.GetByOriginal(ctx, recipeID, ownerID)
	if err != nil {
		return "", fmt.Sprintf("recipe %s: %v", recipeID, err)
	}
	if existing != nil && existing.ComplianceMetrics.Passed {
		return existing.ID, ""
	}

	domain := quota.SourceDomain(recipe.SourceURL)
	if domain != "" {
		allowed, err := p.ledger.CheckAndReserve(ctx, domain)
		if err != nil {
			return "", fmt.Sprintf("recipe %s: %v", recipeID, err)
		}
		if !allowed {
			return "", fmt.Sprintf("recipe %s: quota exceeded for %s", recipeID, domain)
		}
	}

	graph := p.builder.Build(recipe.Instructions, recipe.Ingredients)

	result, metrics, issue := p.rewriteUntilCompliant(ctx, recipe, graph)
	if issue != "" {
		return "", issue
	}

	now := p.now()
	safe := &types.SafeRecipe{
		ID:                uuid.NewString(),
		OriginalRecipeID:  recipe.ID,
		OwnerID:           ownerID,
		TitleGeneric:      result.TitleGeneric,
		Ingredients:       recipe.Ingredients,
		Servings:          recipe.Servings,
		TotalTimeMinutes:  graph.TotalTimeMinutes,
		MethodRewritten:   result.MethodRewritten,
		Categories:        recipe.Categories,
		AdaptedFromDomain: domain,
		ComplianceMetrics: metrics,
		SourceHash:        sourceHash(recipe.Instructions),
		CreatedAt:         now,
	}

	if err := p.safe.Upsert(ctx, safe); err != nil {
		return "", fmt.Sprintf("recipe %s: %v", recipeID, err)
	}

	if domain != "" {
		if err := p.ledger.Increment(ctx, domain); err != nil {
			// The recipe is already persisted and valid; an undercounted
			// quota only weakens the rate limit.
			log.Printf("quota increment failed for %s: %v", domain, err)
		}
	}

	return safe.ID, ""
}

// rewriteUntilCompliant runs the bounded rewrite loop: at most two attempts,
// the second with the stricter prompt and a forced semantic check.
func (p *Pipeline) rewriteUntilCompliant(ctx context.Context, recipe *types.Recipe, graph types.StepGraph) (*types.RewriteResult, types.ComplianceMetrics, string) {
	attempts := 0
	for attempts < 2 {
		stricter := attempts > 0
		attempts++

		result, err := p.rewriter.Rewrite(ctx, rewriting.Request{
			Graph:         graph,
			Ingredients:   recipe.Ingredients,
			OriginalTitle: recipe.Name,
			Stricter:      stricter,
		})
		if err != nil {
			var unavailable *rewriting.UnavailableError
			if errors.As(err, &unavailable) {
				return nil, types.ComplianceMetrics{}, fmt.Sprintf("recipe %s: rewrite service unavailable", recipe.ID)
			}
			// Malformed upstream output is recovered locally by the one
			// retry; it is never surfaced directly.
			if attempts < 2 {
				continue
			}
			return nil, types.ComplianceMetrics{}, fmt.Sprintf("recipe %s: could not generate compliant version", recipe.ID)
		}

		metrics := p.evaluator.Evaluate(recipe.Instructions, result.MethodRewritten, stricter)
		if metrics.Passed {
			return result, metrics, ""
		}
	}
	return nil, types.ComplianceMetrics{}, fmt.Sprintf("recipe %s: could not generate compliant version", recipe.ID)
}

// RedeemResult describes the outcome of redeeming a share link.
type RedeemResult struct {
	ImportedCount     int                   `json:"imported_count"`
	ImportedSummaries []types.ImportSummary `json:"imported_summaries"`
}

// Redeem atomically consumes a token and copies the shared recipes' facts
// into the requester's library: generic title, ingredients, servings,
// rewritten method and categories only. Never the sender's images, never
// the original prose.
func (p *Pipeline) Redeem(ctx context.Context, token, requesterID string) (*RedeemResult, error) {
	recipes, err := p.tokens.ValidateAndRedeem(ctx, token, requesterID)
	if err != nil {
		return nil, err
	}

	result := &RedeemResult{}
	for _, safe := range recipes {
		imported := &types.Recipe{
			ID:           uuid.NewString(),
			OwnerID:      requesterID,
			Name:         safe.TitleGeneric,
			Servings:     safe.Servings,
			Ingredients:  safe.Ingredients,
			Instructions: safe.MethodRewritten,
			Categories:   safe.Categories,
			CreatedAt:    p.now(),
		}
		if err := p.library.AddImported(ctx, imported); err != nil {
			return nil, fmt.Errorf("failed to import recipe %s: %w", safe.ID, err)
		}
		result.ImportedCount++
		result.ImportedSummaries = append(result.ImportedSummaries, types.ImportSummary{
			RecipeID: imported.ID,
			Title:    imported.Name,
			Servings: imported.Servings,
		})
	}

	log.Printf("share redeemed: %d recipes imported", result.ImportedCount)
	return result, nil
}

// sourceHash is the audit hash over the original instructions. It is never
// used for matching.
func sourceHash(instructions []string) string {
	sum := sha256.Sum256([]byte(strings.Join(instructions, "\n")))
	return hex.EncodeToString(sum[:])
}
