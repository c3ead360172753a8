// Package rewriting calls the LLM to produce demonstrably original cooking
// instructions from a recipe's structured facts. The model only ever sees
// the step graph and ingredient facts, never the original prose.
package rewriting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/recipe-share/internal/llm"
	"github.com/jonathan/recipe-share/internal/prompts"
	"github.com/jonathan/recipe-share/internal/types"
)

// Request carries the structured facts a rewrite is generated from.
type Request struct {
	Graph         types.StepGraph
	Ingredients   []types.IngredientFact
	OriginalTitle string
	// Stricter selects the more aggressive prompt variant. The pipeline sets
	// it on the single retry after a failed compliance evaluation.
	Stricter bool
}

// Service generates rewritten instructions from recipe facts.
type Service interface {
	Rewrite(ctx context.Context, req Request) (*types.RewriteResult, error)
}

// GeminiService implements Service on top of the llm client abstraction.
type GeminiService struct {
	client  llm.Client
	timeout time.Duration
}

// NewGeminiService wraps an LLM client. A nil client produces a service that
// reports UnavailableError on every call, which lets the pipeline run in
// environments without credentials.
func NewGeminiService(client llm.Client, timeout time.Duration) *GeminiService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiService{client: client, timeout: timeout}
}

// Rewrite generates a rewrite of the recipe method. The upstream call runs
// under a timeout; a timeout is reported as UnavailableError, not a crash.
func (s *GeminiService) Rewrite(ctx context.Context, req Request) (*types.RewriteResult, error) {
	if s.client == nil {
		return nil, &UnavailableError{Message: "no LLM client configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := buildRewritePrompt(req)
	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &UnavailableError{Message: "generation failed", Cause: err}
	}

	return ParseResponse(raw)
}

// buildRewritePrompt renders the prompt template from the request facts.
func buildRewritePrompt(req Request) string {
	key := "rewrite-method"
	if req.Stricter {
		key = "rewrite-method-strict"
	}
	template := prompts.MustGet("rewriting.json", key)

	return prompts.Format(template, map[string]string{
		"Title":       req.OriginalTitle,
		"Ingredients": formatIngredients(req.Ingredients),
		"Steps":       formatSteps(req.Graph),
	})
}

func formatIngredients(ingredients []types.IngredientFact) string {
	if len(ingredients) == 0 {
		return "(none listed)"
	}
	parts := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		part := strings.TrimSpace(fmt.Sprintf("%s %s %s", ing.Quantity, ing.Unit, ing.Name))
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

func formatSteps(graph types.StepGraph) string {
	var sb strings.Builder
	for _, step := range graph.Steps {
		sb.WriteString(fmt.Sprintf("%d. action=%s", step.Order, step.Action))
		if step.TimeMinutes > 0 {
			sb.WriteString(fmt.Sprintf(", time=%d min", step.TimeMinutes))
		}
		if step.Temperature != nil {
			sb.WriteString(fmt.Sprintf(", temperature=%d%s", step.Temperature.Value, step.Temperature.Unit))
		}
		if len(step.IngredientRefs) > 0 {
			sb.WriteString(", uses: " + strings.Join(step.IngredientRefs, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
