package types

import "time"

// ScopePrivateImportOnly is the only scope a share token may carry.
const ScopePrivateImportOnly = "private-import-only"

// ComplianceMetrics records the numeric outcome of a compliance evaluation.
// Persisted alongside the SafeRecipe it was computed for, for audit.
type ComplianceMetrics struct {
	NgramMaxOverlap   float64 `json:"ngram_max_overlap"`
	SemanticAvg       float64 `json:"semantic_avg"`
	StructureVariance bool    `json:"structure_variance"`
	Passed            bool    `json:"passed"`
}

// SafeRecipe is the sanitized, rewritten, compliance-verified artifact
// eligible for sharing. Upserted keyed by (OriginalRecipeID, OwnerID);
// never mutated after creation except by a fresh share request superseding it.
type SafeRecipe struct {
	ID                string            `json:"id"`
	OriginalRecipeID  string            `json:"original_recipe_id"`
	OwnerID           string            `json:"owner_id"`
	TitleGeneric      string            `json:"title_generic"`
	Ingredients       []IngredientFact  `json:"ingredients"`
	Servings          int               `json:"servings"`
	TotalTimeMinutes  int               `json:"total_time_minutes"`
	MethodRewritten   []string          `json:"method_rewritten"`
	Categories        []string          `json:"categories,omitempty"`
	AdaptedFromDomain string            `json:"adapted_from_domain,omitempty"`
	ComplianceMetrics ComplianceMetrics `json:"compliance_metrics"`
	SourceHash        string            `json:"source_hash"` // SHA-256 of the original instructions, audit only
	CreatedAt         time.Time         `json:"created_at"`
	UserImages        []string          `json:"user_images,omitempty"` // never populated from the sender
}

// ShareToken is a single-use, time-boxed import credential. Terminal states
// are Redeemed (Used=true) and Expired (computed lazily, never stored).
type ShareToken struct {
	Token         string     `json:"token"`
	SafeRecipeIDs []string   `json:"safe_recipe_ids"`
	SenderID      string     `json:"sender_id"`
	Scope         string     `json:"scope"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Used          bool       `json:"used"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	UsedBy        string     `json:"used_by,omitempty"`
}

// DomainQuota tracks per-source-domain usage counters. One record per
// distinct domain, created on first encounter, updated additively.
type DomainQuota struct {
	Domain          string    `json:"domain"`
	DailyCount      int       `json:"daily_count"`
	DailyResetAt    time.Time `json:"daily_reset_at"`
	RollingCount90d int       `json:"rolling_count_90d"`
	LastImportAt    time.Time `json:"last_import_at"`
}

// ImportSummary is the minimal description of one recipe copied into the
// requester's library during redemption.
type ImportSummary struct {
	RecipeID string `json:"recipe_id"`
	Title    string `json:"title"`
	Servings int    `json:"servings"`
}
