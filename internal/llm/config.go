// Package llm provides the LLM client abstraction used by the rewrite
// service. It centralizes model selection so the provider can be swapped
// without touching callers.
package llm

// ModelTier represents the capability level requested for a generation.
type ModelTier string

const (
	// TierStandard is for structured extraction and classification.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for creative rewriting, which needs stronger
	// instruction following.
	TierAdvanced ModelTier = "advanced"
)

// Config holds the model configuration.
type Config struct {
	Models map[ModelTier]string
	// Temperature applied to every generation. Rewrites need some variety,
	// so this is higher than a pure-extraction workload would use.
	Temperature float32
}

// DefaultConfig returns the default Gemini model mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.7,
	}
}

// Model returns the model name for a tier, falling back to the standard
// tier when the requested one is not configured.
func (c *Config) Model(tier ModelTier) string {
	if m, ok := c.Models[tier]; ok {
		return m
	}
	return c.Models[TierStandard]
}
