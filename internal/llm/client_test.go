package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_BareFence(t *testing.T) {
	input := "```\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_LanguageIdentifier(t *testing.T) {
	input := "```javascript\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_NoFence(t *testing.T) {
	input := `{"key": "value"}`
	assert.Equal(t, input, CleanJSONBlock(input))
}

func TestCleanJSONBlock_WhitespaceTrimmed(t *testing.T) {
	input := "  \n{\"key\": \"value\"}\n  "
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_Empty(t *testing.T) {
	assert.Equal(t, "", CleanJSONBlock(""))
	assert.Equal(t, "", CleanJSONBlock("   "))
}

func TestConfig_ModelFallback(t *testing.T) {
	cfg := DefaultConfig()
	assert.NotEmpty(t, cfg.Model(TierStandard))
	assert.NotEmpty(t, cfg.Model(TierAdvanced))
	assert.NotEqual(t, cfg.Model(TierStandard), cfg.Model(TierAdvanced))
	assert.Equal(t, cfg.Model(TierStandard), cfg.Model(ModelTier("unknown")))
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	assert.Error(t, err)
}
