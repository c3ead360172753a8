package rewriting

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/jonathan/recipe-share/internal/llm"
	"github.com/jonathan/recipe-share/internal/schemas"
	"github.com/jonathan/recipe-share/internal/types"
)

//go:embed rewrite_result.schema.json
var rewriteResultSchema []byte

// ParseResponse turns raw model output into a RewriteResult. Parsing is
// two-stage: a strict pass (fence stripping + schema validation) followed by
// a lenient pass that extracts the outermost brace-delimited object. Only
// when both fail does it report a MalformedResponseError.
func ParseResponse(raw string) (*types.RewriteResult, error) {
	result, strictErr := parseStrict(raw)
	if strictErr == nil {
		return result, nil
	}

	result, lenientErr := parseLenient(raw)
	if lenientErr == nil {
		return result, nil
	}

	return nil, &MalformedResponseError{
		Message: "response is not a rewrite result JSON object",
		Cause:   strictErr,
	}
}

// parseStrict strips markdown fences, validates the document against the
// embedded schema, and unmarshals it.
func parseStrict(raw string) (*types.RewriteResult, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &MalformedResponseError{Message: "empty response"}
	}

	if err := schemas.ValidateBytes(rewriteResultSchema, []byte(cleaned)); err != nil {
		return nil, err
	}

	var result types.RewriteResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, err
	}
	return postProcess(&result)
}

// parseLenient extracts the outermost {...} span and attempts a plain
// unmarshal without schema validation. Models sometimes prepend or append
// commentary around an otherwise valid object.
func parseLenient(raw string) (*types.RewriteResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, &MalformedResponseError{Message: "no JSON object found in response"}
	}

	var result types.RewriteResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return nil, err
	}
	return postProcess(&result)
}

// postProcess trims whitespace and drops empty steps; an empty method after
// trimming is malformed.
func postProcess(result *types.RewriteResult) (*types.RewriteResult, error) {
	result.TitleGeneric = strings.TrimSpace(result.TitleGeneric)

	steps := make([]string, 0, len(result.MethodRewritten))
	for _, step := range result.MethodRewritten {
		if s := strings.TrimSpace(step); s != "" {
			steps = append(steps, s)
		}
	}
	result.MethodRewritten = steps
	result.Notes = strings.TrimSpace(result.Notes)

	if result.TitleGeneric == "" || len(result.MethodRewritten) == 0 {
		return nil, &MalformedResponseError{Message: "rewrite result missing title or method"}
	}
	return result, nil
}
