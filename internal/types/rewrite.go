package types

// RewriteResult is the output of the rewrite service. It is consumed
// immediately by the compliance evaluator and never persisted directly.
type RewriteResult struct {
	TitleGeneric    string   `json:"title_generic"`
	MethodRewritten []string `json:"method_rewritten"`
	Notes           string   `json:"notes,omitempty"`
}
