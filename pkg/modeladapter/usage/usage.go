// Package usage holds token accounting reported by model APIs.
package usage

// TokenCount holds input and output token counts for a single LLM call.
type TokenCount struct {
	InputTokens  int
	OutputTokens int
}

// Total returns the sum of input and output tokens.
func (tc TokenCount) Total() int {
	return tc.InputTokens + tc.OutputTokens
}

// IsZero reports whether no tokens were recorded.
func (tc TokenCount) IsZero() bool {
	return tc.InputTokens == 0 && tc.OutputTokens == 0
}
