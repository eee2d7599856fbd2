// Package llm provides the language model capability used for article
// analysis. The client is constrained to structured JSON output with
// deterministic low-temperature decoding.
package llm

import "context"

// Client completes a system/user prompt pair and returns the raw model
// output. Implementations must request a single well-formed JSON object.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userContent string) (string, error)
}
