// Package answer provides clients that generate an answer from a query and context.
package answer

import "context"

// Provider maps a user query plus an assembled document context to generated
// answer text. Implementations wrap blocking network calls and honor the
// caller's context deadline.
type Provider interface {
	Generate(ctx context.Context, query, docContext string) (string, error)
	ModelName() string
}
