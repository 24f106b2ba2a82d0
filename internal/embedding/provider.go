// Package embedding provides clients that turn text into fixed-dimension vectors.
package embedding

import "context"

// Provider maps text to a fixed-dimension embedding vector. Implementations
// wrap blocking network calls and honor the caller's context deadline.
type Provider interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// Dimensions returns the vector dimensionality fixed by the configured model.
	Dimensions() int
	// ModelName identifies the model producing the vectors. Vectors from
	// different models must never be compared.
	ModelName() string
}
