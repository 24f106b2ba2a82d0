// Package vector provides the embedding codec and similarity helpers.
package vector

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoEmbedding indicates no embedding was persisted for a document.
	// Distinct from a present, zero-length vector.
	ErrNoEmbedding = errors.New("no embedding")

	// ErrCorruptEmbedding indicates the persisted form could not be decoded.
	// Ranking treats affected documents like documents without an embedding.
	ErrCorruptEmbedding = errors.New("corrupt embedding")
)

// Stored is the persisted representation of an embedding vector.
// The zero value means absent (nothing was persisted), which is distinct
// from an encoded zero-length vector.
type Stored struct {
	Raw   string
	Valid bool
}

// Encode serializes vec into its persisted form. Encoding a nil vector yields
// the absent form. Decode(Encode(v)) returns v exactly for any finite vector.
func Encode(vec []float64) (Stored, error) {
	if vec == nil {
		return Stored{}, nil
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return Stored{}, fmt.Errorf("encode embedding: %w", err)
	}
	return Stored{Raw: string(data), Valid: true}, nil
}

// Decode parses the persisted form back into a vector. An absent or empty form
// returns ErrNoEmbedding; malformed data returns ErrCorruptEmbedding.
func Decode(s Stored) ([]float64, error) {
	if !s.Valid || s.Raw == "" {
		return nil, ErrNoEmbedding
	}
	var vec []float64
	if err := json.Unmarshal([]byte(s.Raw), &vec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEmbedding, err)
	}
	if vec == nil {
		// JSON "null" decodes without error but carries no vector.
		return nil, fmt.Errorf("%w: null payload", ErrCorruptEmbedding)
	}
	return vec, nil
}
