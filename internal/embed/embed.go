// Package embed provides the text embedding capability used for semantic
// search over link sources.
package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
)

// Embedder turns text into a fixed-size vector. Implementations must be
// safe for concurrent use.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Hash is a deterministic, offline Embedder. Identical texts map to
// identical unit vectors; it carries no semantic meaning and is meant for
// tests and installations without an embedding service.
type Hash struct {
	dims int
}

// NewHash returns a Hash embedder producing vectors of dims components.
func NewHash(dims int) (*Hash, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("embed: dimensions must be positive, got %d", dims)
	}
	return &Hash{dims: dims}, nil
}

// Dimensions returns the vector size.
func (h *Hash) Dimensions() int { return h.dims }

// EmbedText hashes text into a normalized vector.
func (h *Hash) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := fnv.New32a()
	_, _ = f.Write([]byte(text))
	seed := f.Sum32()

	v := make([]float32, h.dims)
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed%1000)/1000.0 - 0.5
	}
	return normalize(v), nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= norm
	}
	return v
}
