// Package embedding turns text into fixed-length vectors for similarity search.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrEmptyInput is returned when asked to embed empty or whitespace-only text.
	ErrEmptyInput = errors.New("input text cannot be empty")
	// ErrNonFinite marks an embedding holding NaN or an infinity. Such vectors cannot be
	// scored or serialized as JSON.
	ErrNonFinite = errors.New("embedding has non-finite components")
)

// Embedder produces vector embeddings for text.
// Implementations fail with ErrEmptyInput when the text has no non-whitespace content.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// ValidateInput returns ErrEmptyInput if text is empty after trimming whitespace.
func ValidateInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	return nil
}

// ValidateVector returns ErrNonFinite if any component of v is NaN or infinite.
func ValidateVector(v []float32) error {
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: index %d is %v", ErrNonFinite, i, x)
		}
	}
	return nil
}

// embedEach calls e.Embed for each text in order, stopping at the first error.
func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// NormalizeL2Slice normalizes the slice in place to unit L2 norm.
func NormalizeL2Slice(x []float32) {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(sum))
	for i := range x {
		x[i] *= norm
	}
}
