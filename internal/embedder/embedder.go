// Package embedder produces vector representations of text for similarity
// search over the human writing corpus.
package embedder

import "context"

// DefaultDimension matches the text-embedding-3-small output size.
const DefaultDimension = 1536

// Embedder turns text into fixed-length vectors. Implementations must return
// vectors of Dimension() length for every input.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the vector length this embedder produces.
	Dimension() int
}
