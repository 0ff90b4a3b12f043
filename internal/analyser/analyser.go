// Package analyser inspects a text for AI fingerprints before rewriting.
//
// The analysis drives the rest of the pipeline: detected patterns feed the
// transformer prompt, the topic and tone describe the input, and the
// optional embedding powers similarity retrieval.
package analyser

import (
	"context"

	"github.com/valpere/humantone/internal"
)

// Analyser examines text for AI-generated patterns, topic, tone, and
// sentence structure. Implementations attach an embedding when they are
// configured with an embedder.
type Analyser interface {
	Analyse(ctx context.Context, text string) (*internal.Analysis, error)
}
