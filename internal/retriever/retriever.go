// Package retriever selects human writing examples for a rewrite.
//
// Retrieval degrades through three tiers and always produces at least one
// reference: vector similarity search when the analysis carries an
// embedding, then a plain lookup by content type, then a built-in example
// for the mode. Store faults never surface; a failing tier simply falls
// through to the next one.
package retriever

import (
	"context"

	"github.com/valpere/humantone/internal"
)

// DefaultLimit bounds how many references a rewrite receives.
const DefaultLimit = 5

// ContentSource is the slice of the store the retriever depends on.
type ContentSource interface {
	SimilarContent(ctx context.Context, embedding []float32, contentType string, limit int) ([]internal.Reference, error)
	ContentByType(ctx context.Context, contentType string, limit int) ([]internal.Reference, error)
}

type Retriever struct {
	source ContentSource
	limit  int
}

// New builds a retriever over source. A nil source is allowed and skips
// straight to the built-in examples. A limit of zero or less selects
// DefaultLimit.
func New(source ContentSource, limit int) *Retriever {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Retriever{source: source, limit: limit}
}

// Retrieve returns reference examples for the mode, best tier first.
func (r *Retriever) Retrieve(ctx context.Context, analysis internal.Analysis, mode internal.Mode) []internal.Reference {
	if r.source != nil {
		if len(analysis.Embedding) > 0 {
			refs, err := r.source.SimilarContent(ctx, analysis.Embedding, mode.String(), r.limit)
			if err == nil && len(refs) > 0 {
				return refs
			}
		}

		refs, err := r.source.ContentByType(ctx, mode.String(), r.limit)
		if err == nil && len(refs) > 0 {
			return refs
		}
	}

	return []internal.Reference{cannedReference(mode)}
}

const journalistExample = "Local residents gathered today to protest the proposed development. " +
	"The crowd, numbering around 200, voiced concerns about increased traffic and environmental impact. " +
	"'We're not against progress,' said Sarah Mitchell, a local teacher. 'But this feels rushed.' " +
	"Council representatives promised to review the feedback before next month's decision."

const salesExample = "You're going to love this. We've slashed prices by 40% and thrown in free delivery. " +
	"No catches, no hidden fees. Just brilliant value that'll make you smile. " +
	"Grab yours before they're gone – this deal won't last forever."

// cannedReference is the last-resort example shipped with the binary so a
// rewrite always has something human to imitate.
func cannedReference(mode internal.Mode) internal.Reference {
	switch mode {
	case internal.ModeJournalist:
		return internal.Reference{
			Content:     journalistExample,
			Source:      "Mock Local News",
			ContentType: string(internal.ModeJournalist),
			Topic:       "local_news",
		}
	default:
		return internal.Reference{
			Content:     salesExample,
			Source:      "Mock Sales Copy",
			ContentType: string(internal.ModeSales),
			Topic:       "promotion",
		}
	}
}
