package retriever

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/valpere/humantone/internal"
)

type fakeSource struct {
	similarFn    func(ctx context.Context, embedding []float32, contentType string, limit int) ([]internal.Reference, error)
	byTypeFn     func(ctx context.Context, contentType string, limit int) ([]internal.Reference, error)
	similarCalls atomic.Int32
	byTypeCalls  atomic.Int32
}

func (f *fakeSource) SimilarContent(ctx context.Context, embedding []float32, contentType string, limit int) ([]internal.Reference, error) {
	f.similarCalls.Add(1)
	if f.similarFn == nil {
		return nil, nil
	}
	return f.similarFn(ctx, embedding, contentType, limit)
}

func (f *fakeSource) ContentByType(ctx context.Context, contentType string, limit int) ([]internal.Reference, error) {
	f.byTypeCalls.Add(1)
	if f.byTypeFn == nil {
		return nil, nil
	}
	return f.byTypeFn(ctx, contentType, limit)
}

func TestRetrieveSimilarityTier(t *testing.T) {
	src := &fakeSource{
		similarFn: func(_ context.Context, _ []float32, contentType string, limit int) ([]internal.Reference, error) {
			if contentType != "sales" {
				t.Errorf("contentType = %q, want sales", contentType)
			}
			if limit != DefaultLimit {
				t.Errorf("limit = %d, want %d", limit, DefaultLimit)
			}
			return []internal.Reference{
				{Content: "first", Similarity: 0.9},
				{Content: "second", Similarity: 0.7},
			}, nil
		},
	}

	r := New(src, 0)
	analysis := internal.Analysis{Embedding: []float32{0.1, 0.2}}

	refs := r.Retrieve(context.Background(), analysis, internal.ModeSales)
	if len(refs) != 2 {
		t.Fatalf("len = %d, want 2", len(refs))
	}
	if refs[0].Content != "first" {
		t.Errorf("refs[0] = %q", refs[0].Content)
	}
	if src.byTypeCalls.Load() != 0 {
		t.Errorf("type lookup should not run when similarity succeeds")
	}
}

func TestRetrieveSkipsSimilarityWithoutEmbedding(t *testing.T) {
	src := &fakeSource{
		byTypeFn: func(_ context.Context, contentType string, _ int) ([]internal.Reference, error) {
			return []internal.Reference{{Content: "typed", ContentType: contentType}}, nil
		},
	}

	r := New(src, 0)
	refs := r.Retrieve(context.Background(), internal.Analysis{}, internal.ModeJournalist)

	if src.similarCalls.Load() != 0 {
		t.Errorf("similarity search should not run without an embedding")
	}
	if len(refs) != 1 || refs[0].Content != "typed" {
		t.Errorf("refs = %+v", refs)
	}
}

func TestRetrieveFallsThroughOnStoreErrors(t *testing.T) {
	src := &fakeSource{
		similarFn: func(context.Context, []float32, string, int) ([]internal.Reference, error) {
			return nil, errors.New("index corrupt")
		},
		byTypeFn: func(context.Context, string, int) ([]internal.Reference, error) {
			return nil, errors.New("table locked")
		},
	}

	r := New(src, 0)
	analysis := internal.Analysis{Embedding: []float32{0.3}}

	refs := r.Retrieve(context.Background(), analysis, internal.ModeJournalist)
	if len(refs) != 1 {
		t.Fatalf("len = %d, want 1 canned reference", len(refs))
	}
	if refs[0].Source != "Mock Local News" {
		t.Errorf("Source = %q, want canned journalist example", refs[0].Source)
	}
	if src.similarCalls.Load() != 1 || src.byTypeCalls.Load() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", src.similarCalls.Load(), src.byTypeCalls.Load())
	}
}

func TestRetrieveEmptyTiersFallToCanned(t *testing.T) {
	src := &fakeSource{}

	r := New(src, 0)
	refs := r.Retrieve(context.Background(), internal.Analysis{Embedding: []float32{1}}, internal.ModeSales)

	if len(refs) != 1 {
		t.Fatalf("len = %d, want 1", len(refs))
	}
	if refs[0].Source != "Mock Sales Copy" {
		t.Errorf("Source = %q", refs[0].Source)
	}
	if !strings.HasPrefix(refs[0].Content, "You're going to love this.") {
		t.Errorf("Content = %q", refs[0].Content)
	}
}

func TestRetrieveWithoutStore(t *testing.T) {
	r := New(nil, 0)

	for _, mode := range []internal.Mode{internal.ModeSales, internal.ModeJournalist} {
		refs := r.Retrieve(context.Background(), internal.Analysis{}, mode)
		if len(refs) != 1 {
			t.Fatalf("mode %s: len = %d, want 1", mode, len(refs))
		}
		if refs[0].ContentType != mode.String() {
			t.Errorf("mode %s: ContentType = %q", mode, refs[0].ContentType)
		}
		if refs[0].Content == "" {
			t.Errorf("mode %s: empty canned content", mode)
		}
	}
}

func TestRetrieveCustomLimit(t *testing.T) {
	src := &fakeSource{
		byTypeFn: func(_ context.Context, _ string, limit int) ([]internal.Reference, error) {
			if limit != 2 {
				t.Errorf("limit = %d, want 2", limit)
			}
			return []internal.Reference{{Content: "a"}, {Content: "b"}}, nil
		},
	}

	r := New(src, 2)
	refs := r.Retrieve(context.Background(), internal.Analysis{}, internal.ModeSales)
	if len(refs) != 2 {
		t.Errorf("len = %d, want 2", len(refs))
	}
}
