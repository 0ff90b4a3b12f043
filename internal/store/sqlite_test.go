package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/humantone/internal"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_New_InvalidPath(t *testing.T) {
	_, err := NewSQLite("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestSQLite_ContentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	salesID, err := s.SaveContent(ctx, ContentItem{
		Content:     "  Grab yours before they're gone.  ",
		Source:      "flyer.txt",
		ContentType: "sales",
		Topic:       "promotion",
		CreatedAt:   t0,
	})
	if err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	if salesID == "" {
		t.Fatal("expected generated ID")
	}

	if _, err := s.SaveContent(ctx, ContentItem{
		Content:     "Council members met on Tuesday.",
		Source:      "gazette.txt",
		ContentType: "journalist",
		CreatedAt:   t0.Add(time.Hour),
	}); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}

	all, err := s.ListContent(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].ContentType != "journalist" {
		t.Errorf("newest first: got %q", all[0].ContentType)
	}
	if all[1].Content != "Grab yours before they're gone." {
		t.Errorf("content not normalized: %q", all[1].Content)
	}

	sales, err := s.ListContent(ctx, "sales", 0)
	if err != nil {
		t.Fatalf("ListContent(sales): %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("len = %d, want 1", len(sales))
	}

	if err := s.DeleteContent(ctx, salesID); err != nil {
		t.Fatalf("DeleteContent: %v", err)
	}
	remaining, err := s.ListContent(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("len after delete = %d, want 1", len(remaining))
	}

	n, err := s.ClearContent(ctx, "")
	if err != nil {
		t.Fatalf("ClearContent: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared = %d, want 1", n)
	}
}

func TestSQLite_SimilarContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []ContentItem{
		{Content: "exact match", ContentType: "sales", Source: "a", Embedding: []float32{1, 0}},
		{Content: "close match", ContentType: "sales", Source: "b", Embedding: []float32{0.8, 0.2}},
		{Content: "far away", ContentType: "sales", Source: "c", Embedding: []float32{0, 1}},
		{Content: "wrong type", ContentType: "journalist", Source: "d", Embedding: []float32{1, 0}},
		{Content: "no vector", ContentType: "sales", Source: "e"},
	}
	for _, item := range seed {
		if _, err := s.SaveContent(ctx, item); err != nil {
			t.Fatalf("SaveContent(%s): %v", item.Content, err)
		}
	}

	refs, err := s.SimilarContent(ctx, []float32{1, 0}, "sales", 2)
	if err != nil {
		t.Fatalf("SimilarContent: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("len = %d, want 2", len(refs))
	}
	if refs[0].Content != "exact match" {
		t.Errorf("top match = %q, want %q", refs[0].Content, "exact match")
	}
	if refs[0].Similarity < 0.99 {
		t.Errorf("top similarity = %v, want ~1", refs[0].Similarity)
	}
	if refs[0].Similarity < refs[1].Similarity {
		t.Errorf("results not sorted by similarity: %v", refs)
	}
}

func TestSQLite_ContentByType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, content := range []string{"older passage", "newer passage"} {
		if _, err := s.SaveContent(ctx, ContentItem{
			Content:     content,
			Source:      "seed",
			ContentType: "journalist",
			CreatedAt:   t0.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("SaveContent: %v", err)
		}
	}

	refs, err := s.ContentByType(ctx, "journalist", 5)
	if err != nil {
		t.Fatalf("ContentByType: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("len = %d, want 2", len(refs))
	}
	if refs[0].Content != "newer passage" {
		t.Errorf("newest first: got %q", refs[0].Content)
	}

	one, err := s.ContentByType(ctx, "journalist", 1)
	if err != nil {
		t.Fatalf("ContentByType: %v", err)
	}
	if len(one) != 1 {
		t.Errorf("len with limit 1 = %d", len(one))
	}
}

func TestSQLite_Phrases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddPhrase(ctx, "delve into", "verbs"); err != nil {
		t.Fatalf("AddPhrase: %v", err)
	}
	// Duplicate insert is a no-op.
	if err := s.AddPhrase(ctx, "delve into", "verbs"); err != nil {
		t.Fatalf("AddPhrase duplicate: %v", err)
	}
	if err := s.AddPhrase(ctx, "rich tapestry", "metaphors"); err != nil {
		t.Fatalf("AddPhrase: %v", err)
	}

	if err := s.AddPhrase(ctx, "   ", "verbs"); err == nil {
		t.Error("expected error for blank phrase")
	}

	all, err := s.ListPhrases(ctx, "")
	if err != nil {
		t.Fatalf("ListPhrases: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}

	verbs, err := s.ListPhrases(ctx, "verbs")
	if err != nil {
		t.Fatalf("ListPhrases(verbs): %v", err)
	}
	if len(verbs) != 1 || verbs[0].Phrase != "delve into" {
		t.Errorf("verbs = %+v", verbs)
	}

	if err := s.DeletePhrase(ctx, verbs[0].ID); err != nil {
		t.Fatalf("DeletePhrase: %v", err)
	}
	left, err := s.ListPhrases(ctx, "")
	if err != nil {
		t.Fatalf("ListPhrases: %v", err)
	}
	if len(left) != 1 {
		t.Errorf("len after delete = %d, want 1", len(left))
	}
}

func TestSQLite_RunHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := s.SaveRun(ctx, internal.RunRecord{
		Mode: "sales", InputChars: 120, OutputChars: 110,
		QualityScore: 0.68, Iterations: 3, ProcessingMS: 2400, CreatedAt: t0,
	}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := s.SaveRun(ctx, internal.RunRecord{
		Mode: "journalist", InputChars: 300, OutputChars: 290,
		QualityScore: 0.81, Iterations: 1, ProcessingMS: 900, CreatedAt: t0.Add(time.Minute),
	}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if runs[0].Mode != "journalist" {
		t.Errorf("newest first: got %q", runs[0].Mode)
	}
	if runs[0].QualityScore != 0.81 {
		t.Errorf("QualityScore = %v, want 0.81", runs[0].QualityScore)
	}

	one, err := s.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns(1): %v", err)
	}
	if len(one) != 1 {
		t.Errorf("len with limit 1 = %d", len(one))
	}

	n, err := s.ClearRuns(ctx)
	if err != nil {
		t.Fatalf("ClearRuns: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared = %d, want 2", n)
	}
}

func TestSQLite_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveContent(ctx, ContentItem{Content: "a sales passage", Source: "x", ContentType: "sales"}); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	if _, err := s.SaveContent(ctx, ContentItem{Content: "a news passage", Source: "y", ContentType: "journalist"}); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	if err := s.AddPhrase(ctx, "in today's fast-paced world", "openers"); err != nil {
		t.Fatalf("AddPhrase: %v", err)
	}
	if err := s.SaveRun(ctx, internal.RunRecord{Mode: "sales"}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalContent != 2 {
		t.Errorf("TotalContent = %d, want 2", stats.TotalContent)
	}
	if stats.ByType["sales"] != 1 || stats.ByType["journalist"] != 1 {
		t.Errorf("ByType = %v", stats.ByType)
	}
	if stats.TotalPhrases != 1 {
		t.Errorf("TotalPhrases = %d, want 1", stats.TotalPhrases)
	}
	if stats.TotalRuns != 1 {
		t.Errorf("TotalRuns = %d, want 1", stats.TotalRuns)
	}
}
