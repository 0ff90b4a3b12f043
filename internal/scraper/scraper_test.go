package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const longPara = "This paragraph is comfortably longer than the fifty character noise threshold used by the extractor."

func TestParseArticle(t *testing.T) {
	doc := `<html><head><title>Fallback Title</title></head><body>
	<h1>Council Approves Budget</h1>
	<span rel="author">Jane Doe</span>
	<article>
	<p>` + longPara + `</p>
	<p>Short snippet.</p>
	<p>Another paragraph with plenty of descriptive content that clears the extraction threshold easily.</p>
	</article>
	<p>` + longPara + ` But it sits outside the article and must be ignored.</p>
	</body></html>`

	page, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if page.Title != "Council Approves Budget" {
		t.Errorf("Title = %q", page.Title)
	}
	if page.Author != "Jane Doe" {
		t.Errorf("Author = %q", page.Author)
	}
	paragraphs := strings.Split(page.Content, "\n\n")
	if len(paragraphs) != 2 {
		t.Fatalf("paragraphs = %d, want 2 (short snippet and outside text dropped):\n%s", len(paragraphs), page.Content)
	}
	if paragraphs[0] != longPara {
		t.Errorf("paragraphs[0] = %q", paragraphs[0])
	}
	if page.WordCount != len(strings.Fields(page.Content)) {
		t.Errorf("WordCount = %d", page.WordCount)
	}
}

func TestParseSelectorPriority(t *testing.T) {
	doc := `<html><body>
	<div class="entry-content"><p>` + longPara + ` Entry content variant.</p></div>
	<article><p>` + longPara + ` Article variant, which must win.</p></article>
	</body></html>`

	page, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(page.Content, "Article variant") {
		t.Errorf("article element should outrank class selectors:\n%s", page.Content)
	}
	if strings.Contains(page.Content, "Entry content variant") {
		t.Errorf("lower-priority container should be ignored")
	}
}

func TestParseFallsBackToBody(t *testing.T) {
	doc := `<html><body><p>` + longPara + `</p></body></html>`

	page, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if page.Content != longPara {
		t.Errorf("Content = %q", page.Content)
	}
	if page.Title != "Untitled" {
		t.Errorf("Title = %q, want Untitled without h1 or title", page.Title)
	}
}

func TestParseNoContent(t *testing.T) {
	doc := `<html><body><p>Too short.</p><nav>menu</nav></body></html>`

	if _, err := Parse(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected error when no paragraph clears the threshold")
	}
}

func TestParseAuthorFromClass(t *testing.T) {
	doc := `<html><body><div class="author-byline">By John Smith</div>
	<article><p>` + longPara + `</p></article></body></html>`

	page, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if page.Author != "By John Smith" {
		t.Errorf("Author = %q", page.Author)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("User-Agent = %q, want a browser UA", ua)
		}
		w.Write([]byte(`<html><body><article><p>` + longPara + `</p></article></body></html>`))
	}))
	defer srv.Close()

	page, err := New(5*time.Second).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.URL != srv.URL {
		t.Errorf("URL = %q", page.URL)
	}
	if page.Content != longPara {
		t.Errorf("Content = %q", page.Content)
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := New(0).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error on 404")
	}
}
