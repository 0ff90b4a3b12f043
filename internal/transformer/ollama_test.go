package transformer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/valpere/humantone/internal"
)

func TestOllamaRewrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Stream {
			t.Errorf("stream should be false")
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if !strings.Contains(req.System, "journalis") {
			t.Errorf("system prompt is not the journalist profile")
		}
		if !strings.Contains(req.Prompt, "The council approved the plan.") {
			t.Errorf("prompt missing text:\n%s", req.Prompt)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "The council said yes. Finally."})
	}))
	defer srv.Close()

	tr := NewOllamaTransformer("test-model", srv.URL)
	out, err := tr.Rewrite(context.Background(), Request{
		Text: "The council approved the plan.",
		Mode: internal.ModeJournalist,
	})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if out != "The council said yes. Finally." {
		t.Errorf("out = %q", out)
	}
}

func TestOllamaRewriteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	tr := NewOllamaTransformer("missing", srv.URL)
	if _, err := tr.Rewrite(context.Background(), Request{Text: "t"}); err == nil {
		t.Fatalf("expected error on 404")
	}
}

func TestOllamaRewriteEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "   "})
	}))
	defer srv.Close()

	tr := NewOllamaTransformer("m", srv.URL)
	if _, err := tr.Rewrite(context.Background(), Request{Text: "t"}); err == nil {
		t.Fatalf("expected error on blank rewrite")
	}
}

func TestOllamaDefaults(t *testing.T) {
	tr := NewOllamaTransformer("", "")
	if tr.model == "" || tr.baseURL == "" {
		t.Errorf("defaults not applied: model=%q baseURL=%q", tr.model, tr.baseURL)
	}
}
