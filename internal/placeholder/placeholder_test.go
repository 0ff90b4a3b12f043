package placeholder_test

import (
	"strings"
	"testing"

	"github.com/valpere/humantone/internal/placeholder"
)

func TestProtectPlainText(t *testing.T) {
	text := "Nothing here needs masking."
	got, g := placeholder.Protect(text)
	if got != text {
		t.Errorf("expected unchanged text, got %q", got)
	}
	if g.Count() != 0 {
		t.Errorf("expected 0 masked literals, got %d", g.Count())
	}
}

func TestProtectURL(t *testing.T) {
	got, g := placeholder.Protect("Visit https://example.com/pricing?ref=a today.")

	if g.Count() != 1 {
		t.Fatalf("expected 1 masked literal, got %d", g.Count())
	}
	if strings.Contains(got, "https://") {
		t.Errorf("URL still present in %q", got)
	}
	if !strings.Contains(got, "[PIN0]") {
		t.Errorf("expected [PIN0] in %q", got)
	}
}

func TestProtectURLKeepsSentencePunctuation(t *testing.T) {
	got, g := placeholder.Protect("Read https://news.example.com/story-42.")

	if g.Count() != 1 {
		t.Fatalf("expected 1 masked literal, got %d", g.Count())
	}
	if !strings.Contains(got, "[PIN0].") {
		t.Errorf("trailing period should stay outside the mask, got %q", got)
	}
	if g.Restore(got) != "Read https://news.example.com/story-42." {
		t.Errorf("round-trip failed: %q", g.Restore(got))
	}
}

func TestProtectEmail(t *testing.T) {
	got, g := placeholder.Protect("Write to sales@example.co.uk for a quote.")

	if g.Count() != 1 {
		t.Fatalf("expected 1 masked literal, got %d", g.Count())
	}
	if strings.Contains(got, "sales@example.co.uk") {
		t.Errorf("email still present in %q", got)
	}
}

func TestProtectFencedCode(t *testing.T) {
	text := "Before\n```go\nfmt.Println(\"hi\")\n```\nAfter"
	got, g := placeholder.Protect(text)

	if g.Count() != 1 {
		t.Fatalf("expected 1 masked literal, got %d", g.Count())
	}
	if strings.Contains(got, "```") {
		t.Errorf("fenced block still present in %q", got)
	}
}

func TestProtectURLInsideCodeSpanMaskedOnce(t *testing.T) {
	_, g := placeholder.Protect("Run `curl https://api.example.com/v1` now")

	if g.Count() != 1 {
		t.Fatalf("expected the code span to absorb the URL, got %d literals", g.Count())
	}
}

func TestProtectMixed(t *testing.T) {
	text := "Use `go run .`, see https://example.com or mail dev@example.com"
	got, g := placeholder.Protect(text)

	if g.Count() != 3 {
		t.Fatalf("expected 3 masked literals, got %d", g.Count())
	}
	restored := g.Restore(got)
	if restored != text {
		t.Errorf("round-trip failed:\n  original: %q\n  restored: %q", text, restored)
	}
}

func TestRestoreOutOfRangeIndexIgnored(t *testing.T) {
	_, g := placeholder.Protect("see https://example.com")
	restored := g.Restore("[PIN99] some text")
	if !strings.Contains(restored, "[PIN99]") {
		t.Errorf("expected [PIN99] to remain, got %q", restored)
	}
}

func TestMissingMarkers(t *testing.T) {
	masked, g := placeholder.Protect("https://a.example.com and https://b.example.com")

	withoutFirst := strings.Replace(masked, "[PIN0]", "", 1)
	missing := g.Missing(withoutFirst)

	if len(missing) != 1 || missing[0] != 0 {
		t.Errorf("expected missing [0], got %v", missing)
	}
	if got := g.Missing(masked); len(got) != 0 {
		t.Errorf("expected no missing markers, got %v", got)
	}
}

func TestInstructionHintMentionsMarkerFormat(t *testing.T) {
	if !strings.Contains(placeholder.InstructionHint(), "[PINn]") {
		t.Errorf("hint should name the marker format: %q", placeholder.InstructionHint())
	}
}
