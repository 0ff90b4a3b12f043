package transformer

import (
	"strings"
	"testing"

	"github.com/valpere/humantone/internal"
)

func TestBuildPromptNoPatterns(t *testing.T) {
	prompt := BuildPrompt(Request{Text: "some text", Mode: internal.ModeSales}, false)

	if !strings.Contains(prompt, "None detected") {
		t.Errorf("prompt should state that no patterns were detected")
	}
	if !strings.Contains(prompt, "TEXT TO TRANSFORM:\nsome text") {
		t.Errorf("prompt missing the text section:\n%s", prompt)
	}
	if strings.Contains(prompt, "REVIEWER FEEDBACK") {
		t.Errorf("feedback section should be absent on the first iteration")
	}
	if strings.Contains(prompt, "PHRASES TO AVOID") {
		t.Errorf("avoid section should be absent without a lexicon")
	}
}

func TestBuildPromptListsPatterns(t *testing.T) {
	prompt := BuildPrompt(Request{
		Text:     "t",
		Patterns: []string{"formal transitions", "uniform sentence length"},
	}, false)

	if !strings.Contains(prompt, "- formal transitions\n- uniform sentence length") {
		t.Errorf("patterns not listed:\n%s", prompt)
	}
}

func TestBuildPromptCapsExamplesAtThree(t *testing.T) {
	refs := []internal.Reference{
		{Content: "one"}, {Content: "two"}, {Content: "three"}, {Content: "four"},
	}
	prompt := BuildPrompt(Request{Text: "t", Examples: refs}, false)

	if !strings.Contains(prompt, "EXAMPLE 3:\nthree") {
		t.Errorf("third example missing")
	}
	if strings.Contains(prompt, "EXAMPLE 4") || strings.Contains(prompt, "four") {
		t.Errorf("fourth example should be dropped:\n%s", prompt)
	}
}

func TestBuildPromptFeedbackSection(t *testing.T) {
	prompt := BuildPrompt(Request{
		Text:     "t",
		Feedback: []string{"vary sentence openings", "drop the formal tone"},
	}, false)

	idx := strings.Index(prompt, "REVIEWER FEEDBACK")
	if idx == -1 {
		t.Fatalf("feedback section missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- vary sentence openings\n- drop the formal tone") {
		t.Errorf("feedback lines not rendered")
	}
	// Feedback must precede the text so the model reads it before rewriting.
	if textIdx := strings.Index(prompt, "TEXT TO TRANSFORM"); textIdx < idx {
		t.Errorf("feedback section should precede the text section")
	}
}

func TestBuildPromptAvoidPhrases(t *testing.T) {
	prompt := BuildPrompt(Request{
		Text:         "t",
		AvoidPhrases: []string{"delve into", "in today's fast-paced world"},
	}, false)

	if !strings.Contains(prompt, "PHRASES TO AVOID") {
		t.Fatalf("avoid section missing")
	}
	if !strings.Contains(prompt, "- delve into") {
		t.Errorf("lexicon phrase not rendered")
	}
}

func TestBuildPromptGuardHint(t *testing.T) {
	without := BuildPrompt(Request{Text: "t"}, false)
	with := BuildPrompt(Request{Text: "t"}, true)

	if strings.Contains(without, "[PINn]") {
		t.Errorf("marker hint should be absent without guarded spans")
	}
	if !strings.Contains(with, "[PINn]") {
		t.Errorf("marker hint missing with guarded spans")
	}
}

func TestProfileForSelectsByMode(t *testing.T) {
	sales := ProfileFor(internal.ModeSales)
	journalist := ProfileFor(internal.ModeJournalist)

	if sales.Mode != internal.ModeSales || journalist.Mode != internal.ModeJournalist {
		t.Fatalf("profiles mapped to wrong modes")
	}
	if sales.SystemPrompt == journalist.SystemPrompt {
		t.Errorf("modes must carry distinct system prompts")
	}
	if !strings.Contains(sales.SystemPrompt, "sales") {
		t.Errorf("sales prompt does not mention its register")
	}
	if !strings.Contains(journalist.SystemPrompt, "journalis") {
		t.Errorf("journalist prompt does not mention its register")
	}
}

func TestProfileForUnknownModeFallsBackToSales(t *testing.T) {
	p := ProfileFor(internal.Mode("poetry"))
	if p.Mode != internal.ModeSales {
		t.Errorf("Mode = %s, want sales fallback", p.Mode)
	}
}
