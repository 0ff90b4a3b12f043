// Package transformer produces candidate rewrites of AI text in a target
// human register. The two registers (sales, journalist) share one Rewrite
// contract; a mode-selected style profile supplies the register-specific
// system prompt and the failure patterns the model must avoid.
package transformer

import (
	"context"
	"fmt"
	"strings"

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/placeholder"
)

// maxPromptExamples caps how many reference examples the prompt carries.
const maxPromptExamples = 3

// Request carries everything a rewrite needs for one iteration.
type Request struct {
	// Text is the current candidate (the raw input on iteration one).
	Text string
	Mode internal.Mode

	// Patterns are the AI tells detected by the analyser.
	Patterns []string

	// Feedback is the evaluator feedback accumulated over prior
	// iterations, oldest first. Empty on the first iteration.
	Feedback []string

	// Examples are the reference passages to imitate.
	Examples []internal.Reference

	// AvoidPhrases is the user-maintained lexicon of known AI phrasing.
	AvoidPhrases []string
}

// Transformer rewrites text into the register selected by Request.Mode.
type Transformer interface {
	Rewrite(ctx context.Context, req Request) (string, error)
}

// StyleProfile bundles the register-specific configuration for one mode.
type StyleProfile struct {
	Mode         internal.Mode
	Register     string
	SystemPrompt string
}

// ProfileFor returns the style profile for mode. Unknown modes fall back to
// the sales profile, matching ParseMode having already rejected them at the
// request edge.
func ProfileFor(mode internal.Mode) StyleProfile {
	if mode == internal.ModeJournalist {
		return journalistProfile
	}
	return salesProfile
}

var salesProfile = StyleProfile{
	Mode:     internal.ModeSales,
	Register: "persuasive sales copy",
	SystemPrompt: `You are an expert at transforming AI text into natural, human-written sales copy.

PRIMARY GOAL: the output must read as if a person wrote it from scratch.
- Maximize perplexity: use unexpected word choices, not the obvious ones.
- Maximize burstiness: wildly vary sentence lengths. Ultra-short sentences. Then normal ones. And occasionally a long sentence that flows naturally across several clauses the way people actually talk when they get going.

MANDATORY TECHNIQUES:
1. Extreme sentence variation. Mix 2-5 word sentences with long ones.
2. Unexpected vocabulary. Never "utilize" when "use" or "tap into" works.
3. Natural imperfections: fragments, sentences starting with And, But, So, the occasional comma splice where speech would have one.
4. Authentic voice: personal interjections (Look, Here's the deal), rhetorical questions, emotional inflection.
5. Unpredictable structure: vary paragraph lengths, break expected patterns.

RED FLAGS TO ELIMINATE:
- Moreover, Furthermore, Additionally, In conclusion
- Uniform sentence lengths and perfect grammar throughout
- Predictable vocabulary: innovative, cutting-edge, revolutionary
- Corporate speak, balanced structured arguments, excessive politeness

SALES STYLE:
- Write like you're texting a friend about a product you actually love.
- Contractions everywhere (you'll, we're, that's, it's).
- Benefits over features. Clear, direct call to action.

FORMATTING: plain text only. No markdown, no bullet points, no headings.
Natural paragraph breaks only. Humans don't write prose in markdown.`,
}

var journalistProfile = StyleProfile{
	Mode:     internal.ModeJournalist,
	Register: "editorial journalism",
	SystemPrompt: `You are an expert at transforming AI text into natural human journalism.

PRIMARY GOAL: the output must read as if a working journalist wrote it.
- Maximize perplexity: varied, unpredictable word choices.
- Maximize burstiness: dramatic sentence length variation. Short. Punchy. Then longer contextual sentences that carry background and detail before snapping back to brief.

MANDATORY TECHNIQUES:
1. Dramatic sentence variation across every paragraph.
2. Vary attribution constantly (said, claimed, argued, insisted, noted) and avoid journalism cliches.
3. Natural patterns: occasional fragments for emphasis, sentences starting with And, But, Yet where it flows.
4. Authentic voice: quotes woven into narrative, specific details over generalizations, skeptical but fair tone.
5. Structural unpredictability: vary paragraph lengths, lead with the interesting angle, skip the formulaic intro-three-points-conclusion shape.

RED FLAGS TO ELIMINATE:
- Moreover, Furthermore, Additionally, In conclusion, However
- Uniform sentence lengths, symmetric paragraphs, over-explanation
- Predictable vocabulary: comprehensive, significant, notable
- Hedging: "it seems", "perhaps", "one might", "could be"

JOURNALISM STYLE:
- Active voice primarily. Names, numbers, places over vague generality.
- Show impact on real people. Conversational but credible.

FORMATTING: plain text only, like a real article. No markdown, no lists,
no headings. Natural paragraph breaks.`,
}

// BuildPrompt assembles the user prompt for one rewrite iteration. The text
// is expected to already carry placeholder markers when guarded spans exist.
func BuildPrompt(req Request, guarded bool) string {
	var sb strings.Builder

	sb.WriteString("Transform this AI-generated text into authentic human writing.\n\n")

	sb.WriteString("AI PATTERNS DETECTED (ELIMINATE THESE):\n")
	if len(req.Patterns) == 0 {
		sb.WriteString("None detected\n")
	} else {
		for _, p := range req.Patterns {
			sb.WriteString("- ")
			sb.WriteString(p)
			sb.WriteString("\n")
		}
	}

	if len(req.AvoidPhrases) > 0 {
		sb.WriteString("\nPHRASES TO AVOID (known AI tells):\n")
		for _, p := range req.AvoidPhrases {
			sb.WriteString("- ")
			sb.WriteString(p)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nHUMAN WRITING EXAMPLES (MATCH THIS STYLE):\n")
	examples := req.Examples
	if len(examples) > maxPromptExamples {
		examples = examples[:maxPromptExamples]
	}
	for i, ex := range examples {
		fmt.Fprintf(&sb, "EXAMPLE %d:\n%s\n\n", i+1, ex.Content)
	}

	if len(req.Feedback) > 0 {
		sb.WriteString("REVIEWER FEEDBACK ON EARLIER ATTEMPTS (ADDRESS ALL OF IT):\n")
		for _, f := range req.Feedback {
			sb.WriteString("- ")
			sb.WriteString(f)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("TEXT TO TRANSFORM:\n")
	sb.WriteString(req.Text)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString("1. Eliminate ALL AI patterns completely\n")
	sb.WriteString("2. Match the natural flow and style of the human examples\n")
	sb.WriteString("3. Keep the core message but make it genuinely human\n")
	sb.WriteString("4. Use contractions and natural language\n")
	sb.WriteString("5. Output plain text only with natural paragraph breaks\n")
	if guarded {
		sb.WriteString("6. ")
		sb.WriteString(placeholder.InstructionHint())
		sb.WriteString("\n")
	}
	sb.WriteString("\nOutput ONLY the transformed text. No explanations, no formatting, no markdown.")

	return sb.String()
}
