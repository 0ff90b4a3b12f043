// Package placeholder shields literal content that a rewrite must not touch
// (URLs, email addresses, fenced code blocks, inline code spans) by swapping
// it for numbered markers before the text reaches the model. Guard.Restore
// puts the originals back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// fenced code blocks: ```...``` (non-greedy, may span lines)
	reFencedCode = regexp.MustCompile("(?s)```.*?```")

	// inline code spans: `...`
	reInlineCode = regexp.MustCompile("`[^`]+`")

	// URLs; the final character class keeps sentence punctuation out of the match
	reURL = regexp.MustCompile(`https?://\S*[^\s.,;:!?'")\]]`)

	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	reMarker = regexp.MustCompile(`\[PIN(\d+)\]`)
)

// Guard holds the literals captured by Protect, in marker order.
type Guard struct {
	originals []string
}

// Protect replaces protected content with [PIN0], [PIN1], ... markers and
// returns the masked text together with the Guard needed to restore it.
// Code spans are masked before URLs so a URL inside backticks is captured
// once, as part of the span.
func Protect(text string) (string, *Guard) {
	g := &Guard{}

	mask := func(match string) string {
		marker := fmt.Sprintf("[PIN%d]", len(g.originals))
		g.originals = append(g.originals, match)
		return marker
	}

	text = reFencedCode.ReplaceAllStringFunc(text, mask)
	text = reInlineCode.ReplaceAllStringFunc(text, mask)
	text = reURL.ReplaceAllStringFunc(text, mask)
	text = reEmail.ReplaceAllStringFunc(text, mask)

	return text, g
}

// Count reports how many literals were masked.
func (g *Guard) Count() int {
	return len(g.originals)
}

// Restore substitutes [PINn] markers back with the captured literals.
// Markers the model dropped simply stay absent; indices that were never
// issued are left in place.
func (g *Guard) Restore(text string) string {
	if len(g.originals) == 0 {
		return text
	}
	return reMarker.ReplaceAllStringFunc(text, func(match string) string {
		sub := reMarker.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(g.originals) {
			return match
		}
		return g.originals[idx]
	})
}

// Missing lists the indices of markers absent from text, typically because
// the model rewrote over them.
func (g *Guard) Missing(text string) []int {
	var missing []int
	for i := range g.originals {
		if !strings.Contains(text, fmt.Sprintf("[PIN%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

// InstructionHint returns a sentence for the rewrite prompt telling the
// model to leave markers untouched.
func InstructionHint() string {
	return "Keep every [PINn] marker exactly where it appears. Do not reword, move, or delete markers."
}
