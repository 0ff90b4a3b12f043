// Package chunker splits documents into passages sized for embedding and
// retrieval. Long documents embed poorly as a single vector and make bad
// few-shot examples, so anything over the passage budget is cut at the most
// natural boundary available.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultMaxChars is the passage budget used by the indexer. It keeps a
// passage within a few paragraphs — enough context to read as a writing
// sample, small enough for a focused embedding.
const DefaultMaxChars = 2000

// Passages splits text into pieces of at most maxChars runes. Splits are
// attempted, in order of preference, at:
//  1. Paragraph boundaries (blank lines)
//  2. Sentence-ending punctuation followed by a space
//  3. Any whitespace
//  4. A hard cut when the text has no usable boundary
//
// Text within budget comes back as a single passage. maxChars of zero or
// less selects DefaultMaxChars.
func Passages(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len([]rune(text)) <= maxChars {
		return []string{text}
	}

	var passages []string
	remaining := text

	for len([]rune(remaining)) > maxChars {
		split := findSplit(remaining, maxChars)
		passage := strings.TrimSpace(remaining[:split])
		if passage != "" {
			passages = append(passages, passage)
		}
		remaining = strings.TrimSpace(remaining[split:])
	}

	if remaining != "" {
		passages = append(passages, remaining)
	}

	return passages
}

// findSplit returns the byte offset at which to cut, keeping at most
// maxChars runes and preferring the strongest boundary inside the budget.
func findSplit(text string, maxChars int) int {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return len(text)
	}
	candidate := runes[:maxChars]

	// Paragraph boundary.
	prefix := string(candidate)
	if idx := strings.LastIndex(prefix, "\n\n"); idx > 0 {
		return idx + 2
	}
	if idx := strings.LastIndex(prefix, "\r\n\r\n"); idx > 0 {
		return idx + 4
	}

	// Sentence boundary: terminator followed by a space.
	for i := len(candidate) - 2; i > 0; i-- {
		r := candidate[i]
		if (r == '.' || r == '!' || r == '?') && unicode.IsSpace(candidate[i+1]) {
			return len(string(candidate[:i+1]))
		}
	}

	// Word boundary.
	for i := len(candidate) - 1; i > 0; i-- {
		if unicode.IsSpace(candidate[i]) {
			return len(string(candidate[:i]))
		}
	}

	// Hard cut.
	return len(prefix)
}
