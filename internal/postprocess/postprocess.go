// Package postprocess removes common LLM artifacts from rewrite output.
//
// It is applied to the raw text returned by any model-backed service
// (analyser, transformer, judge) before the result is used downstream.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in four phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Instruction echo removal (prompt leakage)
//  3. Code fence unwrapping (whole output wrapped in ``` fences)
//  4. Quote wrapping removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeFenceWrapping(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
// Flags: i = case-insensitive, s = dot matches newline.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: instruction echoes ---

// echoPatterns match introductory phrases that LLMs sometimes prepend even
// when instructed not to.  Each pattern is anchored to the start of the string
// and requires a colon to reduce false positives on legitimate content.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [humanized|rewritten|transformed] text:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| your)? (?:humanized |humanised |rewritten |transformed |final )?(?:text|version|copy|rewrite|output)\s*:`),
	// "[The] humanized text:" / "Rewritten version:" / "Rewrite:"
	regexp.MustCompile(`(?i)^(?:the )?(?:humanized text|humanised text|rewritten text|transformed text|rewritten version|humanized version|humanised version|rewrite|output)\s*:`),
	// "Certainly / Sure / Of course[,] here is the humanized text:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the| your)? (?:humanized |humanised |rewritten |transformed |final )?(?:text|version|copy|rewrite|output)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: fence wrapping ---

// removeFenceWrapping unwraps output the model returned as a single fenced
// block despite being told plain text only. Only a fence spanning the whole
// output is removed; fences inside the text are content.
func removeFenceWrapping(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return text
	}
	inner := strings.Join(lines[1:len(lines)-1], "\n")
	if strings.Contains(inner, "```") {
		return text
	}
	return strings.TrimSpace(inner)
}

// --- Phase 4: quote wrapping ---

// quotePairs are the opening/closing quote runes that count as wrapping when
// they enclose the entire text.
var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'«', '»'},
	{'“', '”'}, // " "
	{'‘', '’'}, // ' '
}

// removeQuoteWrapping strips a matching pair of outer quotes when the entire
// text is wrapped in them (a common LLM artifact).
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	for _, pair := range quotePairs {
		if runes[0] == pair[0] && runes[n-1] == pair[1] {
			return strings.TrimSpace(string(runes[1 : n-1]))
		}
	}
	return text
}
