// Package scorer computes heuristic human-likeness statistics for a text.
//
// The metrics track the signals AI detectors weigh most heavily: sentence
// length variation (burstiness), vocabulary richness, contraction usage, and
// hedge-word density. Score is a total function: it never fails, and empty
// input yields all-zero metrics.
package scorer

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/valpere/humantone/internal"
)

const (
	weightBurstiness = 0.3
	weightDiversity  = 0.3
	weightContract   = 0.2
	weightHedge      = 0.2

	// stddevNorm normalizes sentence-length standard deviation; a stddev
	// above 15 words already counts as maximally bursty.
	stddevNorm = 15.0

	shortSentenceWords = 5
	longSentenceWords  = 25
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	contractionRe   = regexp.MustCompile(`\w+'\w+`)
)

// hedgeWords are compared against lower-cased whitespace tokens exactly, so
// "might." with trailing punctuation does not count.
var hedgeWords = map[string]struct{}{
	"perhaps":  {},
	"possibly": {},
	"might":    {},
	"could":    {},
	"may":      {},
	"seems":    {},
	"appears":  {},
}

// Score computes quality metrics for text.
func Score(text string) internal.Metrics {
	sentences := splitSentences(text)
	words := strings.Fields(text)

	if len(words) == 0 {
		return internal.Metrics{}
	}

	burstiness := sentenceBurstiness(sentences)
	diversity := lexicalDiversity(words)
	contraction := float64(len(contractionRe.FindAllString(text, -1))) / float64(len(words))

	hedges := 0
	for _, w := range words {
		if _, ok := hedgeWords[strings.ToLower(w)]; ok {
			hedges++
		}
	}
	hedgePenalty := math.Max(0, 1.0-float64(hedges)*0.1)

	composite := burstiness*weightBurstiness +
		diversity*weightDiversity +
		contraction*weightContract +
		hedgePenalty*weightHedge

	return internal.Metrics{
		Burstiness:       round2(burstiness),
		LexicalDiversity: round2(diversity),
		ContractionRatio: round3(contraction),
		HedgePenalty:     round2(hedgePenalty),
		CompositeScore:   round2(composite),
		WordCount:        len(words),
		SentenceCount:    len(sentences),
	}
}

// splitSentences splits on runs of sentence-terminating punctuation and
// discards fragments that are empty after trimming.
func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// sentenceBurstiness measures sentence length variation. Texts mixing very
// short (5 words or fewer) with very long (25 or more) sentences get a 1.2x
// boost, clamped to 1.0. Fewer than two sentences scores zero.
func sentenceBurstiness(sentences []string) float64 {
	if len(sentences) < 2 {
		return 0.0
	}

	lengths := make([]int, len(sentences))
	sum := 0
	for i, s := range sentences {
		lengths[i] = len(strings.Fields(s))
		sum += lengths[i]
	}
	mean := float64(sum) / float64(len(lengths))

	var variance float64
	for _, l := range lengths {
		d := float64(l) - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(lengths)))

	b := math.Min(stddev/stddevNorm, 1.0)

	hasShort, hasLong := false, false
	for _, l := range lengths {
		if l <= shortSentenceWords {
			hasShort = true
		}
		if l >= longSentenceWords {
			hasLong = true
		}
	}
	if hasShort && hasLong {
		b = math.Min(b*1.2, 1.0)
	}
	return b
}

// lexicalDiversity is the type-token ratio over case-folded words, with a
// 1.1x boost (clamped to 1.0) above 0.7.
func lexicalDiversity(words []string) float64 {
	fold := cases.Fold()
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[fold.String(w)] = struct{}{}
	}

	d := float64(len(unique)) / float64(len(words))
	if d > 0.7 {
		d = math.Min(d*1.1, 1.0)
	}
	return d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
