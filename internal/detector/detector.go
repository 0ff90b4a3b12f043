// Package detector identifies the language of a text. The heuristic scorer's
// contraction and hedge-word signals assume English prose, so callers warn
// when input or indexed content is written in something else.
package detector

import (
	lingua "github.com/pemistahl/lingua-go"
)

// minReliableRunes is the length under which lingua's verdicts get too noisy
// to act on; shorter texts pass as English by benefit of the doubt.
const minReliableRunes = 20

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over the full language set. Construction is
// expensive; reuse the instance.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// IsEnglish reports whether text reads as English. Texts too short for a
// reliable verdict, and texts whose language cannot be determined, count as
// English so the caller does not warn spuriously.
func (d *Detector) IsEnglish(text string) bool {
	if len([]rune(text)) < minReliableRunes {
		return true
	}
	lang, ok := d.Detect(text)
	if !ok {
		return true
	}
	return lang == lingua.English
}
