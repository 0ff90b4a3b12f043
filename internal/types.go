package internal

import (
	"fmt"
	"time"
)

// Mode selects the target register for a rewrite.
type Mode string

const (
	ModeSales      Mode = "sales"
	ModeJournalist Mode = "journalist"
)

// ParseMode validates a mode string from a request or CLI flag.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSales, ModeJournalist:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected sales or journalist)", s)
	}
}

func (m Mode) String() string {
	return string(m)
}

// ModeInfo describes one mode for the /api/modes surface.
type ModeInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Modes returns the available transformation modes.
func Modes() []ModeInfo {
	return []ModeInfo{
		{
			ID:          string(ModeSales),
			Name:        "Sales & Marketing",
			Description: "Conversational, persuasive copy with strong CTAs",
		},
		{
			ID:          string(ModeJournalist),
			Name:        "Journalist & Editorial",
			Description: "Objective reporting with engaging narrative",
		},
	}
}

const (
	// MinInputChars and MaxInputChars bound the text accepted by the
	// humanise surface. Enforced at the request edge, not inside the
	// pipeline.
	MinInputChars = 10
	MaxInputChars = 10000
)

// ValidateInput checks request-level input length bounds (in runes).
func ValidateInput(text string) error {
	n := len([]rune(text))
	if n < MinInputChars {
		return fmt.Errorf("input text too short: %d chars (minimum %d)", n, MinInputChars)
	}
	if n > MaxInputChars {
		return fmt.Errorf("input text too long: %d chars (maximum %d)", n, MaxInputChars)
	}
	return nil
}

// Analysis is the analyser's description of the input text. It is produced
// once per run. Feedback is the only field mutated afterwards: the
// orchestrator appends evaluator feedback before each retry and never clears
// it within a run.
type Analysis struct {
	Patterns         []string  `json:"ai_patterns"`
	Topic            string    `json:"topic"`
	Tone             string    `json:"tone"`
	SentencePatterns []string  `json:"sentence_patterns"`
	Embedding        []float32 `json:"-"`
	Feedback         []string  `json:"-"`
}

// Reference is one human-written example handed to the transformer.
type Reference struct {
	Content     string  `json:"content"`
	Source      string  `json:"source"`
	ContentType string  `json:"content_type,omitempty"`
	Topic       string  `json:"topic,omitempty"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// Metrics holds the heuristic scorer's statistics for one candidate text.
// All values are rounded to 2 decimals except ContractionRatio (3).
type Metrics struct {
	Burstiness       float64 `json:"burstiness"`
	LexicalDiversity float64 `json:"lexical_diversity"`
	ContractionRatio float64 `json:"contraction_ratio"`
	HedgePenalty     float64 `json:"hedge_penalty"`
	CompositeScore   float64 `json:"composite_score"`
	WordCount        int     `json:"word_count"`
	SentenceCount    int     `json:"sentence_count"`
}

// Evaluation is the external judge's qualitative verdict on a candidate.
type Evaluation struct {
	Score      float64  `json:"score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Feedback   []string `json:"feedback"`
}

// Result is the pipeline's answer for one humanise request.
type Result struct {
	OutputText       string   `json:"output_text"`
	QualityScore     float64  `json:"quality_score"`
	Iterations       int      `json:"iterations"`
	Mode             string   `json:"mode"`
	ProcessingTimeMS int64    `json:"processing_time_ms"`
	Metrics          *Metrics `json:"metrics,omitempty"`
}

// RunRecord is a persisted summary of one completed pipeline run.
type RunRecord struct {
	ID           string
	Mode         string
	InputChars   int
	OutputChars  int
	QualityScore float64
	Iterations   int
	ProcessingMS int64
	CreatedAt    time.Time
}
