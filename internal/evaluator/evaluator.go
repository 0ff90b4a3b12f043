// Package evaluator scores how convincingly human a candidate rewrite reads.
//
// Each evaluation blends two independent signals with equal weight: the
// heuristic scorer's composite over the candidate text, and a qualitative
// judgment from an external model. The judge only ever sees the candidate,
// never the original — the question is "does this read as human", not "how
// far is it from the source".
package evaluator

import (
	"context"
	"fmt"
	"math"

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/scorer"
)

// Judge obtains the external qualitative verdict on a text.
type Judge interface {
	Judge(ctx context.Context, text string, mode internal.Mode) (*internal.Evaluation, error)
}

// Result is one iteration's verdict on a candidate.
type Result struct {
	// Score is the blended authoritative score driving the stopping rule.
	Score float64

	// JudgeScore is the external judgment alone, clamped to [0,1].
	JudgeScore float64

	Metrics    internal.Metrics
	Strengths  []string
	Weaknesses []string
	Feedback   []string
}

type Evaluator struct {
	judge Judge
}

func New(judge Judge) *Evaluator {
	return &Evaluator{judge: judge}
}

// Evaluate scores candidate for mode. A judge failure is returned to the
// caller rather than defaulted: a made-up judgment would corrupt the
// pipeline's stopping decision.
func (e *Evaluator) Evaluate(ctx context.Context, original, candidate string, mode internal.Mode) (*Result, error) {
	metrics := scorer.Score(candidate)

	eval, err := e.judge.Judge(ctx, candidate, mode)
	if err != nil {
		return nil, fmt.Errorf("quality judgment failed: %w", err)
	}

	judgeScore := clamp01(eval.Score)

	return &Result{
		Score:      round2((judgeScore + metrics.CompositeScore) / 2),
		JudgeScore: judgeScore,
		Metrics:    metrics,
		Strengths:  eval.Strengths,
		Weaknesses: eval.Weaknesses,
		Feedback:   eval.Feedback,
	}, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
