// Package orchestrator runs the humanisation pipeline for one request:
// analyse the input once, retrieve reference examples once, then rewrite and
// evaluate in a bounded loop until the blended quality score clears the
// threshold or the iteration budget runs out. The pipeline always returns a
// best-effort result when the budget is exhausted; only analyser, rewrite,
// and judge faults abort a run.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/evaluator"
	"github.com/valpere/humantone/internal/transformer"
)

const (
	DefaultMaxIterations    = 3
	DefaultQualityThreshold = 0.75
)

// Analyser, Retriever, Transformer and Evaluator are the pipeline's stage
// contracts, defined here so tests can substitute any stage.
type Analyser interface {
	Analyse(ctx context.Context, text string) (*internal.Analysis, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, analysis internal.Analysis, mode internal.Mode) []internal.Reference
}

type Transformer interface {
	Rewrite(ctx context.Context, req transformer.Request) (string, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, original, candidate string, mode internal.Mode) (*evaluator.Result, error)
}

// Lexicon supplies the user-maintained list of AI-tell phrases injected into
// rewrite prompts. Optional; lookup failures degrade to an empty list.
type Lexicon interface {
	Phrases(ctx context.Context) ([]string, error)
}

type Config struct {
	// MaxIterations bounds the rewrite loop. Zero or less selects the
	// default of 3.
	MaxIterations int

	// QualityThreshold stops the loop once the blended score reaches it.
	// Taken as given, so a threshold of 0.0 stops after one iteration;
	// start from DefaultConfig to get the standard 0.75.
	QualityThreshold float64
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations:    DefaultMaxIterations,
		QualityThreshold: DefaultQualityThreshold,
	}
}

// Pipeline coordinates one humanisation run at a time. It holds no mutable
// state of its own, so a single Pipeline serves concurrent requests.
type Pipeline struct {
	analyser    Analyser
	retriever   Retriever
	transformer Transformer
	evaluator   Evaluator
	lexicon     Lexicon
	config      Config
}

// New assembles a pipeline, applying config defaults. The lexicon may be nil.
func New(a Analyser, r Retriever, t Transformer, e Evaluator, lex Lexicon, config Config) *Pipeline {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultMaxIterations
	}
	return &Pipeline{
		analyser:    a,
		retriever:   r,
		transformer: t,
		evaluator:   e,
		lexicon:     lex,
		config:      config,
	}
}

// Process rewrites inputText into the target mode and reports the final
// candidate with its blended quality score and timing metadata.
//
// Iteration policy: the newest candidate is adopted unconditionally, with no
// rollback to a higher-scoring earlier iteration, and evaluator feedback
// accumulates across iterations without ever being cleared. Both behaviors
// are deliberate and covered by tests.
func (p *Pipeline) Process(ctx context.Context, inputText string, mode internal.Mode) (*internal.Result, error) {
	start := time.Now()

	analysis, err := p.analyser.Analyse(ctx, inputText)
	if err != nil {
		return nil, fmt.Errorf("content analysis failed: %w", err)
	}

	// References and the lexicon are fetched once and reused by every
	// iteration; they do not depend on the evolving candidate.
	references := p.retriever.Retrieve(ctx, *analysis, mode)

	var avoid []string
	if p.lexicon != nil {
		if phrases, err := p.lexicon.Phrases(ctx); err == nil {
			avoid = phrases
		}
	}

	current := inputText
	iterations := 0
	var score float64
	var metrics internal.Metrics

	for i := 0; i < p.config.MaxIterations; i++ {
		iterations++

		candidate, err := p.transformer.Rewrite(ctx, transformer.Request{
			Text:         current,
			Mode:         mode,
			Patterns:     analysis.Patterns,
			Feedback:     analysis.Feedback,
			Examples:     references,
			AvoidPhrases: avoid,
		})
		if err != nil {
			return nil, fmt.Errorf("rewrite failed on iteration %d: %w", iterations, err)
		}

		eval, err := p.evaluator.Evaluate(ctx, inputText, candidate, mode)
		if err != nil {
			return nil, fmt.Errorf("evaluation failed on iteration %d: %w", iterations, err)
		}

		current = candidate
		score = eval.Score
		metrics = eval.Metrics

		if score >= p.config.QualityThreshold {
			break
		}
		analysis.Feedback = append(analysis.Feedback, eval.Feedback...)
	}

	return &internal.Result{
		OutputText:       current,
		QualityScore:     score,
		Iterations:       iterations,
		Mode:             mode.String(),
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		Metrics:          &metrics,
	}, nil
}
