/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/analyser"
	"github.com/valpere/humantone/internal/config"
	"github.com/valpere/humantone/internal/embedder"
	"github.com/valpere/humantone/internal/evaluator"
	"github.com/valpere/humantone/internal/orchestrator"
	"github.com/valpere/humantone/internal/retriever"
	"github.com/valpere/humantone/internal/store"
	"github.com/valpere/humantone/internal/transformer"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openStore connects to the configured corpus store. An empty driver means
// the deployment runs storeless; callers get nil and degrade to built-in
// reference examples.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.Driver == "" {
		return nil, nil
	}
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

func buildEmbedder(cfg *config.Config) (embedder.Embedder, error) {
	if !cfg.Embedding.Enabled {
		return nil, nil
	}
	return embedder.NewOpenAI(embedder.Config{
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.Embedding.BaseURL,
		Dimension: cfg.Embedding.Dimension,
	})
}

// storeLexicon adapts the store's phrase table to the pipeline's lexicon
// contract.
type storeLexicon struct {
	store store.Store
}

func (l storeLexicon) Phrases(ctx context.Context) ([]string, error) {
	entries, err := l.store.ListPhrases(ctx, "")
	if err != nil {
		return nil, err
	}
	phrases := make([]string, 0, len(entries))
	for _, e := range entries {
		phrases = append(phrases, e.Phrase)
	}
	return phrases, nil
}

// buildPipeline assembles the full humanisation pipeline from configuration.
// st may be nil for storeless runs.
func buildPipeline(cfg *config.Config, st store.Store) (*orchestrator.Pipeline, error) {
	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	ana := analyser.NewOpenAIAnalyser(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.AnalyserModel, emb)

	var source retriever.ContentSource
	if st != nil {
		source = st
	}
	ret := retriever.New(source, cfg.Pipeline.RetrievalLimit)

	var trans orchestrator.Transformer
	switch cfg.LLM.Provider {
	case config.ProviderOllama:
		trans = transformer.NewOllamaTransformer(cfg.LLM.OllamaModel, cfg.LLM.OllamaURL)
	default:
		trans = transformer.NewOpenAITransformer(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.TransformerModel)
	}

	eval := evaluator.New(evaluator.NewOpenAIJudge(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.JudgeModel))

	var lex orchestrator.Lexicon
	if st != nil {
		lex = storeLexicon{store: st}
	}

	return orchestrator.New(ana, ret, trans, eval, lex, orchestrator.Config{
		MaxIterations:    cfg.Pipeline.MaxIterations,
		QualityThreshold: cfg.Pipeline.QualityThreshold,
	}), nil
}

// printResult writes the run summary shown after a CLI rewrite.
func printResult(w io.Writer, result *internal.Result) {
	fmt.Fprintf(w, "Mode:            %s\n", result.Mode)
	fmt.Fprintf(w, "Quality score:   %.2f\n", result.QualityScore)
	fmt.Fprintf(w, "Iterations:      %d\n", result.Iterations)
	fmt.Fprintf(w, "Processing time: %s\n", time.Duration(result.ProcessingTimeMS)*time.Millisecond)
	if m := result.Metrics; m != nil {
		fmt.Fprintf(w, "Metrics:\n")
		fmt.Fprintf(w, "  Burstiness:        %.2f\n", m.Burstiness)
		fmt.Fprintf(w, "  Lexical diversity: %.2f\n", m.LexicalDiversity)
		fmt.Fprintf(w, "  Contraction ratio: %.3f\n", m.ContractionRatio)
		fmt.Fprintf(w, "  Hedge penalty:     %.2f\n", m.HedgePenalty)
		fmt.Fprintf(w, "  Words:             %d\n", m.WordCount)
		fmt.Fprintf(w, "  Sentences:         %d\n", m.SentenceCount)
	}
}
