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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/detector"
)

var (
	humaniseInputFile  string
	humaniseOutputFile string
	humaniseMode       string

	humaniseMaxIterations int
	humaniseThreshold     float64
	humaniseNoHistory     bool
)

var humaniseCmd = &cobra.Command{
	Use:   "humanise",
	Short: "Rewrite AI-generated text into human style",
	Long: `Rewrite AI-generated text so it reads like authentic human writing.

The pipeline analyses the input for AI patterns, retrieves human-written
reference examples from the corpus, then rewrites and evaluates in a loop
until the quality threshold is reached or the iteration budget runs out.

Available modes:
  - sales       Marketing and persuasive copy
  - journalist  Editorial and news content

Example:
  humantone humanise -i draft.txt -o final.txt -m sales`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if humaniseOutputFile != "" && humaniseInputFile == humaniseOutputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		mode, err := internal.ParseMode(humaniseMode)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(humaniseInputFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		text := strings.TrimSpace(string(raw))
		if err := internal.ValidateInput(text); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if humaniseMaxIterations > 0 {
			cfg.Pipeline.MaxIterations = humaniseMaxIterations
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Pipeline.QualityThreshold = humaniseThreshold
		}

		ctx := context.Background()

		// The scorer's signals assume English prose; warn but continue.
		if det := detector.New(); !det.IsEnglish(text) {
			fmt.Fprintln(os.Stderr, "Warning: input does not look like English; quality scores may be unreliable")
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close()
		}

		pipeline, err := buildPipeline(cfg, st)
		if err != nil {
			return err
		}

		result, err := pipeline.Process(ctx, text, mode)
		if err != nil {
			return fmt.Errorf("humanisation failed: %w", err)
		}

		if humaniseOutputFile != "" {
			if dir := filepath.Dir(humaniseOutputFile); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if err := os.WriteFile(humaniseOutputFile, []byte(result.OutputText), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
		}

		if st != nil && !humaniseNoHistory {
			_ = st.SaveRun(ctx, internal.RunRecord{
				ID:           uuid.New().String(),
				Mode:         result.Mode,
				InputChars:   len([]rune(text)),
				OutputChars:  len([]rune(result.OutputText)),
				QualityScore: result.QualityScore,
				Iterations:   result.Iterations,
				ProcessingMS: result.ProcessingTimeMS,
				CreatedAt:    time.Now().UTC(),
			})
		}

		if humaniseOutputFile == "" {
			// No output file: text on stdout, summary on stderr.
			fmt.Println(result.OutputText)
			printResult(os.Stderr, result)
			return nil
		}

		fmt.Printf("Humanised text written to %s\n", humaniseOutputFile)
		printResult(os.Stdout, result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(humaniseCmd)

	humaniseCmd.Flags().StringVarP(&humaniseInputFile, "input", "i", "", "Input file to humanise (required)")
	humaniseCmd.Flags().StringVarP(&humaniseOutputFile, "output", "o", "", "Output file for humanised text (default: stdout)")
	humaniseCmd.Flags().StringVarP(&humaniseMode, "mode", "m", "journalist", "Transformation mode (sales or journalist)")

	humaniseCmd.Flags().IntVar(&humaniseMaxIterations, "max-iterations", 0, "Override the configured iteration budget")
	humaniseCmd.Flags().Float64Var(&humaniseThreshold, "threshold", 0, "Override the configured quality threshold [0,1]")
	humaniseCmd.Flags().BoolVar(&humaniseNoHistory, "no-history", false, "Do not record this run in history")

	humaniseCmd.MarkFlagRequired("input")
}
