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
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/humantone/internal"
)

var (
	batchInputDir    string
	batchOutputDir   string
	batchMode        string
	batchConcurrency int
	batchNoHistory   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Humanise every text file in a directory",
	Long: `Humanise every .txt file in a directory, writing results to the output
directory under the same filenames. Files are processed concurrently; a
failed file is reported and skipped, it does not stop the batch.

Example:
  humantone batch -i ./drafts -o ./final -m sales`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchInputDir == batchOutputDir {
			return fmt.Errorf("input directory and output directory cannot be the same")
		}

		mode, err := internal.ParseMode(batchMode)
		if err != nil {
			return err
		}

		entries, err := os.ReadDir(batchInputDir)
		if err != nil {
			return fmt.Errorf("failed to read input directory: %w", err)
		}

		var files []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
				files = append(files, e.Name())
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no .txt files found in %s", batchInputDir)
		}

		if err := os.MkdirAll(batchOutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()

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

		var done, failed atomic.Int32

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchConcurrency)

		for _, name := range files {
			g.Go(func() error {
				raw, err := os.ReadFile(filepath.Join(batchInputDir, name))
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
					failed.Add(1)
					return nil
				}
				text := strings.TrimSpace(string(raw))
				if err := internal.ValidateInput(text); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
					failed.Add(1)
					return nil
				}

				result, err := pipeline.Process(gctx, text, mode)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: humanisation failed: %v\n", name, err)
					failed.Add(1)
					return nil
				}

				if err := os.WriteFile(filepath.Join(batchOutputDir, name), []byte(result.OutputText), 0644); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
					failed.Add(1)
					return nil
				}

				if st != nil && !batchNoHistory {
					_ = st.SaveRun(gctx, internal.RunRecord{
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

				fmt.Printf("%s: score %.2f after %d iteration(s)\n", name, result.QualityScore, result.Iterations)
				done.Add(1)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("Batch complete: %d humanised, %d failed\n", done.Load(), failed.Load())
		if failed.Load() > 0 {
			return fmt.Errorf("%d file(s) failed", failed.Load())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchInputDir, "input", "i", "", "Input directory of .txt files (required)")
	batchCmd.Flags().StringVarP(&batchOutputDir, "output", "o", "", "Output directory (required)")
	batchCmd.Flags().StringVarP(&batchMode, "mode", "m", "journalist", "Transformation mode (sales or journalist)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 2, "Number of files processed in parallel")
	batchCmd.Flags().BoolVar(&batchNoHistory, "no-history", false, "Do not record runs in history")

	batchCmd.MarkFlagRequired("input")
	batchCmd.MarkFlagRequired("output")
}
