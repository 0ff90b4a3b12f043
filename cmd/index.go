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

	"github.com/spf13/cobra"

	"github.com/valpere/humantone/internal/indexer"
	"github.com/valpere/humantone/internal/logging"
)

var indexDir string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a directory of human-written content",
	Long: `Index every .txt and .md file in a directory into the reference corpus.

Content type, topic, and tone are inferred from filenames and content.
Long documents are split into passages before embedding.

Example:
  humantone index --dir ./content`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dir := indexDir
		if dir == "" {
			dir = cfg.Scraper.ContentDir
		}

		logger := logging.Build(cfg.Logger)
		defer logger.Sync()

		ctx := context.Background()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("indexing requires a configured store")
		}
		defer st.Close()

		emb, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}

		ix := indexer.New(st, emb, logger.Named("indexer"))
		summary, err := ix.IndexDirectory(ctx, dir)
		if err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}

		fmt.Printf("Indexed %d file(s) as %d passage(s)\n", summary.Files, summary.Passages)
		if summary.Skipped > 0 {
			fmt.Printf("Skipped: %d empty file(s)\n", summary.Skipped)
		}
		if summary.Failed > 0 {
			fmt.Printf("Failed:  %d file(s) (see log for details)\n", summary.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringVar(&indexDir, "dir", "", "Directory to index (default: configured content dir)")
}
