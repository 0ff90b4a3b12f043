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

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/indexer"
	"github.com/valpere/humantone/internal/logging"
	"github.com/valpere/humantone/internal/scraper"
)

var (
	scrapeMode        string
	scrapeDescription string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape a URL into the reference corpus",
	Long: `Fetch a web page, extract its main article text, and index it into the
reference corpus for use as a human writing example.

Example:
  humantone scrape https://example.com/article -m journalist -d "local council reporting"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := internal.ParseMode(scrapeMode)
		if err != nil {
			return err
		}
		if scrapeDescription == "" {
			return fmt.Errorf("--description flag is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := logging.Build(cfg.Logger)
		defer logger.Sync()

		ctx := context.Background()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("scraping requires a configured store")
		}
		defer st.Close()

		emb, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}

		page, err := scraper.New(cfg.Scraper.Timeout).Fetch(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to scrape URL: %w", err)
		}

		ix := indexer.New(st, emb, logger.Named("indexer"))
		res, err := ix.IndexPage(ctx, page, mode, scrapeDescription, cfg.Scraper.ContentDir)
		if err != nil {
			return fmt.Errorf("failed to index page: %w", err)
		}

		fmt.Printf("Scraped and indexed: %s\n", page.Title)
		fmt.Printf("Words:    %d\n", res.WordCount)
		fmt.Printf("Saved as: %s\n", res.Filename)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&scrapeMode, "mode", "m", "journalist", "Content type (sales or journalist)")
	scrapeCmd.Flags().StringVarP(&scrapeDescription, "description", "d", "", "Brief description of the content (required)")

	scrapeCmd.MarkFlagRequired("description")
}
