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
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/humantone/internal/store"
)

var (
	corpusDriver string
	corpusDSN    string
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the human writing corpus",
	Long:  `List, inspect, and clear the reference corpus of human-written content.`,
}

var (
	corpusListType  string
	corpusListLimit int
)

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := store.Open(ctx, corpusDriver, corpusDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()

		items, err := db.ListContent(ctx, corpusListType, corpusListLimit)
		if err != nil {
			return fmt.Errorf("failed to list corpus: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("Corpus is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tTOPIC\tTONE\tSOURCE\tADDED\tCONTENT")
		for _, item := range items {
			snippet := item.Content
			if len(snippet) > 40 {
				snippet = snippet[:37] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				item.ID, item.ContentType, item.Topic, item.Tone,
				item.Source, item.CreatedAt.Format("2006-01-02 15:04"), snippet)
		}
		return w.Flush()
	},
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := store.Open(ctx, corpusDriver, corpusDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()

		stats, err := db.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Corpus entries:  %d\n", stats.TotalContent)
		fmt.Printf("Lexicon phrases: %d\n", stats.TotalPhrases)
		fmt.Printf("Recorded runs:   %d\n", stats.TotalRuns)

		if len(stats.ByType) > 0 {
			fmt.Println("By content type:")
			types := make([]string, 0, len(stats.ByType))
			for t := range stats.ByType {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Printf("  %-14s %d\n", t+":", stats.ByType[t])
			}
		}
		return nil
	},
}

var corpusDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a corpus entry by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := store.Open(ctx, corpusDriver, corpusDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()

		if err := db.DeleteContent(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		fmt.Printf("Deleted entry: %s\n", args[0])
		return nil
	},
}

var corpusClearType string

var corpusClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove corpus entries",
	Long:  `Remove all corpus entries, or only those of one content type with --type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := store.Open(ctx, corpusDriver, corpusDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()

		n, err := db.ClearContent(ctx, corpusClearType)
		if err != nil {
			return fmt.Errorf("failed to clear corpus: %w", err)
		}
		fmt.Printf("Cleared %d entries from the corpus.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(corpusCmd)

	corpusCmd.PersistentFlags().StringVar(&corpusDriver, "driver", "sqlite", "Store driver (sqlite or postgres)")
	corpusCmd.PersistentFlags().StringVar(&corpusDSN, "db", "./data/humantone.db", "Database path or DSN")

	corpusListCmd.Flags().StringVarP(&corpusListType, "type", "t", "", "Filter by content type (e.g. sales, journalist)")
	corpusListCmd.Flags().IntVar(&corpusListLimit, "limit", 0, "Maximum entries to list (0 = all)")

	corpusClearCmd.Flags().StringVarP(&corpusClearType, "type", "t", "", "Only clear entries of this content type")

	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusDeleteCmd)
	corpusCmd.AddCommand(corpusClearCmd)
}
