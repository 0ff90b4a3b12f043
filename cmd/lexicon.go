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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/humantone/internal/store"
)

var (
	lexiconDriver string
	lexiconDSN    string
)

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Manage the AI phrase lexicon",
	Long: `Add, list, and delete lexicon entries.

Lexicon entries are phrases known to betray AI-generated text ("delve into",
"in today's fast-paced world"). Every rewrite prompt tells the model to
avoid them.`,
}

var lexiconListCategory string

var lexiconListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all lexicon phrases",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := store.Open(ctx, lexiconDriver, lexiconDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()

		// Pass an empty category to list everything; the flag narrows it.
		entries, err := db.ListPhrases(ctx, lexiconListCategory)
		if err != nil {
			return fmt.Errorf("failed to list lexicon: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("Lexicon is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tPHRASE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Category, e.Phrase)
		}
		return w.Flush()
	},
}

var lexiconAddCategory string

var lexiconAddCmd = &cobra.Command{
	Use:   "add <phrase>",
	Short: "Add a phrase to the lexicon",
	Long: `Add a phrase that rewrites should avoid.

Example:
  humantone lexicon add "delve into" --category cliche`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := store.Open(ctx, lexiconDriver, lexiconDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()

		if err := db.AddPhrase(ctx, args[0], lexiconAddCategory); err != nil {
			return fmt.Errorf("failed to add phrase: %w", err)
		}
		fmt.Printf("Added: %q [%s]\n", args[0], lexiconAddCategory)
		return nil
	},
}

var lexiconDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a lexicon phrase by ID",
	Long: `Delete a lexicon phrase by its ID (shown in "humantone lexicon list").`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := store.Open(ctx, lexiconDriver, lexiconDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()

		if err := db.DeletePhrase(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete phrase: %w", err)
		}
		fmt.Printf("Deleted phrase: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lexiconCmd)

	lexiconCmd.PersistentFlags().StringVar(&lexiconDriver, "driver", "sqlite", "Store driver (sqlite or postgres)")
	lexiconCmd.PersistentFlags().StringVar(&lexiconDSN, "db", "./data/humantone.db", "Database path or DSN")

	lexiconListCmd.Flags().StringVarP(&lexiconListCategory, "category", "c", "", "Filter by category")
	lexiconAddCmd.Flags().StringVarP(&lexiconAddCategory, "category", "c", "general", "Phrase category (e.g. cliche, hedge, transition)")

	lexiconCmd.AddCommand(lexiconListCmd)
	lexiconCmd.AddCommand(lexiconAddCmd)
	lexiconCmd.AddCommand(lexiconDeleteCmd)
}
