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
	historyDriver string
	historyDSN    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage pipeline run history",
	Long:  `List and clear recorded humanisation runs.`,
}

var historyListLimit int

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := store.Open(ctx, historyDriver, historyDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(ctx, historyListLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMODE\tSCORE\tITERATIONS\tIN\tOUT\tTIME\tWHEN")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%d\t%d\t%dms\t%s\n",
				r.ID, r.Mode, r.QualityScore, r.Iterations,
				r.InputChars, r.OutputChars, r.ProcessingMS,
				r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := store.Open(ctx, historyDriver, historyDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()

		n, err := db.ClearRuns(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Printf("Cleared %d runs from history.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().StringVar(&historyDriver, "driver", "sqlite", "Store driver (sqlite or postgres)")
	historyCmd.PersistentFlags().StringVar(&historyDSN, "db", "./data/humantone.db", "Database path or DSN")

	historyListCmd.Flags().IntVar(&historyListLimit, "limit", 20, "Maximum runs to list (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}
