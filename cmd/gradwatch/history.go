package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amoghj8/gradwatch/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent ingestion runs",
	Long:  "Reads the run ledger and prints a table of recent ingestion cycles, newest first.",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := db.ListRecentRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-20s %-13s %8s %5s  %s\n", "Ran At", "Status", "Fetched", "New", "Detail")
	fmt.Println(strings.Repeat("─", 70))

	for _, r := range runs {
		fmt.Printf("%-20s %-13s %8d %5d  %s\n",
			r.RanAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			r.FetchedCount,
			r.NewCount,
			r.ErrorDetail,
		)
	}

	fmt.Printf("\nShowing %d run(s)\n", len(runs))
	return nil
}
