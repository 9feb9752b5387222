package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amoghj8/gradwatch/internal/store"
)

var postingsCmd = &cobra.Command{
	Use:   "postings",
	Short: "List all stored postings",
	Long:  "Prints every posting ever observed, oldest first.",
	RunE:  runPostings,
}

func init() {
	rootCmd.AddCommand(postingsCmd)
}

func runPostings(cmd *cobra.Command, args []string) error {
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

	postings, err := db.ListAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list postings: %v\n", err)
		os.Exit(1)
	}

	if len(postings) == 0 {
		fmt.Println("No postings stored yet.")
		return nil
	}

	fmt.Printf("%-45s %-25s %-12s %s\n", "Title", "Location", "First Seen", "Last Seen")
	fmt.Println(strings.Repeat("─", 100))

	for _, p := range postings {
		title := p.Title
		if len(title) > 43 {
			title = title[:40] + "..."
		}
		location := p.Location
		if len(location) > 23 {
			location = location[:20] + "..."
		}
		fmt.Printf("%-45s %-25s %-12s %s\n",
			title,
			location,
			p.FirstSeen.Local().Format("2006-01-02"),
			p.LastSeen.Local().Format("2006-01-02"),
		)
	}

	fmt.Printf("\nTotal: %d posting(s)\n", len(postings))
	return nil
}
