package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amoghj8/gradwatch/internal/browse"
	"github.com/amoghj8/gradwatch/internal/store"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored postings interactively (TUI)",
	Long:  "Opens an interactive browser over every posting in the store, newest first.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	return browse.Run(postings)
}
