package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amoghj8/gradwatch/internal/model"
	"github.com/amoghj8/gradwatch/internal/store"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion cycle now",
	Long:  "Fetches the listing once, stores what it finds, notifies on new postings, and exits.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not persist anything; report every fetched posting as new")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var postingStore model.PostingStore
	var ledger model.RunLedger
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		nop := store.NewNopStore()
		postingStore, ledger = nop, nop
	} else {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		postingStore, ledger = db, db
	}

	httpClient := &http.Client{Timeout: cfg.Source.Timeout}
	n := setupNotifier(cfg, httpClient, logger)
	ingestor := buildIngestor(cfg, postingStore, ledger, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := ingestor.Run(ctx)
	if err != nil {
		logger.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("cycle finished",
		"status", result.Run.Status,
		"fetched", result.Run.FetchedCount,
		"new", result.Run.NewCount,
	)

	if len(result.NewPostings) > 0 {
		if err := n.Notify(result.NewPostings); err != nil {
			logger.Error("notification failed", "error", err)
			os.Exit(1)
		}
	}
	return nil
}
