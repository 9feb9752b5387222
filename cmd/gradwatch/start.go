package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/amoghj8/gradwatch/internal/schedule"
	"github.com/amoghj8/gradwatch/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the watcher daemon",
	Long:  "Runs ingestion cycles at the configured daily times; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"source", cfg.Source.BaseURL,
		"times", cfg.Schedule.Times,
		"title_keywords", len(cfg.Filters.TitleKeywords),
		"locations", len(cfg.Filters.Locations),
		"notification", cfg.Notification.Type,
	)

	// Single-instance guard: two daemons against the same store would break
	// the single-writer assumption the store is built on.
	lock := flock.New(cfg.Store.Path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("failed to acquire instance lock", "error", err)
		os.Exit(1)
	}
	if !locked {
		logger.Error("another gradwatch instance is already running against this store", "path", cfg.Store.Path)
		os.Exit(1)
	}
	defer lock.Unlock()

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	httpClient := &http.Client{Timeout: cfg.Source.Timeout}
	n := setupNotifier(cfg, httpClient, logger)
	ingestor := buildIngestor(cfg, db, db, logger)

	sched, err := schedule.New(cfg.Schedule.Times, cfg.Schedule.RunOnStart, logger)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = sched.Run(ctx, func(ctx context.Context) {
		result, err := ingestor.Run(ctx)
		if err != nil {
			// Storage failure: the dedup guarantee is at risk, stop the daemon.
			logger.Error("ingestion aborted on storage failure", "error", err)
			stop()
			return
		}
		if len(result.NewPostings) > 0 {
			if err := n.Notify(result.NewPostings); err != nil {
				// Postings are already stored; delivery failure must not
				// unwind the cycle.
				logger.Error("notification failed", "error", err, "new", len(result.NewPostings))
			}
		}
	})
	if err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
