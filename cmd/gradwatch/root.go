package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amoghj8/gradwatch/internal/config"
	"github.com/amoghj8/gradwatch/internal/extract"
	"github.com/amoghj8/gradwatch/internal/fetcher"
	"github.com/amoghj8/gradwatch/internal/filter"
	"github.com/amoghj8/gradwatch/internal/ingest"
	"github.com/amoghj8/gradwatch/internal/model"
	"github.com/amoghj8/gradwatch/internal/notifier"
	"github.com/amoghj8/gradwatch/internal/retry"
	"github.com/amoghj8/gradwatch/internal/secrets"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "gradwatch",
	Short: "Careers-page watcher — know when new grad roles appear",
	Long:  "gradwatch polls a careers listing on a daily schedule, records every posting it has ever seen, and alerts you when new ones appear.",
	// Default to `start` so that `gradwatch` with no args runs the daemon.
	// This preserves compatibility with systemd unit files that invoke the binary directly.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: GRADWATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > GRADWATCH_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("GRADWATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.Slack.WebhookURL, httpClient, logger)
	case "email":
		password := cfg.Notification.Email.Password
		if password == "" {
			pw, err := secrets.GetSMTPPassword(cfg.Notification.Email.From)
			if err != nil {
				logger.Warn("no SMTP password in config or keychain, falling back to log notifier",
					"error", err)
				return notifier.NewLogNotifier(logger)
			}
			password = pw
		}
		logger.Info("using email notifier", "to", cfg.Notification.Email.To)
		return notifier.NewEmailNotifier(cfg.Notification.Email, password, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildIngestor wires the full pipeline: rate-limited HTTP fetch with retry,
// HTML extraction, keyword filter, and the given store/ledger.
func buildIngestor(cfg *config.Config, st model.PostingStore, ledger model.RunLedger, logger *slog.Logger) *ingest.Ingestor {
	httpClient := &http.Client{Timeout: cfg.Source.Timeout}

	var pageFetcher model.PageFetcher = fetcher.New(cfg.Source, cfg.Fetch.RequestsPerMinute, httpClient)
	pageFetcher = retry.NewFetcher(pageFetcher, cfg.Fetch.MaxRetries, cfg.Fetch.RetryBaseDelay, logger)

	extractor := extract.NewHTMLExtractor(cfg.Source.BaseURL)
	keywordFilter := filter.NewKeywordFilter(cfg.Filters.TitleKeywords, cfg.Filters.Locations)

	return ingest.New(pageFetcher, extractor, keywordFilter, st, ledger, logger)
}
