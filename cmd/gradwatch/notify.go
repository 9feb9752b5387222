package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/amoghj8/gradwatch/internal/notifier"
	"github.com/amoghj8/gradwatch/internal/secrets"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test notification using the configured notifier.",
	RunE:  runNotifyTest,
}

var notifyPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the SMTP password in the OS keychain",
	Long:  "Prompts for the SMTP password and stores it in the OS keychain for the configured sender address.",
	RunE:  runNotifySetPassword,
}

var notifyClearPasswordCmd = &cobra.Command{
	Use:   "clear-password",
	Short: "Remove the SMTP password from the OS keychain",
	RunE:  runNotifyClearPassword,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
	notifyCmd.AddCommand(notifyPasswordCmd)
	notifyCmd.AddCommand(notifyClearPasswordCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.Source.Timeout}
	n := setupNotifier(cfg, httpClient, logger)

	if err := notifier.SendTestMessage(n); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}

func runNotifySetPassword(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	from := cfg.Notification.Email.From
	if from == "" {
		fmt.Fprintln(os.Stderr, "notification.email.from must be set in config first")
		os.Exit(1)
	}

	fmt.Printf("SMTP password for %s: ", from)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	if err := secrets.SetSMTPPassword(from, string(pw)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	fmt.Println("Password stored in keychain.")
	return nil
}

func runNotifyClearPassword(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := secrets.DeleteSMTPPassword(cfg.Notification.Email.From); err != nil {
		return fmt.Errorf("delete password: %w", err)
	}
	fmt.Println("Password removed from keychain.")
	return nil
}
