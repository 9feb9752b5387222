package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the gradwatch watcher.
type Config struct {
	Source       SourceConfig
	Filters      FilterConfig
	Schedule     ScheduleConfig
	Store        StoreConfig
	Notification NotificationConfig
	Fetch        FetchConfig
}

// SourceConfig describes the careers listing to watch.
type SourceConfig struct {
	BaseURL   string            // listing page URL, without query string
	Query     map[string]string // query parameters (search, team, jobtype, ...)
	UserAgent string            // sent on every request
	Timeout   time.Duration     // per-request HTTP timeout
}

// FilterConfig holds keyword filter settings applied to extracted records.
type FilterConfig struct {
	TitleKeywords []string
	Locations     []string
}

// ScheduleConfig controls the daily run times for the daemon.
type ScheduleConfig struct {
	Times      []string // wall-clock "HH:MM", local time
	RunOnStart bool     // run one cycle immediately when the daemon starts
}

// StoreConfig locates the sqlite database file.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type  string      `yaml:"type"` // "log", "email" or "slack"
	Email EmailConfig `yaml:"email"`
	Slack SlackConfig `yaml:"slack"`
}

// EmailConfig holds SMTP delivery settings. Password may be left empty, in
// which case it is read from the OS keychain at send time.
type EmailConfig struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Password string `yaml:"password"`
}

// SlackConfig holds the incoming-webhook URL.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// FetchConfig controls retry and politeness behavior of the page fetcher.
type FetchConfig struct {
	MaxRetries        int           // additional attempts after the first failure
	RetryBaseDelay    time.Duration // delay before the first retry, doubled each time
	RequestsPerMinute float64       // rate limit against the careers host
}

const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultStorePath = "gradwatch.db"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Source       rawSourceConfig    `yaml:"source"`
	Filters      rawFilterConfig    `yaml:"filters"`
	Schedule     rawScheduleConfig  `yaml:"schedule"`
	Store        StoreConfig        `yaml:"store"`
	Notification NotificationConfig `yaml:"notification"`
	Fetch        rawFetchConfig     `yaml:"fetch"`
}

type rawSourceConfig struct {
	BaseURL   string            `yaml:"base_url"`
	Query     map[string]string `yaml:"query"`
	UserAgent string            `yaml:"user_agent"`
	Timeout   string            `yaml:"timeout"`
}

type rawFilterConfig struct {
	TitleKeywords []string `yaml:"title_keywords"`
	Locations     []string `yaml:"locations"`
}

type rawScheduleConfig struct {
	Times      []string `yaml:"times"`
	RunOnStart bool     `yaml:"run_on_start"`
}

type rawFetchConfig struct {
	MaxRetries        *int    `yaml:"max_retries"`
	RetryBaseDelay    string  `yaml:"retry_base_delay"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	timeout := 30 * time.Second // default
	if raw.Source.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Source.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse source.timeout %q: %w", raw.Source.Timeout, err)
		}
	}

	userAgent := raw.Source.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	retries := 2 // default
	if raw.Fetch.MaxRetries != nil {
		retries = *raw.Fetch.MaxRetries
	}

	retryDelay := 5 * time.Second // default
	if raw.Fetch.RetryBaseDelay != "" {
		retryDelay, err = time.ParseDuration(raw.Fetch.RetryBaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.retry_base_delay %q: %w", raw.Fetch.RetryBaseDelay, err)
		}
	}

	rpm := raw.Fetch.RequestsPerMinute
	if rpm == 0 {
		rpm = 6 // default: one request every 10s at most
	}

	storePath := raw.Store.Path
	if storePath == "" {
		storePath = defaultStorePath
	}

	cfg := &Config{
		Source: SourceConfig{
			BaseURL:   raw.Source.BaseURL,
			Query:     raw.Source.Query,
			UserAgent: userAgent,
			Timeout:   timeout,
		},
		Filters: FilterConfig{
			TitleKeywords: raw.Filters.TitleKeywords,
			Locations:     raw.Filters.Locations,
		},
		Schedule: ScheduleConfig{
			Times:      raw.Schedule.Times,
			RunOnStart: raw.Schedule.RunOnStart,
		},
		Store:        StoreConfig{Path: storePath},
		Notification: raw.Notification,
		Fetch: FetchConfig{
			MaxRetries:        retries,
			RetryBaseDelay:    retryDelay,
			RequestsPerMinute: rpm,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

var timeOfDayRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

func validate(cfg *Config) error {
	if cfg.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if !strings.HasPrefix(cfg.Source.BaseURL, "http://") && !strings.HasPrefix(cfg.Source.BaseURL, "https://") {
		return fmt.Errorf("source.base_url must be an http(s) URL, got %q", cfg.Source.BaseURL)
	}
	if cfg.Source.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be positive, got %v", cfg.Source.Timeout)
	}

	if len(cfg.Schedule.Times) == 0 {
		return fmt.Errorf("schedule.times must list at least one HH:MM time")
	}
	for _, t := range cfg.Schedule.Times {
		if !timeOfDayRegex.MatchString(t) {
			return fmt.Errorf("schedule.times entry %q is not a valid HH:MM time", t)
		}
	}

	if cfg.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must not be negative, got %d", cfg.Fetch.MaxRetries)
	}
	if cfg.Fetch.RequestsPerMinute <= 0 {
		return fmt.Errorf("fetch.requests_per_minute must be positive, got %v", cfg.Fetch.RequestsPerMinute)
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "email":
		e := cfg.Notification.Email
		if e.SMTPHost == "" || e.SMTPPort == 0 {
			return fmt.Errorf("notification.email.smtp_host and smtp_port are required when type is \"email\"")
		}
		if e.From == "" || e.To == "" {
			return fmt.Errorf("notification.email.from and to are required when type is \"email\"")
		}
	case "slack":
		if !strings.HasPrefix(cfg.Notification.Slack.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.slack.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\", \"email\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}
