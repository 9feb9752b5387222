package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
source:
  base_url: https://careers.example.com/en/jobs/
schedule:
  times: ["09:00"]
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Source.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s default", cfg.Source.Timeout)
	}
	if !strings.HasPrefix(cfg.Source.UserAgent, "Mozilla/5.0") {
		t.Errorf("user agent = %q, want browser default", cfg.Source.UserAgent)
	}
	if cfg.Fetch.MaxRetries != 2 {
		t.Errorf("max retries = %d, want 2 default", cfg.Fetch.MaxRetries)
	}
	if cfg.Fetch.RetryBaseDelay != 5*time.Second {
		t.Errorf("retry base delay = %v, want 5s default", cfg.Fetch.RetryBaseDelay)
	}
	if cfg.Fetch.RequestsPerMinute != 6 {
		t.Errorf("requests per minute = %v, want 6 default", cfg.Fetch.RequestsPerMinute)
	}
	if cfg.Store.Path != "gradwatch.db" {
		t.Errorf("store path = %q, want gradwatch.db default", cfg.Store.Path)
	}
	if cfg.Notification.Type != "" {
		t.Errorf("notification type = %q, want empty (log)", cfg.Notification.Type)
	}
}

func TestLoadFullConfig(t *testing.T) {
	content := `
source:
  base_url: https://careers.salesforce.com/en/jobs/
  query:
    search: software engineer
    team: Software Engineering
    jobtype: New Grads
    pagesize: "50"
  timeout: 45s
filters:
  title_keywords: ["software engineer", "new grad"]
  locations: ["san francisco", "remote"]
schedule:
  times: ["09:00", "15:00", "21:00"]
  run_on_start: true
store:
  path: /var/lib/gradwatch/watch.db
notification:
  type: slack
  slack:
    webhook_url: https://hooks.slack.com/services/T00/B00/xyz
fetch:
  max_retries: 4
  retry_base_delay: 2s
  requests_per_minute: 3
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Source.Query["search"] != "software engineer" {
		t.Errorf("query search = %q", cfg.Source.Query["search"])
	}
	if cfg.Source.Timeout != 45*time.Second {
		t.Errorf("timeout = %v", cfg.Source.Timeout)
	}
	if len(cfg.Schedule.Times) != 3 || !cfg.Schedule.RunOnStart {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Fetch.MaxRetries != 4 {
		t.Errorf("max retries = %d", cfg.Fetch.MaxRetries)
	}
	if cfg.Notification.Type != "slack" {
		t.Errorf("notification type = %q", cfg.Notification.Type)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("GRADWATCH_TEST_WEBHOOK", "https://hooks.slack.com/services/T11/B11/secret")
	content := minimalConfig + `
notification:
  type: slack
  slack:
    webhook_url: ${GRADWATCH_TEST_WEBHOOK}
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.Slack.WebhookURL != "https://hooks.slack.com/services/T11/B11/secret" {
		t.Errorf("webhook = %q, env var not expanded", cfg.Notification.Slack.WebhookURL)
	}
}

func TestLoadZeroMaxRetriesIsHonored(t *testing.T) {
	content := minimalConfig + `
fetch:
  max_retries: 0
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fetch.MaxRetries != 0 {
		t.Errorf("max retries = %d, want explicit 0 respected", cfg.Fetch.MaxRetries)
	}
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing base url", `
schedule:
  times: ["09:00"]
`},
		{"non-http base url", `
source:
  base_url: ftp://example.com/jobs
schedule:
  times: ["09:00"]
`},
		{"no schedule times", `
source:
  base_url: https://example.com/jobs
`},
		{"malformed schedule time", `
source:
  base_url: https://example.com/jobs
schedule:
  times: ["25:00"]
`},
		{"unknown notification type", minimalConfig + `
notification:
  type: pager
`},
		{"email without smtp host", minimalConfig + `
notification:
  type: email
  email:
    from: a@example.com
    to: b@example.com
`},
		{"slack with non-slack url", minimalConfig + `
notification:
  type: slack
  slack:
    webhook_url: https://example.com/webhook
`},
		{"negative retries", minimalConfig + `
fetch:
  max_retries: -1
`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, c.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
