package notifier

import (
	"log/slog"
	"time"

	"github.com/amoghj8/gradwatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting with title, location, URL, and posted_at.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(postings []model.Posting) error {
	for _, p := range postings {
		args := []any{"title", p.Title, "location", p.Location, "url", p.URL}
		if p.PostedAt != nil {
			args = append(args, "posted_at", *p.PostedAt)
		}
		n.logger.Info("new posting", args...)
	}
	return nil
}

// SendTestMessage sends a dummy posting notification to verify the
// configured channel works end to end.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	test := model.Posting{
		Identity:  "id:test-001",
		Title:     "Test Notification — Integration Verified",
		Location:  "Everywhere",
		URL:       "https://careers.salesforce.com/en/jobs/",
		PostedAt:  &now,
		FirstSeen: now,
		LastSeen:  now,
	}
	return n.Notify([]model.Posting{test})
}
