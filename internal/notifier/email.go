package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"

	"github.com/amoghj8/gradwatch/internal/config"
	"github.com/amoghj8/gradwatch/internal/model"
)

// Ensure EmailNotifier implements model.Notifier.
var _ model.Notifier = (*EmailNotifier)(nil)

// EmailNotifier mails the new-postings delta as a small HTML digest.
type EmailNotifier struct {
	cfg      config.EmailConfig
	password string
	logger   *slog.Logger
}

// NewEmailNotifier returns an SMTP notifier. password is resolved by the
// caller (config value or OS keychain) so this package stays free of
// credential lookup.
func NewEmailNotifier(cfg config.EmailConfig, password string, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:      cfg,
		password: password,
		logger:   logger,
	}
}

var emailBodyTmpl = template.Must(template.New("digest").Parse(`<h2>New job postings</h2>
<p>Found {{len .}} new posting(s):</p>
<ul>
{{range .}}  <li>
    <strong>{{.Title}}</strong><br>
    {{if .Location}}{{.Location}}<br>{{end}}
    {{if .PostedAt}}Posted: {{.PostedAt.Format "Jan 2, 2006"}}<br>{{end}}
    {{if .URL}}<a href="{{.URL}}">{{.URL}}</a>{{else}}No URL available{{end}}
  </li>
{{end}}</ul>
`))

// Notify sends one digest email covering all postings.
func (n *EmailNotifier) Notify(postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&body, "To: %s\r\n", n.cfg.To)
	fmt.Fprintf(&body, "Subject: %d new job posting(s) found\r\n", len(postings))
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	body.WriteString("\r\n")

	if err := emailBodyTmpl.Execute(&body, postings); err != nil {
		return fmt.Errorf("render email body: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	auth := smtp.PlainAuth("", n.cfg.From, n.password, n.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{n.cfg.To}, body.Bytes()); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}

	n.logger.Info("email notification sent", "postings", len(postings), "to", n.cfg.To)
	return nil
}
