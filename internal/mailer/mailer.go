// Package mailer delivers finished comments to the PR manager over SMTP.
// Delivery is best-effort: a mail failure never fails the generation request.
package mailer

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/presswire-ai/presswire/internal/config"
)

// CommentMail is the payload of one notification.
type CommentMail struct {
	Executive   string
	MediaOutlet string
	Journalist  string
	Question    string
	Comment     string
	Passed      bool
	Evaluated   bool
	Overall     float64
}

// Mailer sends comment notifications. Constructs disabled when SMTP settings
// are incomplete.
type Mailer struct {
	enabled bool
	dialer  *gomail.Dialer
	from    string
	to      string
}

func New(cfg config.EmailConfig) *Mailer {
	m := &Mailer{
		from: cfg.From,
		to:   cfg.PRManagerEmail,
	}
	if cfg.SMTPHost == "" || cfg.From == "" || cfg.PRManagerEmail == "" {
		slog.Info("email notifications disabled")
		return m
	}
	m.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.From, cfg.Password)
	m.enabled = true
	return m
}

func (m *Mailer) Enabled() bool { return m.enabled }

// SendCommentReady emails the finished comment. Returns nil when disabled.
func (m *Mailer) SendCommentReady(mail CommentMail) error {
	if !m.enabled {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", fmt.Sprintf("Comment ready: %s for %s", mail.Executive, mail.MediaOutlet))
	msg.SetBody("text/html", buildBody(mail))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending comment mail: %w", err)
	}
	return nil
}

func buildBody(mail CommentMail) string {
	var b strings.Builder
	b.WriteString("<h2>Comment ready for review</h2>")
	fmt.Fprintf(&b, "<p><b>Executive:</b> %s<br>", html.EscapeString(mail.Executive))
	fmt.Fprintf(&b, "<b>Outlet:</b> %s", html.EscapeString(mail.MediaOutlet))
	if mail.Journalist != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(mail.Journalist))
	}
	b.WriteString("</p>")
	fmt.Fprintf(&b, "<p><b>Question:</b> %s</p>", html.EscapeString(mail.Question))
	fmt.Fprintf(&b, "<blockquote>%s</blockquote>", html.EscapeString(mail.Comment))
	if mail.Evaluated {
		verdict := "passed"
		if !mail.Passed {
			verdict = "below threshold"
		}
		fmt.Fprintf(&b, "<p>Quality check: %s (%.2f)</p>", verdict, mail.Overall)
	} else {
		b.WriteString("<p>Quality check: skipped</p>")
	}
	return b.String()
}
