package notification

import (
	"context"
	"io"
	"log/slog"

	"gopkg.in/gomail.v2"

	platformStrings "confreg/pkg/platform/strings"
)

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Message is one outgoing email.
type Message struct {
	To           []string
	CC           []string
	BCC          []string
	Subject      string
	HTML         string
	Resources    []Resource
	Attachments  []Attachment
	HighPriority bool
}

// Sender delivers assembled messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer assembles and delivers conference email. Delivery problems
// are logged and swallowed: registration workflows never fail because
// the relay is down.
type Mailer struct {
	sender      Sender
	from        string
	sysadmin    string
	enabled     bool
	testingOnly bool
	logger      *slog.Logger
}

// MailerOption configures a Mailer.
type MailerOption func(*Mailer)

// WithMailerLogger sets the mailer logger.
func WithMailerLogger(logger *slog.Logger) MailerOption {
	return func(m *Mailer) { m.logger = logger }
}

// WithSendingDisabled drops all messages instead of delivering them.
func WithSendingDisabled() MailerOption {
	return func(m *Mailer) { m.enabled = false }
}

// WithTestingOnly redirects every message to the sysadmin mailbox.
func WithTestingOnly() MailerOption {
	return func(m *Mailer) { m.testingOnly = true }
}

// NewMailer creates a Mailer delivering through sender.
func NewMailer(sender Sender, from, sysadmin string, opts ...MailerOption) *Mailer {
	m := &Mailer{
		sender:   sender,
		from:     from,
		sysadmin: sysadmin,
		enabled:  true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send delivers one message, returning whether it was handed to the
// relay.
func (m *Mailer) Send(ctx context.Context, msg Message) bool {
	if !m.enabled {
		m.logger.InfoContext(ctx, "email sending disabled, dropping message",
			"subject", msg.Subject, "to", msg.To)
		return false
	}

	to := platformStrings.NormalizeAddressList(msg.To)
	cc := platformStrings.NormalizeAddressList(msg.CC)
	bcc := platformStrings.NormalizeAddressList(msg.BCC)
	if m.testingOnly {
		to, cc, bcc = []string{m.sysadmin}, nil, nil
	}
	if len(to) == 0 {
		m.logger.WarnContext(ctx, "message has no recipients", "subject", msg.Subject)
		return false
	}

	out := gomail.NewMessage()
	out.SetHeader("From", m.from)
	out.SetHeader("To", to...)
	if len(cc) > 0 {
		out.SetHeader("Cc", cc...)
	}
	if len(bcc) > 0 {
		out.SetHeader("Bcc", bcc...)
	}
	out.SetHeader("Subject", msg.Subject)
	if msg.HighPriority {
		out.SetHeader("X-Priority", "1")
		out.SetHeader("Importance", "High")
	}
	out.SetBody("text/html", msg.HTML)

	for _, res := range msg.Resources {
		content := res.Content
		out.Embed(res.CID,
			gomail.SetHeader(map[string][]string{"Content-Type": {res.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}))
	}
	for _, att := range msg.Attachments {
		content := att.Content
		out.Attach(att.Name,
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}))
	}

	if err := m.sender.DialAndSend(out); err != nil {
		m.logger.ErrorContext(ctx, "email delivery failed",
			"error", err, "subject", msg.Subject, "to", to)
		return false
	}
	return true
}
