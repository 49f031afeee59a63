package notification

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"time"

	attendeeModels "confreg/internal/attendee/models"
	conferenceModels "confreg/internal/conference/models"
	registrationModels "confreg/internal/registration/models"
	platformStrings "confreg/pkg/platform/strings"
)

// cancelDateFormat matches the long-form timestamp quoted in
// cancellation notices.
const cancelDateFormat = "Monday, Jan 2, 2006 3:04 PM"

// Notifier composes and sends every registration lifecycle email. All
// methods are fire-and-forget: failures are logged by the mailer and
// never surface to the calling workflow.
type Notifier struct {
	composer *Composer
	mailer   *Mailer
	calendar *CalendarBuilder
	conf     *conferenceModels.Conference
	sysadmin string
	logger   *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNotifierLogger sets the notifier logger.
func WithNotifierLogger(logger *slog.Logger) NotifierOption {
	return func(n *Notifier) { n.logger = logger }
}

// NewNotifier creates a Notifier for one conference.
func NewNotifier(composer *Composer, mailer *Mailer, calendar *CalendarBuilder, conf *conferenceModels.Conference, sysadmin string, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		composer: composer,
		mailer:   mailer,
		calendar: calendar,
		conf:     conf,
		sysadmin: sysadmin,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SendConfirmation mails the registration confirmation with the
// calendar attachment. New registrations also go to the conference
// POCs; a managed registration copies the admin. It reports whether
// the mail was handed to the relay, so callers only flag a
// registration confirmed after an actual send.
func (n *Notifier) SendConfirmation(ctx context.Context, r *registrationModels.RSVP, isNew bool) bool {
	content, err := n.composer.Compose(ctx, "confirmation", r.Attendee.Email, nil)
	if err != nil {
		n.logger.ErrorContext(ctx, "confirmation compose failed", "error", err, "email", r.Attendee.Email)
		return false
	}

	subject := "Registration Update Confirmation"
	if isNew {
		subject = "New Registration Confirmation"
	}

	msg := Message{
		To:        []string{r.Attendee.Email},
		Subject:   subject,
		HTML:      content.HTML,
		Resources: content.Resources,
	}
	if r.Admin != nil {
		msg.CC = []string{r.Admin.Email}
	}
	if isNew {
		msg.BCC = n.conf.POCs
	}

	if ical, err := n.calendar.Calendar(r); err == nil {
		msg.Attachments = []Attachment{{
			Name:        n.calendar.AttachmentName(),
			ContentType: "text/calendar",
			Content:     ical,
		}}
	} else {
		n.logger.WarnContext(ctx, "calendar render failed", "error", err, "email", r.Attendee.Email)
	}

	return n.mailer.Send(ctx, msg)
}

// SendChangeNotice reports what an update changed to the conference
// POCs.
func (n *Notifier) SendChangeNotice(ctx context.Context, r *registrationModels.RSVP, changes []registrationModels.Change) {
	if len(changes) == 0 || len(n.conf.POCs) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>Registration update for %s (%s):</p>",
		html.EscapeString(r.Attendee.FullName()), html.EscapeString(r.Attendee.Email))
	b.WriteString("<table><tr><th>Item</th><th>Was</th><th>Now</th></tr>")
	for _, c := range changes {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(c.Item), html.EscapeString(c.Original), html.EscapeString(c.Final))
	}
	b.WriteString("</table>")

	n.mailer.Send(ctx, Message{
		To:      n.conf.POCs,
		Subject: n.conf.Title + " - Registration Update",
		HTML:    b.String(),
	})
}

// SendCancellation confirms a cancellation to the attendee, copying
// the conference POCs.
func (n *Notifier) SendCancellation(ctx context.Context, r *registrationModels.RSVP) {
	body := fmt.Sprintf(
		"%s,<p>Your registration to the %s was cancelled on %s.</p>"+
			"If you wish to re-register, you must do so by the close of the registration window.<p>%s</p>",
		html.EscapeString(r.Attendee.FirstName),
		html.EscapeString(n.conf.Title),
		r.CancelDate.Format(cancelDateFormat),
		html.EscapeString(r.ConfirmationCode))

	n.mailer.Send(ctx, Message{
		To:      []string{r.Attendee.Email},
		BCC:     n.conf.POCs,
		Subject: n.conf.Title + " Registration Cancellation",
		HTML:    body,
	})
}

// SendInvitation mails the conference invitation with the registration
// deadline the template renders.
func (n *Notifier) SendInvitation(ctx context.Context, a *attendeeModels.Attendee, deadline time.Time) {
	extra := url.Values{}
	if !registrationModels.DateUnset(deadline) {
		extra.Set("deadline", deadline.Format("2006-01-02"))
		extra.Set("deadlineDisplay", fmt.Sprintf("%s, %s %d%s",
			deadline.Weekday(), deadline.Month(), deadline.Day(), platformStrings.DaySuffix(deadline.Day())))
	}
	content, err := n.composer.Compose(ctx, "invitation", a.Email, extra)
	if err != nil {
		n.logger.ErrorContext(ctx, "invitation compose failed", "error", err, "email", a.Email)
		return
	}

	n.mailer.Send(ctx, Message{
		To:        []string{a.Email},
		Subject:   "Invitation to " + n.conf.Title,
		HTML:      content.HTML,
		Resources: content.Resources,
	})
}

// SendInvitationReminder nudges an invitee who has not registered.
func (n *Notifier) SendInvitationReminder(ctx context.Context, a *attendeeModels.Attendee) {
	content, err := n.composer.Compose(ctx, "reminder", a.Email, nil)
	if err != nil {
		n.logger.ErrorContext(ctx, "reminder compose failed", "error", err, "email", a.Email)
		return
	}

	n.mailer.Send(ctx, Message{
		To:        []string{a.Email},
		Subject:   "Invitation to " + n.conf.Title,
		HTML:      content.HTML,
		Resources: content.Resources,
	})
}

// SendStaffInvitation mails the staff self-registration link. Staff
// invitations are high priority and copy the sysadmin mailbox.
func (n *Notifier) SendStaffInvitation(ctx context.Context, a *attendeeModels.Attendee, registrationURL string) {
	content, err := n.composer.Compose(ctx, "staff-invitation", a.Email, nil)
	if err != nil {
		n.logger.ErrorContext(ctx, "staff invitation compose failed", "error", err, "email", a.Email)
		return
	}
	body := strings.ReplaceAll(content.HTML, "{registrationlink}", html.EscapeString(registrationURL))

	msg := Message{
		To:           []string{a.Email},
		Subject:      n.conf.Title + " - Staff Registration",
		HTML:         body,
		Resources:    content.Resources,
		HighPriority: true,
	}
	if n.sysadmin != "" {
		msg.BCC = []string{n.sysadmin}
	}
	n.mailer.Send(ctx, msg)
}
