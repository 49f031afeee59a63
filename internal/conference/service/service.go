package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	attendeeModels "confreg/internal/attendee/models"
	"confreg/internal/conference/metrics"
	"confreg/internal/conference/models"
	"confreg/internal/conference/store"
	registrationModels "confreg/internal/registration/models"
	dErrors "confreg/pkg/domain-errors"
)

// batchWorkers bounds the fan-out of the mailing jobs so one batch
// cannot saturate the SMTP relay or the directory service.
const batchWorkers = 8

// ConferenceStore is the persistence surface the service depends on.
type ConferenceStore interface {
	Metadata(ctx context.Context, conferenceID int) (*models.Conference, error)
	Invitees(ctx context.Context, conferenceID, inviteClass int) ([]store.Invitee, error)
	UnsentInvitations(ctx context.Context, conferenceID, inviteClass int) ([]store.Invitee, error)
	UnregisteredInvitees(ctx context.Context, conferenceID, inviteClass int) ([]store.Invitee, error)
	Staff(ctx context.Context, conferenceID int) ([]store.Invitee, error)
	ConfirmationBatch(ctx context.Context, conferenceID int, ignoreSent bool) ([]store.ConfirmationRow, error)
	GuestSpeakers(ctx context.Context, conferenceID int) ([]store.Speaker, error)
	AddInvitee(ctx context.Context, conferenceID int, inv store.NewInvitee) error
	MarkInviteSent(ctx context.Context, conferenceID, userID int) error
	LogConfirmation(ctx context.Context, userID int, code string) error
	Event(ctx context.Context, conferenceID, eventID int) (*models.ConferenceEvent, error)
	Events(ctx context.Context, conferenceID int) ([]models.ConferenceEvent, error)
	SaveEvent(ctx context.Context, conferenceID int, e *models.ConferenceEvent, now time.Time) (int, error)
	DeleteEvent(ctx context.Context, conferenceID int, e *models.ConferenceEvent) error
	EventParentPath(ctx context.Context, eventID int) (string, error)
	ValidateEventDatesToParent(ctx context.Context, parentEventID int, start, stop time.Time) (bool, error)
}

// Attendees is the slice of the attendee service the batch jobs need.
type Attendees interface {
	Employee(ctx context.Context, addr string) (*attendeeModels.Attendee, error)
	EmployeeByID(ctx context.Context, userID int) (*attendeeModels.Attendee, error)
	IsExec(ctx context.Context, a *attendeeModels.Attendee) (bool, error)
}

// Registrations is the slice of the registration service the
// confirmation jobs need.
type Registrations interface {
	Load(ctx context.Context, a *attendeeModels.Attendee, invitationType string) *registrationModels.RSVP
	EnsureConfirmationCode(ctx context.Context, r *registrationModels.RSVP) error
	MarkConfirmationSent(ctx context.Context, r *registrationModels.RSVP) error
}

// Venues resolves room names to venue IDs for the event catalog.
type Venues interface {
	VenueIDFromRoomName(ctx context.Context, roomName string) (int, error)
}

// Notifier delivers the conference mailings. Implementations are
// fire-and-forget; delivery failures are their own concern.
type Notifier interface {
	SendInvitation(ctx context.Context, a *attendeeModels.Attendee, deadline time.Time)
	SendInvitationReminder(ctx context.Context, a *attendeeModels.Attendee)
	SendStaffInvitation(ctx context.Context, a *attendeeModels.Attendee, registrationURL string)
	SendConfirmation(ctx context.Context, r *registrationModels.RSVP, isNew bool) bool
}

// Clock supplies the current time. Injectable for tests.
type Clock func() time.Time

// Service coordinates conference metadata, the invitation list, the
// batch mailings and the event catalog.
type Service struct {
	store         ConferenceStore
	attendees     Attendees
	registrations Registrations
	venues        Venues
	notifier      Notifier
	conf          *models.Conference
	staffRegURL   string
	logger        *slog.Logger
	metrics       *metrics.Metrics
	clock         Clock
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics wires conference metrics into the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithStaffRegistrationURL sets the self-service link included in
// staff invitations.
func WithStaffRegistrationURL(url string) Option {
	return func(s *Service) { s.staffRegURL = url }
}

// New creates a conference service bound to one conference.
func New(st ConferenceStore, attendees Attendees, registrations Registrations, venues Venues, notifier Notifier, conf *models.Conference, opts ...Option) *Service {
	s := &Service{
		store:         st,
		attendees:     attendees,
		registrations: registrations,
		venues:        venues,
		notifier:      notifier,
		conf:          conf,
		logger:        slog.Default(),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Conference returns the conference this service is bound to.
func (s *Service) Conference() *models.Conference { return s.conf }

// SendInvitations mails the invitation to every invitee in a class
// whose invitation has not gone out yet, and flags each one sent.
// It returns how many invitations were handed to the mailer.
func (s *Service) SendInvitations(ctx context.Context, inviteClass int) (int, error) {
	invitees, err := s.store.UnsentInvitations(ctx, s.conf.ID, inviteClass)
	if err != nil {
		return 0, err
	}
	deadline := s.conf.DeadlineForClass(inviteClass)

	return s.fanOut(ctx, "invitations", len(invitees), func(ctx context.Context, i int) error {
		a, err := s.attendees.Employee(ctx, invitees[i].Email)
		if err != nil {
			return err
		}
		s.notifier.SendInvitation(ctx, a, deadline)
		if s.metrics != nil {
			s.metrics.InvitationsSent.Inc()
		}
		return s.store.MarkInviteSent(ctx, s.conf.ID, invitees[i].UserID)
	})
}

// ResendInvitations mails the invitation to every invitee in a class,
// sent flag or not.
func (s *Service) ResendInvitations(ctx context.Context, inviteClass int) (int, error) {
	invitees, err := s.store.Invitees(ctx, s.conf.ID, inviteClass)
	if err != nil {
		return 0, err
	}
	deadline := s.conf.DeadlineForClass(inviteClass)

	return s.fanOut(ctx, "invitations", len(invitees), func(ctx context.Context, i int) error {
		a, err := s.attendees.Employee(ctx, invitees[i].Email)
		if err != nil {
			return err
		}
		s.notifier.SendInvitation(ctx, a, deadline)
		if s.metrics != nil {
			s.metrics.InvitationsSent.Inc()
		}
		return nil
	})
}

// SendReminders nudges invitees in a class who have not registered.
func (s *Service) SendReminders(ctx context.Context, inviteClass int) (int, error) {
	invitees, err := s.store.UnregisteredInvitees(ctx, s.conf.ID, inviteClass)
	if err != nil {
		return 0, err
	}

	return s.fanOut(ctx, "reminders", len(invitees), func(ctx context.Context, i int) error {
		a, err := s.attendees.Employee(ctx, invitees[i].Email)
		if err != nil {
			return err
		}
		s.notifier.SendInvitationReminder(ctx, a)
		if s.metrics != nil {
			s.metrics.RemindersSent.Inc()
		}
		return nil
	})
}

// SendStaffInvitations mails the staff self-registration link to
// everyone working the conference.
func (s *Service) SendStaffInvitations(ctx context.Context) (int, error) {
	staff, err := s.store.Staff(ctx, s.conf.ID)
	if err != nil {
		return 0, err
	}

	return s.fanOut(ctx, "staff_invitations", len(staff), func(ctx context.Context, i int) error {
		a, err := s.attendees.Employee(ctx, staff[i].Email)
		if err != nil {
			return err
		}
		s.notifier.SendStaffInvitation(ctx, a, s.staffRegURL+"?user="+staff[i].Login)
		return nil
	})
}

// SendConfirmations mails the pending confirmation emails, marking
// each RSVP confirmed and logging the code that went out.
func (s *Service) SendConfirmations(ctx context.Context) (int, error) {
	batch, err := s.store.ConfirmationBatch(ctx, s.conf.ID, false)
	if err != nil {
		return 0, err
	}

	return s.fanOut(ctx, "confirmations", len(batch), func(ctx context.Context, i int) error {
		row := batch[i]
		a, err := s.attendees.EmployeeByID(ctx, row.UserID)
		if err != nil {
			return err
		}
		r := s.registrations.Load(ctx, a, row.InvitationType)
		if err := s.registrations.EnsureConfirmationCode(ctx, r); err != nil {
			return err
		}
		if !s.notifier.SendConfirmation(ctx, r, false) {
			return dErrors.New(dErrors.CodeUnavailable, "confirmation mail not delivered")
		}
		if s.metrics != nil {
			s.metrics.ConfirmationsSent.Inc()
		}
		if err := s.registrations.MarkConfirmationSent(ctx, r); err != nil {
			return err
		}
		return s.store.LogConfirmation(ctx, row.UserID, r.ConfirmationCode)
	})
}

// CorrectMissingConfirmationCodes backfills a confirmation code for
// every registration that lacks one, without mailing anyone.
func (s *Service) CorrectMissingConfirmationCodes(ctx context.Context) (int, error) {
	batch, err := s.store.ConfirmationBatch(ctx, s.conf.ID, true)
	if err != nil {
		return 0, err
	}

	var fixed atomic.Int64
	_, err = s.fanOut(ctx, "code_backfill", len(batch), func(ctx context.Context, i int) error {
		row := batch[i]
		a, err := s.attendees.EmployeeByID(ctx, row.UserID)
		if err != nil {
			return err
		}
		r := s.registrations.Load(ctx, a, row.InvitationType)
		if r.ConfirmationCode != "" {
			return nil
		}
		if err := s.registrations.EnsureConfirmationCode(ctx, r); err != nil {
			return err
		}
		fixed.Add(1)
		if s.metrics != nil {
			s.metrics.CodesBackfilled.Inc()
		}
		return nil
	})
	return int(fixed.Load()), err
}

// AddInvitee puts an employee on the invitation list. The invite class
// depends on whether primary registration is still open.
func (s *Service) AddInvitee(ctx context.Context, addr, divisionText, inviteType string) error {
	a, err := s.attendees.Employee(ctx, addr)
	if err != nil {
		return err
	}

	isExec, err := s.attendees.IsExec(ctx, a)
	if err != nil {
		s.logger.WarnContext(ctx, "exec check failed", "error", err, "email", addr)
	}

	inviteClass := models.InviteClassPrimary
	if !s.clock().Before(s.conf.PrimaryRegistrationClosed) {
		inviteClass = models.InviteClassLate
	}

	return s.store.AddInvitee(ctx, s.conf.ID, store.NewInvitee{
		UserID:       a.ID,
		Email:        a.Email,
		DivisionText: divisionText,
		InviteType:   inviteType,
		InviteClass:  inviteClass,
		IsExec:       isExec,
	})
}

// Events lists the event catalog.
func (s *Service) Events(ctx context.Context) ([]models.ConferenceEvent, error) {
	return s.store.Events(ctx, s.conf.ID)
}

// Event loads one catalog entry.
func (s *Service) Event(ctx context.Context, eventID int) (*models.ConferenceEvent, error) {
	return s.store.Event(ctx, s.conf.ID, eventID)
}

// SaveEvent validates and upserts a catalog entry, resolving the venue
// from the room name. A child event must fall inside its parent's
// window.
func (s *Service) SaveEvent(ctx context.Context, e *models.ConferenceEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}

	if e.ParentID > 0 {
		ok, err := s.store.ValidateEventDatesToParent(ctx, e.ParentID, e.Start, e.Stop)
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.New(dErrors.CodeInvariantViolation,
				"event times fall outside the parent event")
		}
	}

	if e.Location != "" {
		venueID, err := s.venues.VenueIDFromRoomName(ctx, e.Location)
		if err != nil {
			s.logger.WarnContext(ctx, "venue lookup failed", "error", err, "room", e.Location)
		} else {
			e.VenueID = venueID
		}
	}

	id, err := s.store.SaveEvent(ctx, s.conf.ID, e, s.clock())
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// DeleteEvent removes a catalog entry.
func (s *Service) DeleteEvent(ctx context.Context, eventID int) error {
	e, err := s.store.Event(ctx, s.conf.ID, eventID)
	if err != nil {
		return err
	}
	return s.store.DeleteEvent(ctx, s.conf.ID, e)
}

// EventParentPath renders the breadcrumb of an event's ancestors.
func (s *Service) EventParentPath(ctx context.Context, eventID int) (string, error) {
	return s.store.EventParentPath(ctx, eventID)
}

// fanOut runs fn for each index with bounded concurrency. Individual
// failures are logged and counted but do not stop the rest of the
// batch; the return value is how many items succeeded.
func (s *Service) fanOut(ctx context.Context, job string, n int, fn func(ctx context.Context, i int) error) (int, error) {
	var succeeded atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := fn(ctx, i); err != nil {
				s.logger.ErrorContext(ctx, "batch item failed", "job", job, "error", err)
				if s.metrics != nil {
					s.metrics.BatchFailures.WithLabelValues(job).Inc()
				}
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(succeeded.Load()), err
}
