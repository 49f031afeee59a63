package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	attendeeModels "confreg/internal/attendee/models"
	conferenceModels "confreg/internal/conference/models"
	"confreg/internal/registration/metrics"
	"confreg/internal/registration/models"
	regStore "confreg/internal/registration/store"
	dErrors "confreg/pkg/domain-errors"
	"confreg/pkg/platform/sentinel"
)

// RSVPStore is the persistence surface the service depends on.
type RSVPStore interface {
	FetchScalars(ctx context.Context, conferenceID, userID int) (*regStore.Scalars, error)
	EventSelections(ctx context.Context, conferenceID, userID int) ([]models.EventItem, error)
	MealSelections(ctx context.Context, conferenceID, userID int) ([]models.MealItem, error)
	TransportationSelections(ctx context.Context, conferenceID, userID int) ([]models.TransportationItem, error)
	MealDetails(ctx context.Context, conferenceID, userID int) ([]models.MealDetail, error)
	TransportationDetails(ctx context.Context, conferenceID, userID int) ([]models.TransportationDetail, error)
	SaveScalars(ctx context.Context, r *models.RSVP, conferenceID int) error
	SaveEventSelections(ctx context.Context, r *models.RSVP) error
	SaveMealSelections(ctx context.Context, r *models.RSVP, conferenceID int) error
	SaveTransportationSelections(ctx context.Context, r *models.RSVP, conferenceID int) error
	Cancel(ctx context.Context, conferenceID, userID int, reason string) error
	IsUniqueConfirmationCode(ctx context.Context, code string) (bool, error)
	UpdateConfirmationCode(ctx context.Context, conferenceID, userID int, code string) error
	MarkConfirmationSent(ctx context.Context, userID int, code string) error
}

// Attendees is the slice of the attendee service the registration
// workflow needs.
type Attendees interface {
	Employee(ctx context.Context, addr string) (*attendeeModels.Attendee, error)
	VendorStaff(ctx context.Context, addr string) (*attendeeModels.Attendee, error)
	Lookup(ctx context.Context, addr string) (*attendeeModels.Attendee, error)
	Save(ctx context.Context, a *attendeeModels.Attendee) error
}

// Notifier delivers registration lifecycle emails. Implementations are
// fire-and-forget; delivery failures are their own concern and never
// block the registration workflow.
type Notifier interface {
	SendConfirmation(ctx context.Context, r *models.RSVP, isNew bool) bool
	SendChangeNotice(ctx context.Context, r *models.RSVP, changes []models.Change)
	SendCancellation(ctx context.Context, r *models.RSVP)
}

// Clock supplies the current time. Injectable for tests.
type Clock func() time.Time

// Service coordinates the RSVP lifecycle for one conference.
type Service struct {
	store     RSVPStore
	attendees Attendees
	notifier  Notifier
	conf      *conferenceModels.Conference
	logger    *slog.Logger
	metrics   *metrics.Metrics
	clock     Clock
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics wires registration metrics into the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// New creates a registration service for the configured conference.
func New(store RSVPStore, attendees Attendees, notifier Notifier, conf *conferenceModels.Conference, opts ...Option) *Service {
	s := &Service{
		store:     store,
		attendees: attendees,
		notifier:  notifier,
		conf:      conf,
		logger:    slog.Default(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Conference exposes the conference the service registers attendees for.
func (s *Service) Conference() *conferenceModels.Conference { return s.conf }

// Load assembles the full RSVP aggregate for an attendee. When no
// persisted registration exists the aggregate comes back as a fresh
// one with check-in and check-out defaulted from the conference
// schedule. Fetch failures mark the aggregate invalid instead of
// raising so callers can still render the form.
func (s *Service) Load(ctx context.Context, a *attendeeModels.Attendee, invitationType string) *models.RSVP {
	now := s.clock()
	r := models.New(a, invitationType, now)
	r.Valid = true

	sc, err := s.store.FetchScalars(ctx, s.conf.ID, a.ID)
	switch {
	case err == nil:
		s.applyScalars(ctx, r, sc, now)
	case errors.Is(err, sentinel.ErrNotFound):
		r.CheckInDate = s.conf.CheckInStart
		r.CheckOutDate = s.conf.Stop
		r.Valid = false
	default:
		s.logger.ErrorContext(ctx, "rsvp fetch failed", "error", err, "user_id", a.ID)
		r.Valid = false
		return r
	}

	s.loadSelections(ctx, r)
	s.captureSnapshot(ctx, r)
	r.ClearDirty()
	return r
}

// applyScalars folds a persisted RSVP row into the aggregate. A
// cancelled registration keeps its history but the registration date
// resets to now so a re-registration reads as new activity.
func (s *Service) applyScalars(ctx context.Context, r *models.RSVP, sc *regStore.Scalars, now time.Time) {
	r.InvitationType = sc.InvitationType
	r.ConfirmationCode = sc.ConfirmationCode
	r.ConfirmDate = sc.ConfirmDate
	r.CancelDate = sc.CancelDate
	r.CheckInDate = sc.CheckInDate
	r.CheckOutDate = sc.CheckOutDate
	r.WelcomeReception = sc.WelcomeReception
	r.Golfing = sc.Golfing
	r.PhotoWaiver = sc.PhotoWaiver
	r.Notes = sc.Notes

	if models.DateUnset(sc.CancelDate) {
		r.RegistrationDate = sc.RegistrationDate
	} else {
		r.RegistrationDate = now
	}

	if sc.AdminEmail != "" {
		admin, err := s.attendees.Employee(ctx, sc.AdminEmail)
		if err != nil {
			s.logger.WarnContext(ctx, "rsvp admin lookup failed",
				"error", err, "admin_email", sc.AdminEmail)
		} else {
			r.Admin = admin
		}
	}
}

func (s *Service) loadSelections(ctx context.Context, r *models.RSVP) {
	events, err := s.store.EventSelections(ctx, s.conf.ID, r.Attendee.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "event selections fetch failed", "error", err, "user_id", r.Attendee.ID)
		r.Valid = false
	} else {
		r.Events = events
	}

	meals, err := s.store.MealSelections(ctx, s.conf.ID, r.Attendee.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "meal selections fetch failed", "error", err, "user_id", r.Attendee.ID)
		r.Valid = false
	} else {
		r.Meals = meals
	}

	transportation, err := s.store.TransportationSelections(ctx, s.conf.ID, r.Attendee.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "transportation selections fetch failed", "error", err, "user_id", r.Attendee.ID)
		r.Valid = false
	} else {
		r.Transportation = transportation
	}
}

// captureSnapshot records the loaded state so Update can report what
// changed.
func (s *Service) captureSnapshot(ctx context.Context, r *models.RSVP) {
	meals, err := s.store.MealDetails(ctx, s.conf.ID, r.Attendee.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "meal detail fetch failed", "error", err, "user_id", r.Attendee.ID)
	}
	transportation, err := s.store.TransportationDetails(ctx, s.conf.ID, r.Attendee.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "transportation detail fetch failed", "error", err, "user_id", r.Attendee.ID)
	}
	r.Original = r.Snapshot(meals, transportation)
}

// Update persists the aggregate. A new or previously cancelled
// registration stamps a fresh registration date and confirmation code
// first. Every section is uploaded even when an earlier one fails;
// Valid reports whether all of them landed. Notifications go out only
// on a fully successful save.
func (s *Service) Update(ctx context.Context, r *models.RSVP) error {
	now := s.clock()
	wasNew := r.IsNew() || !r.IsCurrent()

	if wasNew {
		code, err := s.generateUniqueCode(ctx, r.Attendee)
		if err != nil {
			return fmt.Errorf("prepare registration: %w", err)
		}
		r.RegistrationDate = now
		r.ConfirmationCode = code
	}
	r.CancelDate = models.NoDate

	ok := true
	if err := s.attendees.Save(ctx, r.Attendee); err != nil {
		s.logger.ErrorContext(ctx, "attendee save failed", "error", err, "user_id", r.Attendee.ID)
		ok = false
	}
	if err := s.store.SaveScalars(ctx, r, s.conf.ID); err != nil {
		s.logger.ErrorContext(ctx, "rsvp save failed", "error", err, "user_id", r.Attendee.ID)
		ok = false
	}
	if err := s.store.SaveEventSelections(ctx, r); err != nil {
		s.logger.ErrorContext(ctx, "event selections save failed", "error", err, "user_id", r.Attendee.ID)
		ok = false
	}
	if err := s.store.SaveMealSelections(ctx, r, s.conf.ID); err != nil {
		s.logger.ErrorContext(ctx, "meal selections save failed", "error", err, "user_id", r.Attendee.ID)
		ok = false
	}
	if err := s.store.SaveTransportationSelections(ctx, r, s.conf.ID); err != nil {
		s.logger.ErrorContext(ctx, "transportation selections save failed", "error", err, "user_id", r.Attendee.ID)
		ok = false
	}
	if r.Admin != nil {
		if err := s.attendees.Save(ctx, r.Admin); err != nil {
			s.logger.ErrorContext(ctx, "admin save failed", "error", err, "admin_id", r.Admin.ID)
			ok = false
		}
	}

	r.Valid = ok
	if !ok {
		return dErrors.New(dErrors.CodeUnavailable, "registration was not fully saved")
	}

	if s.metrics != nil {
		if wasNew {
			s.metrics.IncrementCreated()
		} else {
			s.metrics.IncrementUpdated()
		}
	}

	s.notify(ctx, r, wasNew)
	r.ClearDirty()
	return nil
}

// notify sends the confirmation email for a new registration, or a
// change notice listing the differences for an update.
func (s *Service) notify(ctx context.Context, r *models.RSVP, wasNew bool) {
	if s.notifier == nil {
		return
	}
	if wasNew {
		if !s.notifier.SendConfirmation(ctx, r, true) {
			s.logger.WarnContext(ctx, "confirmation mail not delivered", "email", r.Attendee.Email)
		}
		return
	}
	meals, err := s.store.MealDetails(ctx, s.conf.ID, r.Attendee.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "meal detail fetch for diff failed", "error", err)
	}
	transportation, err := s.store.TransportationDetails(ctx, s.conf.ID, r.Attendee.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "transportation detail fetch for diff failed", "error", err)
	}
	changes := r.Diff(meals, transportation)
	if len(changes) > 0 {
		s.notifier.SendChangeNotice(ctx, r, changes)
	}
}

// Cancel withdraws an active registration, clears its selections and
// sends the cancellation notice. Cancelling an already cancelled
// registration is a conflict.
func (s *Service) Cancel(ctx context.Context, r *models.RSVP, reason string) error {
	if !r.IsCurrent() {
		return dErrors.New(dErrors.CodeConflict, "registration is already cancelled")
	}
	if err := s.store.Cancel(ctx, s.conf.ID, r.Attendee.ID, reason); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "cancel registration")
	}

	r.CancelDate = s.clock()
	r.ClearSelections()
	if s.notifier != nil {
		s.notifier.SendCancellation(ctx, r)
	}
	r.ConfirmationCode = ""

	if s.metrics != nil {
		s.metrics.IncrementCancelled()
	}
	return nil
}

// EnsureConfirmationCode backfills a confirmation code for an RSVP
// that is missing one and persists it.
func (s *Service) EnsureConfirmationCode(ctx context.Context, r *models.RSVP) error {
	if r.ConfirmationCode != "" {
		return nil
	}
	code, err := s.generateUniqueCode(ctx, r.Attendee)
	if err != nil {
		return err
	}
	if err := s.store.UpdateConfirmationCode(ctx, s.conf.ID, r.Attendee.ID, code); err != nil {
		return fmt.Errorf("persist confirmation code: %w", err)
	}
	r.ConfirmationCode = code
	return nil
}

// MarkConfirmationSent flags an RSVP's confirmation as delivered.
func (s *Service) MarkConfirmationSent(ctx context.Context, r *models.RSVP) error {
	return s.store.MarkConfirmationSent(ctx, r.Attendee.ID, r.ConfirmationCode)
}

// MealDetails returns the display rows for an attendee's meal choices.
func (s *Service) MealDetails(ctx context.Context, userID int) ([]models.MealDetail, error) {
	return s.store.MealDetails(ctx, s.conf.ID, userID)
}

// TransportationDetails returns the display rows for an attendee's
// transportation choices.
func (s *Service) TransportationDetails(ctx context.Context, userID int) ([]models.TransportationDetail, error) {
	return s.store.TransportationDetails(ctx, s.conf.ID, userID)
}

// IsAdminFor reports whether admin manages the registration of the
// attendee at addr. An attendee who has not registered yet is open to
// any admin.
func (s *Service) IsAdminFor(ctx context.Context, admin *attendeeModels.Attendee, addr, invitationType string) (bool, error) {
	other, err := s.attendees.Lookup(ctx, addr)
	if err != nil {
		return false, err
	}
	r := s.Load(ctx, other, invitationType)
	if r.IsNew() {
		return true, nil
	}
	return r.Admin != nil && r.Admin.Email == admin.Email, nil
}
