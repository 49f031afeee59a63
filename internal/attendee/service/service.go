package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"confreg/internal/attendee/metrics"
	"confreg/internal/attendee/models"
	"confreg/internal/directory"
	dErrors "confreg/pkg/domain-errors"
	"confreg/pkg/email"
	"confreg/pkg/platform/sentinel"
	platformStrings "confreg/pkg/platform/strings"
)

type AttendeeStore interface {
	FindEmployee(ctx context.Context, email string, conferenceID int) (*models.Attendee, error)
	FindEmployeeByID(ctx context.Context, userID, conferenceID int) (*models.Attendee, error)
	FindVendorStaff(ctx context.Context, email string, conferenceID int) (*models.Attendee, error)
	SaveContact(ctx context.Context, a *models.Attendee) error
	SaveEmployeeProfile(ctx context.Context, a *models.Attendee) error
	SaveVendorStaffProfile(ctx context.Context, a *models.Attendee, conferenceID int) error
	DivisionID(ctx context.Context, department string) (string, error)
	IsRegistered(ctx context.Context, email string, conferenceID int) (bool, error)
	IsConferenceAdmin(ctx context.Context, userID, conferenceID int) (bool, error)
	IsPresenter(ctx context.Context, userID, conferenceID int) (bool, error)
	IsExec(ctx context.Context, userID, conferenceID int) (bool, error)
	AdminFor(ctx context.Context, adminEmail string, conferenceID int) ([]string, error)
}

// Service resolves and provisions attendees. Employees missing from the
// registration database are created from their directory record on first
// touch.
type Service struct {
	store        AttendeeStore
	dir          directory.Client
	conferenceID int
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store AttendeeStore, dir directory.Client, conferenceID int, opts ...Option) *Service {
	s := &Service{store: store, dir: dir, conferenceID: conferenceID, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Employee returns the employee attendee for an email, provisioning from
// the directory when the registration database has no complete record.
func (s *Service) Employee(ctx context.Context, addr string) (*models.Attendee, error) {
	addr = email.Normalize(addr)
	if addr == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email is required")
	}

	a, err := s.store.FindEmployee(ctx, addr, s.conferenceID)
	switch {
	case err == nil && a.ID > 0 && a.Employee.EmployeeID != "":
		return a, nil
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "attendee lookup failed")
	}

	a, err = s.provisionEmployee(ctx, addr)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// EmployeeByID returns the employee attendee behind a surrogate ID.
func (s *Service) EmployeeByID(ctx context.Context, userID int) (*models.Attendee, error) {
	a, err := s.store.FindEmployeeByID(ctx, userID, s.conferenceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "attendee not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "attendee lookup failed")
	}
	return a, nil
}

// VendorStaff returns the vendor-staff attendee for an email. Unlike
// employees there is no provisioning path; staff are invited explicitly.
func (s *Service) VendorStaff(ctx context.Context, addr string) (*models.Attendee, error) {
	addr = email.Normalize(addr)
	a, err := s.store.FindVendorStaff(ctx, addr, s.conferenceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no vendor staff member by that email is invited")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "vendor staff lookup failed")
	}
	return a, nil
}

// Lookup tries the employee record first, then vendor staff.
func (s *Service) Lookup(ctx context.Context, addr string) (*models.Attendee, error) {
	a, err := s.Employee(ctx, addr)
	if err == nil {
		return a, nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}
	return s.VendorStaff(ctx, addr)
}

// Save persists contact fields and the variant profile. The contact row
// goes first so new attendees get their ID before the profile write.
func (s *Service) Save(ctx context.Context, a *models.Attendee) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveContact(ctx, a); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "saving attendee failed")
	}

	switch a.Kind {
	case models.KindEmployee:
		if err := s.store.SaveEmployeeProfile(ctx, a); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "saving employee profile failed")
		}
	case models.KindVendorStaff:
		if err := s.store.SaveVendorStaffProfile(ctx, a, s.conferenceID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "saving vendor staff profile failed")
		}
	}
	return nil
}

// IsRegistered reports whether the email holds a current registration.
func (s *Service) IsRegistered(ctx context.Context, addr string) (bool, error) {
	return s.store.IsRegistered(ctx, email.Normalize(addr), s.conferenceID)
}

// IsConferenceAdmin reports whether the attendee administers the conference.
func (s *Service) IsConferenceAdmin(ctx context.Context, a *models.Attendee) (bool, error) {
	return s.store.IsConferenceAdmin(ctx, a.ID, s.conferenceID)
}

// IsPresenter reports whether the attendee is speaking. Vendor staff
// never present.
func (s *Service) IsPresenter(ctx context.Context, a *models.Attendee) (bool, error) {
	if a.Kind == models.KindVendorStaff {
		return false, nil
	}
	return s.store.IsPresenter(ctx, a.ID, s.conferenceID)
}

// IsExec reports whether the attendee is an executive attendee.
func (s *Service) IsExec(ctx context.Context, a *models.Attendee) (bool, error) {
	return s.store.IsExec(ctx, a.ID, s.conferenceID)
}

// AdminFor lists the emails this attendee may register on behalf of.
func (s *Service) AdminFor(ctx context.Context, a *models.Attendee) ([]string, error) {
	return s.store.AdminFor(ctx, a.Email, s.conferenceID)
}

func (s *Service) provisionEmployee(ctx context.Context, addr string) (*models.Attendee, error) {
	emp, err := s.dir.ByEmail(ctx, addr)
	if err != nil {
		s.observeLookup("error")
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "email not resolvable in directory")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "directory lookup failed")
	}
	s.observeLookup("found")

	division, err := s.store.DivisionID(ctx, emp.Department)
	if err != nil {
		s.logger.WarnContext(ctx, "division lookup failed, leaving blank",
			"department", emp.Department, "error", err)
		division = ""
	}

	// Directory records often come back in block capitals.
	first, last := platformStrings.ProperCase(emp.FirstName), platformStrings.ProperCase(emp.LastName)
	if first == "" {
		first, last = email.DeriveName(addr)
	}

	a := &models.Attendee{
		Email:     addr,
		FirstName: first,
		LastName:  last,
		Kind:      models.KindEmployee,
		Employee: &models.EmployeeProfile{
			Login:       emp.Login,
			EmployeeID:  emp.EmployeeID,
			Department:  emp.Department,
			Division:    division,
			Country:     emp.Country,
			City:        emp.City,
			InviteClass: -1,
		},
	}
	if err := s.Save(ctx, a); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementProvisioned()
	}
	s.logger.InfoContext(ctx, "provisioned employee from directory",
		"email", addr, "user_id", a.ID)

	fresh, err := s.store.FindEmployee(ctx, addr, s.conferenceID)
	if err != nil {
		return nil, fmt.Errorf("reload after provisioning: %w", err)
	}
	return fresh, nil
}

func (s *Service) observeLookup(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveDirectoryLookup(outcome)
	}
}
