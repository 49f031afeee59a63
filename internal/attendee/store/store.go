// Package store persists attendees through the database gateway's named
// procedures. Column names follow the procedure contracts.
package store

import (
	"context"
	"fmt"
	"time"

	"confreg/internal/attendee/models"
	"confreg/internal/gateway"
	"confreg/pkg/platform/sentinel"
)

// Clock supplies timestamps for lastUpdated columns; injectable for tests.
type Clock func() time.Time

// Store reads and writes attendee rows.
type Store struct {
	gw    gateway.Gateway
	clock Clock
}

type Option func(*Store)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a gateway-backed attendee store.
func New(gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{gw: gw, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindEmployee loads an employee attendee by email for one conference.
func (s *Store) FindEmployee(ctx context.Context, email string, conferenceID int) (*models.Attendee, error) {
	rows, err := s.gw.Table(ctx, "sp_GetEmployeeUser", gateway.Params{
		"userEmail":    email,
		"conferenceID": conferenceID,
	})
	if err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("employee %s: %w", email, sentinel.ErrNotFound)
	}
	return employeeFromRow(rows[0]), nil
}

// FindEmployeeByID resolves a surrogate ID to its email, then loads the
// employee record.
func (s *Store) FindEmployeeByID(ctx context.Context, userID, conferenceID int) (*models.Attendee, error) {
	rows, err := s.gw.Table(ctx, "sp_GetUserFromID", gateway.Params{"userID": userID})
	if err != nil {
		return nil, fmt.Errorf("find employee by id: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, sentinel.ErrNotFound)
	}
	return s.FindEmployee(ctx, rows[0].Str("userEmail"), conferenceID)
}

// FindVendorStaff loads an external vendor-staff attendee by email.
func (s *Store) FindVendorStaff(ctx context.Context, email string, conferenceID int) (*models.Attendee, error) {
	rows, err := s.gw.Table(ctx, "sp_GetExternalStaffUser", gateway.Params{
		"userEmail":    email,
		"conferenceID": conferenceID,
	})
	if err != nil {
		return nil, fmt.Errorf("find vendor staff: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("vendor staff %s: %w", email, sentinel.ErrNotFound)
	}
	return vendorStaffFromRow(rows[0]), nil
}

// SaveContact upserts the shared contact row. New attendees get their
// surrogate ID assigned here.
func (s *Store) SaveContact(ctx context.Context, a *models.Attendee) error {
	row := gateway.Row{
		"userEmail":         a.Email,
		"userFirstName":     a.FirstName,
		"userLastName":      a.LastName,
		"userWorkPhone":     a.WorkPhone,
		"userMobilePhone":   a.MobilePhone,
		"userFoodAllergies": a.FoodAllergies,
		"userSpecialNeeds":  a.SpecialNeeds,
		"lastUpdated":       s.clock(),
	}

	if a.IsNew() {
		value, err := s.gw.Scalar(ctx, "sp_LoadUser", gateway.Params{"userRow": []gateway.Row{row}})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		id, ok := value.(int64)
		if !ok || id <= 0 {
			return fmt.Errorf("create user: no id assigned: %w", sentinel.ErrInvalidState)
		}
		a.ID = int(id)
		return nil
	}

	status, err := s.gw.Exec(ctx, "sp_LoadUser", gateway.Params{"userRow": []gateway.Row{row}})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("update user: status %d: %w", status, sentinel.ErrInvalidState)
	}
	return nil
}

// SaveEmployeeProfile upserts the employee-only columns. SaveContact
// must have run first so the attendee has an ID.
func (s *Store) SaveEmployeeProfile(ctx context.Context, a *models.Attendee) error {
	p := a.Employee
	status, err := s.gw.Exec(ctx, "sp_LoadEmployee", gateway.Params{
		"employeeRow": []gateway.Row{{
			"userID":         a.ID,
			"userLogin":      p.Login,
			"userEmployeeID": p.EmployeeID,
			"userJobRole":    p.JobRole,
			"userHomeOffice": p.HomeOffice,
			"userCity":       p.City,
			"userCountry":    p.Country,
			"userDepartment": p.Department,
			"userDivision":   p.Division,
			"userShirtSize":  p.ShirtSize,
			"userBio":        p.Bio,
			"lastUpdated":    s.clock(),
		}},
	})
	if err != nil {
		return fmt.Errorf("save employee profile: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("save employee profile: status %d: %w", status, sentinel.ErrInvalidState)
	}
	return nil
}

// SaveVendorStaffProfile upserts the vendor-staff-only columns.
func (s *Store) SaveVendorStaffProfile(ctx context.Context, a *models.Attendee, conferenceID int) error {
	p := a.VendorStaff
	status, err := s.gw.Exec(ctx, "sp_LoadExternalStaff", gateway.Params{
		"staffRow": []gateway.Row{{
			"userID":       a.ID,
			"vendorID":     p.VendorID,
			"conferenceID": conferenceID,
			"staffRole":    p.StaffRole,
			"lastUpdated":  s.clock(),
		}},
	})
	if err != nil {
		return fmt.Errorf("save vendor staff profile: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("save vendor staff profile: status %d: %w", status, sentinel.ErrInvalidState)
	}
	return nil
}

// DivisionID resolves a department name to its division code.
func (s *Store) DivisionID(ctx context.Context, department string) (string, error) {
	value, err := s.gw.Scalar(ctx, "sp_GetDivisionID", gateway.Params{"department": department})
	if err != nil {
		return "", fmt.Errorf("division for %q: %w", department, err)
	}
	return gateway.Row{"v": value}.Str("v"), nil
}

// IsRegistered reports whether the email holds a current registration.
func (s *Store) IsRegistered(ctx context.Context, email string, conferenceID int) (bool, error) {
	return s.boolScalar(ctx, "sp_GetIsRegistered", gateway.Params{
		"userEmail":    email,
		"conferenceID": conferenceID,
	})
}

// IsConferenceAdmin reports whether the user administers the conference.
func (s *Store) IsConferenceAdmin(ctx context.Context, userID, conferenceID int) (bool, error) {
	return s.boolScalar(ctx, "sp_IsConferenceAdmin", gateway.Params{
		"userID":       userID,
		"conferenceID": conferenceID,
	})
}

// IsPresenter reports whether the user is speaking at the conference.
func (s *Store) IsPresenter(ctx context.Context, userID, conferenceID int) (bool, error) {
	return s.boolScalar(ctx, "sp_IsConferenceSpeaker", gateway.Params{
		"userID":       userID,
		"conferenceID": conferenceID,
	})
}

// IsExec reports whether the user is an executive attendee.
func (s *Store) IsExec(ctx context.Context, userID, conferenceID int) (bool, error) {
	return s.boolScalar(ctx, "sp_IsExec", gateway.Params{
		"userID":       userID,
		"conferenceID": conferenceID,
	})
}

// AdminFor lists the emails this admin may register on behalf of.
func (s *Store) AdminFor(ctx context.Context, adminEmail string, conferenceID int) ([]string, error) {
	rows, err := s.gw.Table(ctx, "sp_GetAdminForUsers", gateway.Params{
		"adminEmail":   adminEmail,
		"conferenceID": conferenceID,
	})
	if err != nil {
		return nil, fmt.Errorf("admin-for list: %w", err)
	}
	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		emails = append(emails, row.Str("userEmail"))
	}
	return emails, nil
}

func (s *Store) boolScalar(ctx context.Context, op string, p gateway.Params) (bool, error) {
	value, err := s.gw.Scalar(ctx, op, p)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return gateway.Row{"v": value}.Bool("v"), nil
}

func employeeFromRow(row gateway.Row) *models.Attendee {
	a := contactFromRow(row)
	a.Kind = models.KindEmployee
	inviteClass := -1
	if _, ok := row["inviteClass"]; ok && row["inviteClass"] != nil {
		inviteClass = row.Int("inviteClass")
	}
	a.Employee = &models.EmployeeProfile{
		Login:       row.Str("userLogin"),
		EmployeeID:  row.Str("userEmployeeID"),
		Department:  row.Str("userDepartment"),
		Division:    row.Str("userDivision"),
		JobRole:     row.Str("userJobRole"),
		Country:     row.Str("userCountry"),
		City:        row.Str("userCity"),
		HomeOffice:  row.Str("userHomeOffice"),
		ShirtSize:   row.Str("userShirtSize"),
		Bio:         row.Str("userBio"),
		InviteClass: inviteClass,
	}
	return a
}

func vendorStaffFromRow(row gateway.Row) *models.Attendee {
	a := contactFromRow(row)
	a.Kind = models.KindVendorStaff
	a.Invitee = true
	a.VendorStaff = &models.VendorStaffProfile{
		VendorID:  row.Int("vendorID"),
		StaffRole: row.Str("staffRole"),
	}
	return a
}

func contactFromRow(row gateway.Row) *models.Attendee {
	return &models.Attendee{
		ID:            row.Int("userID"),
		Email:         row.Str("userEmail"),
		FirstName:     row.Str("userFirstName"),
		LastName:      row.Str("userLastName"),
		WorkPhone:     row.Str("userWorkPhone"),
		MobilePhone:   row.Str("userMobilePhone"),
		FoodAllergies: row.Str("userFoodAllergies"),
		SpecialNeeds:  row.Str("userSpecialNeeds"),
		Invitee:       row.Bool("isInvitee"),
	}
}
