// Package store persists RSVPs through the database gateway. Each
// selection table travels as one tabular parameter so the procedures
// can replace the user's rows in a single call.
package store

import (
	"context"
	"fmt"
	"time"

	"confreg/internal/gateway"
	"confreg/internal/registration/models"
	"confreg/pkg/platform/sentinel"
)

type Clock func() time.Time

// Store reads and writes RSVP rows and their selection tables.
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

// New constructs a gateway-backed RSVP store.
func New(gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{gw: gw, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scalars carries the RSVP row as stored, before it is folded into the
// aggregate.
type Scalars struct {
	InvitationType   string
	ConfirmationCode string
	RegistrationDate time.Time
	ConfirmDate      time.Time
	CancelDate       time.Time
	CheckInDate      time.Time
	CheckOutDate     time.Time
	WelcomeReception bool
	Golfing          bool
	PhotoWaiver      bool
	Notes            string
	AdminEmail       string
}

// FetchScalars loads the RSVP row for (conference, user).
func (s *Store) FetchScalars(ctx context.Context, conferenceID, userID int) (*Scalars, error) {
	rows, err := s.gw.Table(ctx, "sp_GetRSVP", gateway.Params{
		"conferenceID": conferenceID,
		"userID":       userID,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch rsvp: %w", err)
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("rsvp for user %d: %w", userID, sentinel.ErrNotFound)
	}
	row := rows[0]
	return &Scalars{
		InvitationType:   row.Str("rsvpInvitationType"),
		ConfirmationCode: row.Str("confirmationCode"),
		RegistrationDate: row.Time("rsvpRegistrationDate"),
		ConfirmDate:      row.Time("rsvpConfirmDate"),
		CancelDate:       row.Time("rsvpCancelDate"),
		CheckInDate:      row.Time("rsvpCheckIn"),
		CheckOutDate:     row.Time("rsvpCheckOut"),
		WelcomeReception: row.Bool("rsvpWelcomeReception"),
		Golfing:          row.Bool("rsvpGolfing"),
		PhotoWaiver:      row.Bool("rsvpPhotoVideoWaiver"),
		Notes:            row.Str("rsvpNotes"),
		AdminEmail:       row.Str("adminEmail"),
	}, nil
}

// EventSelections loads the user's requested and assigned events.
func (s *Store) EventSelections(ctx context.Context, conferenceID, userID int) ([]models.EventItem, error) {
	rows, err := s.gw.Table(ctx, "sp_GetUserRequestedEventsList", gateway.Params{
		"conferenceID": conferenceID,
		"userID":       userID,
	})
	if err != nil {
		return nil, fmt.Errorf("event selections: %w", err)
	}
	items := make([]models.EventItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.EventItem{
			EventID:       row.Int("eventID"),
			ParentEventID: row.Int("parentEventID"),
			UserRole:      row.Str("userRole"),
			RequestOrder:  row.Int("eventRequestOrder"),
			Assigned:      row.Bool("eventAssigned"),
			LastUpdated:   s.orNow(row.Time("lastUpdated")),
		})
	}
	return items, nil
}

// MealSelections loads the user's meal rows, falling back to the
// conference defaults when the user has none yet.
func (s *Store) MealSelections(ctx context.Context, conferenceID, userID int) ([]models.MealItem, error) {
	items, err := s.mealRows(ctx, "sp_GetUserMealSelections", conferenceID, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return s.mealRows(ctx, "sp_GetDefaultUserMealSelections", conferenceID, userID)
	}
	return items, nil
}

// TransportationSelections loads the user's transportation rows with
// the same default fallback.
func (s *Store) TransportationSelections(ctx context.Context, conferenceID, userID int) ([]models.TransportationItem, error) {
	items, err := s.transportationRows(ctx, "sp_GetUserTransportationSelections", conferenceID, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return s.transportationRows(ctx, "sp_GetDefaultUserTransportationSelections", conferenceID, userID)
	}
	return items, nil
}

// MealDetails loads the view-level meal rows used for changelog text.
func (s *Store) MealDetails(ctx context.Context, conferenceID, userID int) ([]models.MealDetail, error) {
	rows, err := s.gw.Table(ctx, "sp_GetUserMealsListView", gateway.Params{
		"conferenceID": conferenceID,
		"userID":       userID,
	})
	if err != nil {
		return nil, fmt.Errorf("meal details: %w", err)
	}
	details := make([]models.MealDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, models.MealDetail{
			MealID:         row.Int("mealID"),
			MealDate:       row.Time("mealDate"),
			MealType:       row.Str("mealType"),
			MealOptionID:   row.Int("mealOptionID"),
			MealOptionName: row.Str("mealOptionName"),
		})
	}
	return details, nil
}

// TransportationDetails loads the view-level transportation rows.
func (s *Store) TransportationDetails(ctx context.Context, conferenceID, userID int) ([]models.TransportationDetail, error) {
	rows, err := s.gw.Table(ctx, "sp_GetUserTransportationListView", gateway.Params{
		"conferenceID": conferenceID,
		"userID":       userID,
	})
	if err != nil {
		return nil, fmt.Errorf("transportation details: %w", err)
	}
	details := make([]models.TransportationDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, models.TransportationDetail{
			Direction:  row.Str("transportationDirection"),
			ModeID:     row.Int("userTransportationOptionID"),
			ModeText:   row.Str("transportationModeText"),
			DepartTime: row.Time("transportationDepartTime"),
		})
	}
	return details, nil
}

// SaveScalars upserts the RSVP row. Unset dates travel as the sentinel
// because the columns cannot be null.
func (s *Store) SaveScalars(ctx context.Context, r *models.RSVP, conferenceID int) error {
	adminEmail := ""
	if r.Admin != nil {
		adminEmail = r.Admin.Email
	}
	row := gateway.Row{
		"userID":               r.Attendee.ID,
		"conferenceID":         conferenceID,
		"confirmationCode":     r.ConfirmationCode,
		"rsvpInvitationType":   r.InvitationType,
		"rsvpRegistrationDate": r.RegistrationDate,
		"rsvpConfirmDate":      orSentinel(r.ConfirmDate),
		"rsvpCheckIn":          orSentinel(r.CheckInDate),
		"rsvpCheckOut":         orSentinel(r.CheckOutDate),
		"rsvpCancelDate":       orSentinel(r.CancelDate),
		"rsvpWelcomeReception": r.WelcomeReception,
		"rsvpGolfing":          r.Golfing,
		"adminEmail":           adminEmail,
		"rsvpNotes":            r.Notes,
		"rsvpPhotoVideoWaiver": r.PhotoWaiver,
		"lastUpdated":          s.clock(),
	}
	return s.execRows(ctx, "sp_LoadRSVP", "rsvpRow", []gateway.Row{row})
}

// SaveEventSelections replaces the user's event rows.
func (s *Store) SaveEventSelections(ctx context.Context, r *models.RSVP) error {
	rows := make([]gateway.Row, 0, len(r.Events))
	for _, e := range r.Events {
		rows = append(rows, gateway.Row{
			"userID":            r.Attendee.ID,
			"eventID":           e.EventID,
			"parentEventID":     e.ParentEventID,
			"userRole":          e.UserRole,
			"eventRequestOrder": e.RequestOrder,
			"eventAssigned":     e.Assigned,
			"lastUpdated":       s.orNow(e.LastUpdated),
		})
	}
	return s.execRows(ctx, "sp_LoadEventAssignments", "selections", rows)
}

// SaveMealSelections replaces the user's meal rows.
func (s *Store) SaveMealSelections(ctx context.Context, r *models.RSVP, conferenceID int) error {
	rows := make([]gateway.Row, 0, len(r.Meals))
	for _, m := range r.Meals {
		rows = append(rows, gateway.Row{
			"userID":       r.Attendee.ID,
			"conferenceID": conferenceID,
			"mealID":       m.MealID,
			"mealOptionID": m.MealOptionID,
			"lastUpdated":  s.orNow(m.LastUpdated),
		})
	}
	return s.execRows(ctx, "sp_LoadUserMealSelections", "selections", rows)
}

// SaveTransportationSelections replaces the user's transportation rows.
func (s *Store) SaveTransportationSelections(ctx context.Context, r *models.RSVP, conferenceID int) error {
	rows := make([]gateway.Row, 0, len(r.Transportation))
	for _, t := range r.Transportation {
		rows = append(rows, gateway.Row{
			"userID":                     r.Attendee.ID,
			"conferenceID":               conferenceID,
			"userTransportationOptionID": t.ModeID,
			"transportationDirection":    t.Direction,
			"lastUpdated":                s.orNow(t.LastUpdated),
		})
	}
	return s.execRows(ctx, "sp_LoadUserTransportationSelections", "selections", rows)
}

// Cancel records the cancellation request.
func (s *Store) Cancel(ctx context.Context, conferenceID, userID int, reason string) error {
	status, err := s.gw.Exec(ctx, "sp_DeleteUserRSVP", gateway.Params{
		"userID":       userID,
		"conferenceID": conferenceID,
		"cancelReason": reason,
	})
	if err != nil {
		return fmt.Errorf("cancel rsvp: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("cancel rsvp: status %d: %w", status, sentinel.ErrInvalidState)
	}
	return nil
}

// IsUniqueConfirmationCode checks a candidate code against every RSVP.
func (s *Store) IsUniqueConfirmationCode(ctx context.Context, code string) (bool, error) {
	value, err := s.gw.Scalar(ctx, "sp_IsUniqueConfirmationCode", gateway.Params{
		"confirmationCode": code,
	})
	if err != nil {
		return false, fmt.Errorf("confirmation code uniqueness: %w", err)
	}
	return gateway.Row{"v": value}.Bool("v"), nil
}

// UpdateConfirmationCode writes a freshly generated code for an RSVP
// that is missing one.
func (s *Store) UpdateConfirmationCode(ctx context.Context, conferenceID, userID int, code string) error {
	status, err := s.gw.Exec(ctx, "sp_UpdateConfirmationCode", gateway.Params{
		"userID":           userID,
		"conferenceID":     conferenceID,
		"confirmationCode": code,
	})
	if err != nil {
		return fmt.Errorf("update confirmation code: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("update confirmation code: status %d: %w", status, sentinel.ErrInvalidState)
	}
	return nil
}

// MarkConfirmationSent flags the RSVP after its confirmation email went
// out.
func (s *Store) MarkConfirmationSent(ctx context.Context, userID int, code string) error {
	status, err := s.gw.Exec(ctx, "sp_UpdateRSVPConfirmationFlag", gateway.Params{
		"userID":       userID,
		"confirmation": code,
	})
	if err != nil {
		return fmt.Errorf("mark confirmation sent: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("mark confirmation sent: status %d: %w", status, sentinel.ErrInvalidState)
	}
	return nil
}

func (s *Store) mealRows(ctx context.Context, op string, conferenceID, userID int) ([]models.MealItem, error) {
	rows, err := s.gw.Table(ctx, op, gateway.Params{
		"conferenceID": conferenceID,
		"userID":       userID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items := make([]models.MealItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.MealItem{
			MealID:       row.Int("mealID"),
			MealOptionID: row.Int("mealOptionID"),
			LastUpdated:  s.orNow(row.Time("lastUpdated")),
		})
	}
	return items, nil
}

func (s *Store) transportationRows(ctx context.Context, op string, conferenceID, userID int) ([]models.TransportationItem, error) {
	rows, err := s.gw.Table(ctx, op, gateway.Params{
		"conferenceID": conferenceID,
		"userID":       userID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items := make([]models.TransportationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.TransportationItem{
			ModeID:      row.Int("userTransportationOptionID"),
			Direction:   row.Str("transportationDirection"),
			LastUpdated: s.orNow(row.Time("lastUpdated")),
		})
	}
	return items, nil
}

func (s *Store) execRows(ctx context.Context, op, param string, rows []gateway.Row) error {
	status, err := s.gw.Exec(ctx, op, gateway.Params{param: rows})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if status != 0 {
		return fmt.Errorf("%s: status %d: %w", op, status, sentinel.ErrInvalidState)
	}
	return nil
}

func (s *Store) orNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.clock()
	}
	return t
}

func orSentinel(t time.Time) time.Time {
	if t.IsZero() {
		return models.NoDate
	}
	return t
}
