package store

import (
	"context"
	"fmt"
	"time"

	"confreg/internal/conference/models"
	"confreg/internal/gateway"
	dErrors "confreg/pkg/domain-errors"
	"confreg/pkg/platform/sentinel"
)

// Invitee is one row of an invitation batch.
type Invitee struct {
	UserID int
	Email  string
	Login  string
}

// ConfirmationRow identifies an RSVP awaiting its confirmation email.
type ConfirmationRow struct {
	UserID         int
	Email          string
	InvitationType string
}

// Speaker is a guest speaker featured in the confirmation email.
type Speaker struct {
	UserID    int
	FirstName string
	LastName  string
	Title     string
	ImageName string
}

// NewInvitee is the payload for adding someone to the invitation list.
type NewInvitee struct {
	UserID       int
	Email        string
	DivisionText string
	InviteType   string
	InviteClass  int
	IsExec       bool
}

// Store persists conference metadata, the invitation list and the
// event catalog through the stored procedure gateway.
type Store struct {
	gw gateway.Gateway
}

// New creates a conference Store.
func New(gw gateway.Gateway) *Store {
	return &Store{gw: gw}
}

// Metadata loads the configuration row for one conference.
func (s *Store) Metadata(ctx context.Context, conferenceID int) (*models.Conference, error) {
	rows, err := s.gw.Table(ctx, "sp_GetConferenceMetaData", gateway.Params{"conferenceID": conferenceID})
	if err != nil {
		return nil, fmt.Errorf("fetch conference %d: %w", conferenceID, err)
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("conference %d: %w", conferenceID, sentinel.ErrNotFound)
	}

	row := rows[0]
	conf := &models.Conference{
		ID:                        row.Int("conferenceID"),
		Title:                     row.Str("conferenceTitle"),
		Website:                   row.Str("conferenceWebSite"),
		InviteMax:                 row.Int("conferenceInviteeMax"),
		VenueID:                   row.Int("venueID"),
		Start:                     row.Time("conferenceStartTime"),
		Stop:                      row.Time("conferenceEndTime"),
		PrimaryRegistrationOpen:   row.Time("conferenceRegistrationOpen"),
		PrimaryRegistrationClosed: row.Time("conferenceRegistrationClosed"),
		LateRegistrationOpen:      row.Time("conferenceLateRegistrationOpen"),
		LateRegistrationClosed:    row.Time("conferenceLateRegistrationClosed"),
		WelcomeReceptionStart:     row.Time("conferenceWelcomeReception"),
		CheckInStart:              row.Time("conferenceCheckInStart"),
		CheckInStop:               row.Time("conferenceCheckInStop"),
		EventsFrozenDate:          row.Time("conferenceEventsFrozenDate"),
	}

	pocs, err := s.gw.Table(ctx, "sp_GetConferencePOCs", gateway.Params{"conferenceID": conferenceID})
	if err != nil {
		return nil, fmt.Errorf("fetch conference %d pocs: %w", conferenceID, err)
	}
	for _, row := range pocs {
		conf.POCs = append(conf.POCs, row.Str("userEmail"))
	}
	return conf, nil
}

// Invitees lists everyone invited in a class.
func (s *Store) Invitees(ctx context.Context, conferenceID, inviteClass int) ([]Invitee, error) {
	return s.inviteeRows(ctx, "sp_GetInvitees", conferenceID, inviteClass)
}

// UnsentInvitations lists invitees in a class whose invitation has not
// gone out yet.
func (s *Store) UnsentInvitations(ctx context.Context, conferenceID, inviteClass int) ([]Invitee, error) {
	return s.inviteeRows(ctx, "sp_GetUnsentInvitationsInClass", conferenceID, inviteClass)
}

// UnregisteredInvitees lists invitees in a class who have not
// registered yet.
func (s *Store) UnregisteredInvitees(ctx context.Context, conferenceID, inviteClass int) ([]Invitee, error) {
	return s.inviteeRows(ctx, "sp_GetUnregisteredInviteesInClass", conferenceID, inviteClass)
}

// Staff lists the employees working the conference.
func (s *Store) Staff(ctx context.Context, conferenceID int) ([]Invitee, error) {
	rows, err := s.gw.Table(ctx, "sp_GetEmployeeStaff", gateway.Params{"conferenceID": conferenceID})
	if err != nil {
		return nil, fmt.Errorf("fetch staff: %w", err)
	}
	return inviteesFromRows(rows), nil
}

// ConfirmationBatch lists the RSVPs whose confirmation email is still
// pending. With ignoreSent set, already-sent confirmations are
// included too.
func (s *Store) ConfirmationBatch(ctx context.Context, conferenceID int, ignoreSent bool) ([]ConfirmationRow, error) {
	rows, err := s.gw.Table(ctx, "sp_GetRSVPConfirmationBatch", gateway.Params{
		"conferenceID":     conferenceID,
		"ignoreSentEmails": ignoreSent,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch confirmation batch: %w", err)
	}

	batch := make([]ConfirmationRow, 0, len(rows))
	for _, row := range rows {
		batch = append(batch, ConfirmationRow{
			UserID:         row.Int("userID"),
			Email:          row.Str("userEmail"),
			InvitationType: row.Str("invitationType"),
		})
	}
	return batch, nil
}

// GuestSpeakers lists the guest speakers featured in conference
// mailings.
func (s *Store) GuestSpeakers(ctx context.Context, conferenceID int) ([]Speaker, error) {
	rows, err := s.gw.Table(ctx, "sp_GetGuestSpeakers", gateway.Params{"conferenceID": conferenceID})
	if err != nil {
		return nil, fmt.Errorf("fetch guest speakers: %w", err)
	}

	speakers := make([]Speaker, 0, len(rows))
	for _, row := range rows {
		speakers = append(speakers, Speaker{
			UserID:    row.Int("userID"),
			FirstName: row.Str("userFirstName"),
			LastName:  row.Str("userLastName"),
			Title:     row.Str("userTitle"),
			ImageName: row.Str("imageName"),
		})
	}
	return speakers, nil
}

// AddInvitee appends someone to the invitation list. The invitation
// starts unsent and undeclined.
func (s *Store) AddInvitee(ctx context.Context, conferenceID int, inv NewInvitee) error {
	status, err := s.gw.Exec(ctx, "sp_LoadNewInviteee", gateway.Params{
		"userID":       inv.UserID,
		"conferenceID": conferenceID,
		"userEmail":    inv.Email,
		"divisionText": inv.DivisionText,
		"inviteType":   inv.InviteType,
		"isExec":       inv.IsExec,
		"inviteClass":  inv.InviteClass,
		"inviteSent":   false,
		"declined":     false,
	})
	if err != nil {
		return fmt.Errorf("add invitee %q: %w", inv.Email, err)
	}
	if status != 0 {
		return fmt.Errorf("add invitee %q: status %d: %w", inv.Email, status, sentinel.ErrInvalidState)
	}
	return nil
}

// MarkInviteSent flags an invitee's invitation as delivered.
func (s *Store) MarkInviteSent(ctx context.Context, conferenceID, userID int) error {
	status, err := s.gw.Exec(ctx, "sp_UpdateInviteFlag", gateway.Params{
		"userID":       userID,
		"conferenceID": conferenceID,
	})
	if err != nil {
		return fmt.Errorf("mark invite sent for user %d: %w", userID, err)
	}
	if status != 0 {
		return fmt.Errorf("mark invite sent for user %d: status %d: %w", userID, status, sentinel.ErrInvalidState)
	}
	return nil
}

// LogConfirmation records that a confirmation email went out with the
// given code.
func (s *Store) LogConfirmation(ctx context.Context, userID int, code string) error {
	status, err := s.gw.Exec(ctx, "sp_UpdateConfirmationLog", gateway.Params{
		"userID":       userID,
		"confirmation": code,
	})
	if err != nil {
		return fmt.Errorf("log confirmation for user %d: %w", userID, err)
	}
	if status != 0 {
		return fmt.Errorf("log confirmation for user %d: status %d: %w", userID, status, sentinel.ErrInvalidState)
	}
	return nil
}

// Event loads one event from the catalog.
func (s *Store) Event(ctx context.Context, conferenceID, eventID int) (*models.ConferenceEvent, error) {
	rows, err := s.gw.Table(ctx, "sp_admin_GetAllConferenceEvents", gateway.Params{
		"conferenceID": conferenceID,
		"eventID":      eventID,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch event %d: %w", eventID, err)
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("event %d: %w", eventID, sentinel.ErrNotFound)
	}
	return eventFromRow(rows[0]), nil
}

// Events lists the whole event catalog for a conference.
func (s *Store) Events(ctx context.Context, conferenceID int) ([]models.ConferenceEvent, error) {
	rows, err := s.gw.Table(ctx, "sp_admin_GetAllConferenceEvents", gateway.Params{
		"conferenceID": conferenceID,
		"eventID":      0,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	events := make([]models.ConferenceEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, *eventFromRow(row))
	}
	return events, nil
}

// SaveEvent upserts an event and returns its ID.
func (s *Store) SaveEvent(ctx context.Context, conferenceID int, e *models.ConferenceEvent, now time.Time) (int, error) {
	row := gateway.Row{
		"eventID":         e.ID,
		"conferenceID":    conferenceID,
		"eventStart":      e.Start,
		"eventStop":       e.Stop,
		"eventRoom":       e.Location,
		"eventType":       e.Type,
		"eventText":       e.Title,
		"parentEventID":   e.ParentID,
		"eventMedia":      e.Media,
		"eventMaxRequest": e.MaxRequests,
		"isPublic":        e.IsPublic,
		"lastUpdated":     now,
	}
	value, err := s.gw.Scalar(ctx, "sp_admin_LoadEvent", gateway.Params{"event": []gateway.Row{row}})
	if err != nil {
		return 0, fmt.Errorf("save event %q: %w", e.Title, err)
	}
	id := gateway.Row{"v": value}.Int("v")
	if id == 0 {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, "event save rejected")
	}
	return id, nil
}

// DeleteEvent removes an event from the catalog.
func (s *Store) DeleteEvent(ctx context.Context, conferenceID int, e *models.ConferenceEvent) error {
	row := gateway.Row{
		"eventID":       e.ID,
		"conferenceID":  conferenceID,
		"parentEventID": e.ParentID,
	}
	status, err := s.gw.Exec(ctx, "sp_admin_RemoveEvent", gateway.Params{"event": []gateway.Row{row}})
	if err != nil {
		return fmt.Errorf("delete event %d: %w", e.ID, err)
	}
	if status != 0 {
		return fmt.Errorf("delete event %d: status %d: %w", e.ID, status, sentinel.ErrInvalidState)
	}
	return nil
}

// EventParentPath renders the breadcrumb of an event's ancestors.
func (s *Store) EventParentPath(ctx context.Context, eventID int) (string, error) {
	rows, err := s.gw.Table(ctx, "sp_GetEventParentPath", gateway.Params{"eventID": eventID})
	if err != nil {
		return "", fmt.Errorf("event %d parent path: %w", eventID, err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Str("Hierarchy"), nil
}

// ValidateEventDatesToParent reports whether a child event's window
// falls inside its parent's.
func (s *Store) ValidateEventDatesToParent(ctx context.Context, parentEventID int, start, stop time.Time) (bool, error) {
	value, err := s.gw.Scalar(ctx, "sp_ValidateNewEventDatesToParent", gateway.Params{
		"parentEventID": parentEventID,
		"startDate":     start,
		"stopDate":      stop,
	})
	if err != nil {
		return false, fmt.Errorf("validate event dates: %w", err)
	}
	return gateway.Row{"v": value}.Bool("v"), nil
}

func (s *Store) inviteeRows(ctx context.Context, op string, conferenceID, inviteClass int) ([]Invitee, error) {
	rows, err := s.gw.Table(ctx, op, gateway.Params{
		"conferenceID": conferenceID,
		"inviteClass":  inviteClass,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inviteesFromRows(rows), nil
}

func inviteesFromRows(rows []gateway.Row) []Invitee {
	invitees := make([]Invitee, 0, len(rows))
	for _, row := range rows {
		invitees = append(invitees, Invitee{
			UserID: row.Int("userID"),
			Email:  row.Str("userEmail"),
			Login:  row.Str("userLogin"),
		})
	}
	return invitees
}

func eventFromRow(row gateway.Row) *models.ConferenceEvent {
	return &models.ConferenceEvent{
		ID:          row.Int("eventID"),
		Start:       row.Time("eventStart"),
		Stop:        row.Time("eventStop"),
		Location:    row.Str("eventRoom"),
		Type:        row.Str("eventType"),
		Title:       row.Str("eventText"),
		ParentID:    row.Int("parentEventID"),
		Media:       row.Str("eventMedia"),
		MaxRequests: row.Int("eventMaxRequest"),
		IsPublic:    row.Bool("isPublic"),
	}
}
