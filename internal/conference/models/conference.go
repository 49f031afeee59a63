package models

import (
	"time"

	registrationModels "confreg/internal/registration/models"
)

// Invite classes pick which registration deadline applies.
const (
	InviteClassPrimary = 1
	InviteClassLate    = 2
)

// Conference is the metadata for one conference instance. It is loaded
// once at startup and passed down explicitly; nothing mutates it after
// construction.
type Conference struct {
	ID        int
	Title     string
	Website   string
	InviteMax int
	VenueID   int

	Start time.Time
	Stop  time.Time

	PrimaryRegistrationOpen   time.Time
	PrimaryRegistrationClosed time.Time
	LateRegistrationOpen      time.Time
	LateRegistrationClosed    time.Time

	WelcomeReceptionStart time.Time
	CheckInStart          time.Time
	CheckInStop           time.Time

	// EventsFrozenDate is the point after which selections stop being
	// editable.
	EventsFrozenDate time.Time

	// POCs are the steering-team emails copied on registration traffic.
	POCs []string
}

// CurrentRegistrationWindowClosed returns the deadline of whichever
// registration window now falls in, or the sentinel when no window is
// open.
func (c *Conference) CurrentRegistrationWindowClosed(now time.Time) time.Time {
	if !now.Before(c.PrimaryRegistrationOpen) && !now.After(c.PrimaryRegistrationClosed) {
		return c.PrimaryRegistrationClosed
	}
	if !now.Before(c.LateRegistrationOpen) && !now.After(c.LateRegistrationClosed) {
		return c.LateRegistrationClosed
	}
	return registrationModels.NoDate
}

// DeadlineForClass returns the registration deadline for an invite
// class. Classes beyond late registration get the events-frozen date.
func (c *Conference) DeadlineForClass(inviteClass int) time.Time {
	switch inviteClass {
	case InviteClassPrimary:
		return c.PrimaryRegistrationClosed
	case InviteClassLate:
		return c.LateRegistrationClosed
	default:
		return c.EventsFrozenDate
	}
}

// IsPOC reports whether an email belongs to the steering team.
func (c *Conference) IsPOC(email string) bool {
	for _, poc := range c.POCs {
		if poc == email {
			return true
		}
	}
	return false
}

// Year is the conference year used in email subjects and calendar text.
func (c *Conference) Year() string {
	return c.Start.Format("2006")
}
