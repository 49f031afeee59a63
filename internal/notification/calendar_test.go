package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attendeeModels "confreg/internal/attendee/models"
	conferenceModels "confreg/internal/conference/models"
	registrationModels "confreg/internal/registration/models"
	vendorModels "confreg/internal/vendors/models"
)

func calendarConference() *conferenceModels.Conference {
	return &conferenceModels.Conference{
		ID:    7,
		Title: "Engineering Conference 2026",
		Start: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		Stop:  time.Date(2026, 6, 4, 17, 0, 0, 0, time.UTC),
	}
}

func calendarRSVP(checkIn, checkOut time.Time) *registrationModels.RSVP {
	a := &attendeeModels.Attendee{ID: 42, Email: "pat.jones@example.com", FirstName: "Pat", LastName: "Jones"}
	r := registrationModels.New(a, "conference", time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC))
	r.CheckInDate = checkIn
	r.CheckOutDate = checkOut
	return r
}

func TestCalendarWithinConferenceWindow(t *testing.T) {
	venue := &vendorModels.Venue{
		Vendor: vendorModels.Vendor{CompanyName: "Grand Peak Resort", City: "Denver", State: "CO"},
	}
	b := NewCalendarBuilder(calendarConference(), venue, "conference@example.com")

	ical, err := b.Calendar(calendarRSVP(
		time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, err)
	s := string(ical)
	assert.Contains(t, s, "BEGIN:VCALENDAR")
	assert.Contains(t, s, "METHOD:REQUEST")
	assert.Contains(t, s, "SUMMARY:Engineering Conference 2026")
	assert.Contains(t, s, "Grand Peak Resort")
	// Check-in after the conference opens keeps the conference start.
	assert.Contains(t, s, "DTSTART:20260601T090000Z")
	assert.Contains(t, s, "DTEND:20260604T170000Z")
}

func TestCalendarEarlyCheckInStartsAtHotel(t *testing.T) {
	b := NewCalendarBuilder(calendarConference(), nil, "conference@example.com")

	ical, err := b.Calendar(calendarRSVP(
		time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, err)
	// Check-in day at 3pm, not the conference opening.
	assert.Contains(t, string(ical), "DTSTART:20260531T150000Z")
}

func TestCalendarSameDayEarlyCheckInStartsAtHotel(t *testing.T) {
	b := NewCalendarBuilder(calendarConference(), nil, "conference@example.com")

	// Midnight on the opening day is still before the 9am start, so the
	// hotel rule applies: check-in instant plus fifteen hours.
	ical, err := b.Calendar(calendarRSVP(
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, err)
	assert.Contains(t, string(ical), "DTSTART:20260601T150000Z")
}

func TestCalendarLateCheckOutExtendsEnd(t *testing.T) {
	b := NewCalendarBuilder(calendarConference(), nil, "conference@example.com")

	ical, err := b.Calendar(calendarRSVP(
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 6, 11, 0, 0, 0, time.UTC)))

	require.NoError(t, err)
	assert.Contains(t, string(ical), "DTEND:20260606T110000Z")
}

func TestAttachmentNameCarriesYear(t *testing.T) {
	b := NewCalendarBuilder(calendarConference(), nil, "")

	assert.Equal(t, "Conference2026.ics", b.AttachmentName())
}
