package notification

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	conferenceModels "confreg/internal/conference/models"
	registrationModels "confreg/internal/registration/models"
	vendorModels "confreg/internal/vendors/models"
)

// checkInOffset shifts an early check-in date to the afternoon so the
// calendar block starts when the hotel desk opens.
const checkInOffset = 15 * time.Hour

// CalendarBuilder renders the conference calendar entry attached to
// confirmation emails.
type CalendarBuilder struct {
	conf      *conferenceModels.Conference
	venue     *vendorModels.Venue
	organizer string
}

// NewCalendarBuilder creates a CalendarBuilder. venue may be nil when
// metadata is incomplete.
func NewCalendarBuilder(conf *conferenceModels.Conference, venue *vendorModels.Venue, organizer string) *CalendarBuilder {
	return &CalendarBuilder{conf: conf, venue: venue, organizer: organizer}
}

// Calendar serializes the attendee's stay as an iCalendar request.
// An attendee checking in before the conference opens gets a block
// starting at their check-in; one leaving after it closes gets a block
// ending at their check-out.
func (b *CalendarBuilder) Calendar(r *registrationModels.RSVP) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)

	event := cal.AddEvent(fmt.Sprintf("conference-%d-%d@confreg", b.conf.ID, r.Attendee.ID))

	start := b.conf.Start
	if !registrationModels.DateUnset(r.CheckInDate) && r.CheckInDate.Before(b.conf.Start) {
		start = r.CheckInDate.Add(checkInOffset)
	}
	stop := b.conf.Stop
	if !registrationModels.DateUnset(r.CheckOutDate) && r.CheckOutDate.After(b.conf.Stop) {
		stop = r.CheckOutDate
	}

	event.SetStartAt(start)
	event.SetEndAt(stop)
	event.SetSummary(b.conf.Title)
	event.SetDescription(b.conf.Title)
	if b.venue != nil {
		event.SetLocation(fmt.Sprintf("%s, %s, %s, %s %s",
			b.venue.CompanyName, b.venue.StreetAddress, b.venue.City, b.venue.State, b.venue.ZipCode))
	}
	if b.organizer != "" {
		event.SetOrganizer("mailto:"+b.organizer, ics.WithCN(b.conf.Title))
	}

	return []byte(cal.Serialize()), nil
}

// AttachmentName is the filename of the calendar attachment.
func (b *CalendarBuilder) AttachmentName() string {
	return fmt.Sprintf("Conference%s.ics", b.conf.Year())
}
