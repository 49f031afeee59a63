package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	registrationModels "confreg/internal/registration/models"
	dErrors "confreg/pkg/domain-errors"
)

func testConference() *Conference {
	return &Conference{
		ID:                        1,
		Title:                     "Engineering Conference",
		Start:                     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Stop:                      time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC),
		PrimaryRegistrationOpen:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PrimaryRegistrationClosed: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		LateRegistrationOpen:      time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		LateRegistrationClosed:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		EventsFrozenDate:          time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestCurrentRegistrationWindowClosed(t *testing.T) {
	c := testConference()

	inPrimary := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, c.PrimaryRegistrationClosed, c.CurrentRegistrationWindowClosed(inPrimary))

	inLate := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, c.LateRegistrationClosed, c.CurrentRegistrationWindowClosed(inLate))

	between := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, registrationModels.NoDate, c.CurrentRegistrationWindowClosed(between))
}

func TestDeadlineForClass(t *testing.T) {
	c := testConference()
	assert.Equal(t, c.PrimaryRegistrationClosed, c.DeadlineForClass(InviteClassPrimary))
	assert.Equal(t, c.LateRegistrationClosed, c.DeadlineForClass(InviteClassLate))
	assert.Equal(t, c.EventsFrozenDate, c.DeadlineForClass(3))
}

func TestEventValidate(t *testing.T) {
	e := &ConferenceEvent{
		Title: "Keynote",
		Start: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		Stop:  time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, e.Validate())

	e.Stop = e.Start.Add(-time.Hour)
	assert.True(t, dErrors.HasCode(e.Validate(), dErrors.CodeInvariantViolation))

	e = &ConferenceEvent{}
	assert.True(t, dErrors.HasCode(e.Validate(), dErrors.CodeBadRequest))
}

func TestIsPOC(t *testing.T) {
	c := testConference()
	c.POCs = []string{"lead@example.com"}
	assert.True(t, c.IsPOC("lead@example.com"))
	assert.False(t, c.IsPOC("other@example.com"))
}
