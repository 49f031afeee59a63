package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attendeeModels "confreg/internal/attendee/models"
)

var now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func newEmployee() *attendeeModels.Attendee {
	return &attendeeModels.Attendee{
		ID:        42,
		Email:     "a@x.com",
		FirstName: "Avery",
		LastName:  "Quinn",
		Kind:      attendeeModels.KindEmployee,
		Employee:  &attendeeModels.EmployeeProfile{Division: "RES", ShirtSize: "M"},
	}
}

func TestIsNewTracksRegistrationTimestamp(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	assert.True(t, r.IsNew())

	r.RegistrationDate = now.Add(time.Minute)
	assert.False(t, r.IsNew())
}

func TestIsCurrentUsesSentinelDate(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	assert.True(t, r.IsCurrent())

	r.CancelDate = NoDate
	assert.True(t, r.IsCurrent())

	r.CancelDate = now
	assert.False(t, r.IsCurrent())
}

func TestClearEventsKeepsAssignedRows(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	r.Events = []EventItem{
		{EventID: 1, ParentEventID: 10, Assigned: true},
		{EventID: 2, ParentEventID: 10},
		{EventID: 3, ParentEventID: 20},
	}

	r.ClearEvents()

	require.Len(t, r.Events, 1)
	assert.Equal(t, 1, r.Events[0].EventID)
	assert.True(t, r.Dirty())
}

func TestClearEventSkipsAssignedRow(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	r.Events = []EventItem{{EventID: 1, Assigned: true}, {EventID: 2}}

	r.ClearEvent(1)
	assert.Len(t, r.Events, 2)

	r.ClearEvent(2)
	assert.Len(t, r.Events, 1)
}

func TestSetEventItemsRespectsAssignedParent(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	r.Events = []EventItem{{EventID: 5, ParentEventID: 10, Assigned: true}}

	r.SetEventItems([]EventItem{{EventID: 6, ParentEventID: 10, RequestOrder: 1}}, now)

	require.Len(t, r.Events, 1)
	assert.Equal(t, 5, r.Events[0].EventID)
}

func TestSetEventItemsReplacesPendingRequest(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	r.Events = []EventItem{
		{EventID: 5, ParentEventID: 10, RequestOrder: 1},
		{EventID: 7, ParentEventID: 20, RequestOrder: 1},
	}

	r.SetEventItems([]EventItem{{EventID: 6, ParentEventID: 10, RequestOrder: 1, UserRole: "attendee"}}, now)

	require.Len(t, r.Events, 2)
	assert.True(t, r.ContainsEvent(6))
	assert.False(t, r.ContainsEvent(5))
	assert.True(t, r.ContainsEvent(7))
}

func TestAssignEventLocksChildAndUnassignsSiblings(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	r.Events = []EventItem{
		{EventID: 5, ParentEventID: 10, Assigned: true},
		{EventID: 6, ParentEventID: 10},
	}

	r.AssignEvent(10, 6)

	assert.False(t, r.Events[0].Assigned)
	assert.True(t, r.Events[1].Assigned)
}

func TestSetMealItemsUpsertsByMealID(t *testing.T) {
	r := New(newEmployee(), "Guest", now)

	r.SetMealItems([]MealItem{{MealID: 1, MealOptionID: 2}}, now)
	require.Len(t, r.Meals, 1)
	assert.Equal(t, 2, r.Meals[0].MealOptionID)

	r.SetMealItems([]MealItem{{MealID: 1, MealOptionID: 3}}, now.Add(time.Hour))
	require.Len(t, r.Meals, 1)
	assert.Equal(t, 3, r.Meals[0].MealOptionID)
}

func TestClearMealChoice(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	r.Meals = []MealItem{{MealID: 1}, {MealID: 2}}

	r.ClearMealChoice(1)

	require.Len(t, r.Meals, 1)
	assert.Equal(t, 2, r.Meals[0].MealID)
}

func TestSetTransportationItemOnePerDirection(t *testing.T) {
	r := New(newEmployee(), "Guest", now)

	r.SetTransportationItem([]TransportationItem{{ModeID: 1, Direction: "To Conference"}}, now)
	r.SetTransportationItem([]TransportationItem{{ModeID: 2, Direction: "To Conference"}}, now)

	require.Len(t, r.Transportation, 1)
	assert.Equal(t, 2, r.Transportation[0].ModeID)

	r.SetTransportationItem([]TransportationItem{{ModeID: 3, Direction: "From Conference"}}, now)
	assert.Len(t, r.Transportation, 2)
}

func TestSetTransportationItemSameModeIsNoOp(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	r.SetTransportationItem([]TransportationItem{{ModeID: 1, Direction: "To Conference"}}, now)
	r.ClearDirty()

	r.SetTransportationItem([]TransportationItem{{ModeID: 1, Direction: "To Conference"}}, now.Add(time.Hour))

	require.Len(t, r.Transportation, 1)
	assert.Equal(t, now, r.Transportation[0].LastUpdated)
	assert.False(t, r.Dirty())
}

func TestClearSelectionsEmptiesAllTables(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	r.Events = []EventItem{{EventID: 1, Assigned: true}}
	r.Meals = []MealItem{{MealID: 1}}
	r.Transportation = []TransportationItem{{ModeID: 1, Direction: "To Conference"}}

	r.ClearSelections()

	assert.Empty(t, r.Events)
	assert.Empty(t, r.Meals)
	assert.Empty(t, r.Transportation)
}

func TestDirtyFlagLifecycle(t *testing.T) {
	r := New(newEmployee(), "Guest", now)
	assert.False(t, r.Dirty())

	r.SetGolfing(true)
	assert.True(t, r.Dirty())

	r.ClearDirty()
	assert.False(t, r.Dirty())
}
