package models

import (
	"time"

	attendeeModels "confreg/internal/attendee/models"
)

// NoDate is the sentinel the database uses for "no value" on date
// columns that cannot be null.
var NoDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// DateUnset reports whether a date column carries no real value.
func DateUnset(t time.Time) bool {
	return t.IsZero() || t.Equal(NoDate)
}

// RSVP is one attendee's registration for one conference: scalar fields
// plus the three selection tables. A snapshot taken right after load is
// the immutable baseline for change diffing.
type RSVP struct {
	Attendee *attendeeModels.Attendee

	InvitationType   string
	RegistrationDate time.Time
	ConfirmDate      time.Time
	CancelDate       time.Time
	CheckInDate      time.Time
	CheckOutDate     time.Time
	WelcomeReception bool
	Golfing          bool
	PhotoWaiver      bool
	Notes            string
	ConfirmationCode string

	// Admin is the attendee registering on this person's behalf, if any.
	Admin *attendeeModels.Attendee

	Events         []EventItem
	Meals          []MealItem
	Transportation []TransportationItem

	// Created is the construction timestamp; a registration date equal
	// to it means the RSVP has never been persisted.
	Created time.Time

	// Valid reflects whether the last load or save round-trip fully
	// succeeded. Callers check it instead of receiving load errors.
	Valid bool

	Original *Snapshot

	dirty bool
}

// New builds an in-memory RSVP with defaults for an attendee who has
// not registered yet.
func New(a *attendeeModels.Attendee, invitationType string, now time.Time) *RSVP {
	return &RSVP{
		Attendee:         a,
		InvitationType:   invitationType,
		RegistrationDate: now,
		WelcomeReception: true,
		PhotoWaiver:      true,
		Created:          now,
	}
}

// IsNew reports whether the RSVP has never been persisted.
func (r *RSVP) IsNew() bool {
	return r.RegistrationDate.Equal(r.Created)
}

// IsCurrent reports whether the RSVP stands uncancelled.
func (r *RSVP) IsCurrent() bool {
	return DateUnset(r.CancelDate)
}

// Dirty reports whether anything changed since the last load or save.
func (r *RSVP) Dirty() bool {
	return r.dirty
}

// ClearDirty resets the dirty flag after a successful save.
func (r *RSVP) ClearDirty() {
	r.dirty = false
}

func (r *RSVP) markDirty() {
	r.dirty = true
}

// SetCheckInDate updates the planned arrival date.
func (r *RSVP) SetCheckInDate(t time.Time) {
	r.CheckInDate = t
	r.markDirty()
}

// SetCheckOutDate updates the planned departure date.
func (r *RSVP) SetCheckOutDate(t time.Time) {
	r.CheckOutDate = t
	r.markDirty()
}

// SetWelcomeReception updates the welcome reception opt-in.
func (r *RSVP) SetWelcomeReception(attending bool) {
	r.WelcomeReception = attending
	r.markDirty()
}

// SetGolfing updates the golf opt-in.
func (r *RSVP) SetGolfing(golfing bool) {
	r.Golfing = golfing
	r.markDirty()
}

// SetPhotoWaiver records acceptance of the photo and video waiver.
func (r *RSVP) SetPhotoWaiver() {
	r.PhotoWaiver = true
	r.markDirty()
}

// SetNotes updates the free-text notes.
func (r *RSVP) SetNotes(notes string) {
	r.Notes = notes
	r.markDirty()
}

// SetAdmin records the delegated admin registering on this attendee's
// behalf.
func (r *RSVP) SetAdmin(admin *attendeeModels.Attendee) {
	r.Admin = admin
	r.markDirty()
}

// ContainsEvent reports whether an event selection exists.
func (r *RSVP) ContainsEvent(eventID int) bool {
	for _, e := range r.Events {
		if e.EventID == eventID {
			return true
		}
	}
	return false
}

// parentHasAssigned reports whether the parent already holds an
// administrator-assigned child.
func (r *RSVP) parentHasAssigned(parentEventID int) bool {
	for _, e := range r.Events {
		if e.ParentEventID == parentEventID && e.Assigned {
			return true
		}
	}
	return false
}

// SetEventItems replaces pending requests with the given selections.
// A parent that already has an administrator-assigned child is left
// untouched: those slots are locked. Within an unlocked parent, pending
// rows holding the same request order or the same event give way to the
// new selection.
func (r *RSVP) SetEventItems(selections []EventItem, now time.Time) {
	for _, item := range selections {
		if r.parentHasAssigned(item.ParentEventID) {
			continue
		}
		kept := r.Events[:0]
		for _, e := range r.Events {
			conflict := e.ParentEventID == item.ParentEventID && !e.Assigned &&
				(e.RequestOrder == item.RequestOrder || e.EventID == item.EventID)
			if !conflict {
				kept = append(kept, e)
			}
		}
		r.Events = append(kept, EventItem{
			EventID:       item.EventID,
			ParentEventID: item.ParentEventID,
			UserRole:      item.UserRole,
			RequestOrder:  item.RequestOrder,
			Assigned:      false,
			LastUpdated:   now,
		})
		r.markDirty()
	}
}

// AssignEvent locks one child under a parent as the assigned slot and
// unassigns its siblings.
func (r *RSVP) AssignEvent(parentEventID, childEventID int) {
	for i := range r.Events {
		if r.Events[i].ParentEventID != parentEventID {
			continue
		}
		r.Events[i].Assigned = r.Events[i].EventID == childEventID
	}
	r.markDirty()
}

// ClearEvents removes every non-assigned event row. Assigned rows stay:
// speakers and panelists cannot drop their own slots.
func (r *RSVP) ClearEvents() {
	kept := r.Events[:0]
	for _, e := range r.Events {
		if e.Assigned {
			kept = append(kept, e)
		}
	}
	r.Events = kept
	r.markDirty()
}

// ClearEvent removes one event selection unless it is assigned.
func (r *RSVP) ClearEvent(eventID int) {
	kept := r.Events[:0]
	for _, e := range r.Events {
		if e.EventID == eventID && !e.Assigned {
			continue
		}
		kept = append(kept, e)
	}
	r.Events = kept
	r.markDirty()
}

// SetMealItems upserts meal selections by meal ID.
func (r *RSVP) SetMealItems(selections []MealItem, now time.Time) {
	for _, item := range selections {
		found := false
		for i := range r.Meals {
			if r.Meals[i].MealID == item.MealID {
				r.Meals[i].MealOptionID = item.MealOptionID
				r.Meals[i].LastUpdated = now
				found = true
				break
			}
		}
		if !found {
			r.Meals = append(r.Meals, MealItem{
				MealID:       item.MealID,
				MealOptionID: item.MealOptionID,
				LastUpdated:  now,
			})
		}
	}
	r.markDirty()
}

// ClearMealChoice removes one meal selection.
func (r *RSVP) ClearMealChoice(mealID int) {
	kept := r.Meals[:0]
	for _, m := range r.Meals {
		if m.MealID != mealID {
			kept = append(kept, m)
		}
	}
	r.Meals = kept
	r.markDirty()
}

// ClearMeals removes every meal selection.
func (r *RSVP) ClearMeals() {
	r.Meals = nil
	r.markDirty()
}

// SetTransportationItem upserts transportation selections. Direction is
// the key: a different mode for the same direction replaces the old
// row, the same mode is a no-op.
func (r *RSVP) SetTransportationItem(selections []TransportationItem, now time.Time) {
	for _, item := range selections {
		replaced := false
		kept := r.Transportation[:0]
		for _, t := range r.Transportation {
			if t.Direction == item.Direction {
				if t.ModeID == item.ModeID {
					kept = append(kept, t)
					replaced = true
					continue
				}
				continue
			}
			kept = append(kept, t)
		}
		r.Transportation = kept
		if !replaced {
			r.Transportation = append(r.Transportation, TransportationItem{
				ModeID:      item.ModeID,
				Direction:   item.Direction,
				LastUpdated: now,
			})
			r.markDirty()
		}
	}
}

// ClearTransportation removes every transportation selection.
func (r *RSVP) ClearTransportation() {
	r.Transportation = nil
	r.markDirty()
}

// ClearSelections empties all three selection tables, as cancellation
// requires.
func (r *RSVP) ClearSelections() {
	r.Events = nil
	r.Meals = nil
	r.Transportation = nil
	r.markDirty()
}
