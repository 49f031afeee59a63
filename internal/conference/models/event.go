package models

import (
	"time"

	dErrors "confreg/pkg/domain-errors"
)

// ConferenceEvent is one session, talk or panel. Parent events group
// children; an event with ParentID 0 is top-level.
type ConferenceEvent struct {
	ID          int       `json:"id"`
	Start       time.Time `json:"start"`
	Stop        time.Time `json:"stop"`
	Location    string    `json:"location,omitempty"`
	Type        string    `json:"type,omitempty"`
	Title       string    `json:"title"`
	ParentID    int       `json:"parentId"`
	Media       string    `json:"media,omitempty"`
	MaxRequests int       `json:"maxRequests"`
	IsPublic    bool      `json:"isPublic"`
	VenueID     int       `json:"venueId"`
}

// Validate enforces the time-range invariant. Parent-range validation
// needs the database and lives in the service.
func (e *ConferenceEvent) Validate() error {
	if e.Title == "" {
		return dErrors.New(dErrors.CodeBadRequest, "event title is required")
	}
	if e.Stop.Before(e.Start) {
		return dErrors.New(dErrors.CodeInvariantViolation, "event stops before it starts")
	}
	return nil
}
