package models

import "time"

// EventItem is one requested or assigned event slot. Assigned rows are
// locked by an administrator and immutable to the attendee.
type EventItem struct {
	EventID       int       `json:"eventId"`
	ParentEventID int       `json:"parentEventId"`
	UserRole      string    `json:"userRole,omitempty"`
	RequestOrder  int       `json:"requestOrder"`
	Assigned      bool      `json:"assigned"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// MealItem is one meal selection, keyed by MealID.
type MealItem struct {
	MealID       int       `json:"mealId"`
	MealOptionID int       `json:"mealOptionId"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// TransportationItem is one transportation selection. Direction is a
// uniqueness key: at most one mode per direction.
type TransportationItem struct {
	ModeID      int       `json:"modeId"`
	Direction   string    `json:"direction"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// MealDetail is the view-level shape of a meal selection, with the
// display fields the changelog text needs.
type MealDetail struct {
	MealID         int
	MealDate       time.Time
	MealType       string
	MealOptionID   int
	MealOptionName string
}

// TransportationDetail is the view-level shape of a transportation
// selection.
type TransportationDetail struct {
	Direction  string
	ModeID     int
	ModeText   string
	DepartTime time.Time
}
