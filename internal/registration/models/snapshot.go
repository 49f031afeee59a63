package models

import (
	attendeeModels "confreg/internal/attendee/models"
)

// Snapshot is the immutable baseline captured right after load. It
// carries the scalar state, a copy of the attendee, and the view-level
// selection details the changelog text is built from.
type Snapshot struct {
	FirstName     string
	LastName      string
	MobilePhone   string
	FoodAllergies string
	SpecialNeeds  string

	Division   string
	JobRole    string
	HomeOffice string
	ShirtSize  string
	Employee   bool

	CheckInDate      string
	CheckOutDate     string
	WelcomeReception bool
	Golfing          bool

	MealDetails           []MealDetail
	TransportationDetails []TransportationDetail
}

// Snapshot captures the current state as the diff baseline. The detail
// rows come from the selection views, which carry the display fields.
func (r *RSVP) Snapshot(meals []MealDetail, transportation []TransportationDetail) *Snapshot {
	s := &Snapshot{
		CheckInDate:           formatDate(r.CheckInDate),
		CheckOutDate:          formatDate(r.CheckOutDate),
		WelcomeReception:      r.WelcomeReception,
		Golfing:               r.Golfing,
		MealDetails:           append([]MealDetail(nil), meals...),
		TransportationDetails: append([]TransportationDetail(nil), transportation...),
	}
	if a := r.Attendee; a != nil {
		s.FirstName = a.FirstName
		s.LastName = a.LastName
		s.MobilePhone = a.MobilePhone
		s.FoodAllergies = a.FoodAllergies
		s.SpecialNeeds = a.SpecialNeeds
		if a.Kind == attendeeModels.KindEmployee && a.Employee != nil {
			s.Employee = true
			s.Division = a.Employee.Division
			s.JobRole = a.Employee.JobRole
			s.HomeOffice = a.Employee.HomeOffice
			s.ShirtSize = a.Employee.ShirtSize
		}
	}
	return s
}
