package models

import (
	"fmt"
	"time"
)

// Change is one human-readable field-level difference.
type Change struct {
	Item     string
	Original string
	Final    string
}

// Diff compares the load-time snapshot against the current state and
// returns the changes in checklist order. The order is fixed: identity
// and stay details first, then meals, allergies and needs, then
// transportation. Diffing an unchanged RSVP yields nothing.
func (r *RSVP) Diff(meals []MealDetail, transportation []TransportationDetail) []Change {
	orig := r.Original
	if orig == nil {
		return nil
	}

	var changes []Change
	add := func(item, from, to string) {
		changes = append(changes, Change{Item: item, Original: from, Final: to})
	}

	cur := r.Snapshot(meals, transportation)

	if orig.FirstName != cur.FirstName || orig.LastName != cur.LastName {
		add("Name", orig.FirstName+" "+orig.LastName, cur.FirstName+" "+cur.LastName)
	}
	if orig.CheckInDate != cur.CheckInDate {
		add("Check In Date", orig.CheckInDate, cur.CheckInDate)
	}
	if orig.CheckOutDate != cur.CheckOutDate {
		add("Check Out Date", orig.CheckOutDate, cur.CheckOutDate)
	}
	if orig.WelcomeReception != cur.WelcomeReception {
		add("Welcome Reception", attending(orig.WelcomeReception), attending(cur.WelcomeReception))
	}
	if orig.Golfing != cur.Golfing {
		add("Golf", yesNo(orig.Golfing), yesNo(cur.Golfing))
	}
	if orig.MobilePhone != cur.MobilePhone {
		add("MobilePhone", orig.MobilePhone, cur.MobilePhone)
	}
	if orig.Employee {
		if orig.Division != cur.Division {
			add("Division", orig.Division, cur.Division)
		}
		if orig.JobRole != cur.JobRole {
			add("JobRole", orig.JobRole, cur.JobRole)
		}
		if orig.HomeOffice != cur.HomeOffice {
			add("HomeOffice", orig.HomeOffice, cur.HomeOffice)
		}
		if orig.ShirtSize != cur.ShirtSize {
			add("ShirtSize", orig.ShirtSize, cur.ShirtSize)
		}
	}

	changes = append(changes, diffMeals(orig.MealDetails, cur.MealDetails)...)

	if orig.FoodAllergies != cur.FoodAllergies {
		add("FoodAllergies", orig.FoodAllergies, cur.FoodAllergies)
	}
	if orig.SpecialNeeds != cur.SpecialNeeds {
		add("Special Needs", orig.SpecialNeeds, cur.SpecialNeeds)
	}

	changes = append(changes, diffTransportation(orig.TransportationDetails, cur.TransportationDetails)...)

	return changes
}

// diffMeals matches by meal ID: removals and option changes first, then
// additions.
func diffMeals(orig, cur []MealDetail) []Change {
	var changes []Change

	curByID := make(map[int]MealDetail, len(cur))
	for _, m := range cur {
		curByID[m.MealID] = m
	}
	origByID := make(map[int]MealDetail, len(orig))
	for _, m := range orig {
		origByID[m.MealID] = m
	}

	for _, m := range orig {
		now, ok := curByID[m.MealID]
		if !ok {
			changes = append(changes, Change{
				Item:     "Meal Change",
				Original: fmt.Sprintf("%s - %s selected.", formatDate(m.MealDate), m.MealType),
				Final:    fmt.Sprintf("%s - %s removed.", formatDate(m.MealDate), m.MealType),
			})
			continue
		}
		if m.MealOptionName != now.MealOptionName {
			changes = append(changes, Change{
				Item:     "Meal Change",
				Original: fmt.Sprintf("%s - %s choice: %s", formatDate(m.MealDate), m.MealType, m.MealOptionName),
				Final:    fmt.Sprintf("%s - %s choice updated to: %s", formatDate(m.MealDate), now.MealType, now.MealOptionName),
			})
		}
	}
	for _, m := range cur {
		if _, ok := origByID[m.MealID]; !ok {
			changes = append(changes, Change{
				Item:     "Meal Change",
				Original: fmt.Sprintf("%s not selected.", m.MealType),
				Final:    fmt.Sprintf("%s added.", m.MealType),
			})
		}
	}
	return changes
}

// diffTransportation matches by direction. A dropped direction shows
// "Nothing" as the final value.
func diffTransportation(orig, cur []TransportationDetail) []Change {
	var changes []Change

	curByDirection := make(map[string]TransportationDetail, len(cur))
	for _, t := range cur {
		curByDirection[t.Direction] = t
	}

	for _, t := range orig {
		now, ok := curByDirection[t.Direction]
		if !ok {
			changes = append(changes, Change{
				Item:     "Transportation",
				Original: formatTransportation(t),
				Final:    "Nothing",
			})
			continue
		}
		if t.ModeID != now.ModeID {
			changes = append(changes, Change{
				Item:     "Transportation",
				Original: formatTransportation(t),
				Final:    formatTransportation(now),
			})
		}
	}
	return changes
}

func formatTransportation(t TransportationDetail) string {
	return fmt.Sprintf("%s - %s @ %s %s",
		t.Direction, t.ModeText,
		formatDate(t.DepartTime), t.DepartTime.Format("3:04 PM"))
}

func formatDate(t time.Time) string {
	if DateUnset(t) {
		return ""
	}
	return t.Format("1/2/2006")
}

func attending(b bool) string {
	if b {
		return "Attending"
	}
	return "Not Attending"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
