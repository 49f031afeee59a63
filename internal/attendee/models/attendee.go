package models

// Kind discriminates the two attendee variants. Exactly one of the
// profile pointers on Attendee is set, matching the kind.
type Kind string

const (
	KindEmployee    Kind = "employee"
	KindVendorStaff Kind = "vendor_staff"
)

// Attendee is a person registered (or invited) for a conference.
// Email is the natural key and immutable after creation; ID is the
// surrogate key assigned by the database on first save. ID <= 0 means
// the attendee has never been persisted.
type Attendee struct {
	ID            int
	Email         string
	FirstName     string
	LastName      string
	WorkPhone     string
	MobilePhone   string
	FoodAllergies string
	SpecialNeeds  string
	Invitee       bool

	Kind        Kind
	Employee    *EmployeeProfile
	VendorStaff *VendorStaffProfile
}

// EmployeeProfile carries the fields only internal employees have. The
// directory owns login through city; the rest is self-service.
type EmployeeProfile struct {
	Login      string
	EmployeeID string
	Department string
	Division   string
	JobRole    string
	Country    string
	City       string
	HomeOffice string
	ShirtSize  string
	Bio        string

	// InviteClass is the invitation tier; -1 when the attendee has no
	// invitation row yet.
	InviteClass int
}

// VendorStaffProfile carries the fields only external vendor staff have.
type VendorStaffProfile struct {
	VendorID  int
	StaffRole string
}

// FullName joins first and last name for display and email text.
func (a *Attendee) FullName() string {
	return a.FirstName + " " + a.LastName
}

// IsNew reports whether the attendee has been persisted yet.
func (a *Attendee) IsNew() bool {
	return a.ID <= 0
}

// Validate checks the variant wiring.
func (a *Attendee) Validate() error {
	switch a.Kind {
	case KindEmployee:
		if a.Employee == nil || a.VendorStaff != nil {
			return errProfileMismatch
		}
	case KindVendorStaff:
		if a.VendorStaff == nil || a.Employee != nil {
			return errProfileMismatch
		}
	default:
		return errUnknownKind
	}
	if a.Email == "" {
		return errMissingEmail
	}
	return nil
}
