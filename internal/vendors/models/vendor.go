package models

import dErrors "confreg/pkg/domain-errors"

// Vendor is a supplier contracted for the conference: a caterer, a
// transportation company, the venue operator.
type Vendor struct {
	ID            int    `json:"id"`
	CompanyName   string `json:"companyName"`
	StreetAddress string `json:"streetAddress,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	ZipCode       string `json:"zipCode,omitempty"`
	ContactEmail  string `json:"contactEmail,omitempty"`
	WebAddress    string `json:"webAddress,omitempty"`
	Function      string `json:"function,omitempty"`
}

// Venue is a vendor that also hosts conference events.
type Venue struct {
	Vendor
	VenueType    string `json:"venueType,omitempty"`
	MainPhone    string `json:"mainPhone,omitempty"`
	MapHyperlink string `json:"mapHyperlink,omitempty"`
}

// Validate checks a vendor before it is persisted.
func (v *Vendor) Validate() error {
	if v.CompanyName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "vendor company name is required")
	}
	return nil
}
