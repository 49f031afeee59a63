package store

import (
	"context"
	"fmt"

	"confreg/internal/gateway"
	"confreg/internal/vendors/models"
	dErrors "confreg/pkg/domain-errors"
)

// Store persists vendors and venues through the stored procedure
// gateway.
type Store struct {
	gw gateway.Gateway
}

// New creates a vendor Store.
func New(gw gateway.Gateway) *Store {
	return &Store{gw: gw}
}

// Vendor loads one vendor by ID. Anything other than exactly one row
// is treated as a broken invariant rather than a soft miss.
func (s *Store) Vendor(ctx context.Context, vendorID int) (*models.Vendor, error) {
	rows, err := s.gw.Table(ctx, "sp_GetVendor", gateway.Params{"vendorID": vendorID})
	if err != nil {
		return nil, fmt.Errorf("fetch vendor %d: %w", vendorID, err)
	}
	if len(rows) != 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("vendor %d: expected one row, got %d", vendorID, len(rows)))
	}
	return vendorFromRow(rows[0]), nil
}

// Venue loads the venue facet for a vendor together with its vendor
// record.
func (s *Store) Venue(ctx context.Context, vendorID int) (*models.Venue, error) {
	vendor, err := s.Vendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	rows, err := s.gw.Table(ctx, "sp_GetVenue", gateway.Params{"vendorID": vendorID})
	if err != nil {
		return nil, fmt.Errorf("fetch venue %d: %w", vendorID, err)
	}
	if len(rows) != 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("venue %d: expected one row, got %d", vendorID, len(rows)))
	}

	row := rows[0]
	return &models.Venue{
		Vendor:       *vendor,
		VenueType:    row.Str("venueType"),
		MainPhone:    row.Str("venueMainPhone"),
		MapHyperlink: row.Str("venueMapHyperlink"),
	}, nil
}

// Save writes a vendor back through sp_LoadVendor.
func (s *Store) Save(ctx context.Context, v *models.Vendor) error {
	row := gateway.Row{
		"vendorID":            v.ID,
		"vendorCompanyName":   v.CompanyName,
		"vendorStreetAddress": v.StreetAddress,
		"vendorCity":          v.City,
		"vendorState":         v.State,
		"vendorZip":           v.ZipCode,
		"vendorContactEmail":  v.ContactEmail,
		"vendorWebAddress":    v.WebAddress,
		"vendorFunction":      v.Function,
	}
	status, err := s.gw.Exec(ctx, "sp_LoadVendor", gateway.Params{"vendor": []gateway.Row{row}})
	if err != nil {
		return fmt.Errorf("save vendor %d: %w", v.ID, err)
	}
	if status != 0 {
		return fmt.Errorf("save vendor %d: status %d: %w", v.ID, status,
			dErrors.New(dErrors.CodeInvariantViolation, "vendor save rejected"))
	}
	return nil
}

// VenueIDFromRoomName resolves which venue hosts a named room.
func (s *Store) VenueIDFromRoomName(ctx context.Context, roomName string) (int, error) {
	v, err := s.gw.Scalar(ctx, "sp_GetVenueIDFromRoomName", gateway.Params{"roomName": roomName})
	if err != nil {
		return 0, fmt.Errorf("venue for room %q: %w", roomName, err)
	}
	return gateway.Row{"id": v}.Int("id"), nil
}

func vendorFromRow(row gateway.Row) *models.Vendor {
	return &models.Vendor{
		ID:            row.Int("vendorID"),
		CompanyName:   row.Str("vendorCompanyName"),
		StreetAddress: row.Str("vendorStreetAddress"),
		City:          row.Str("vendorCity"),
		State:         row.Str("vendorState"),
		ZipCode:       row.Str("vendorZip"),
		ContactEmail:  row.Str("vendorContactEmail"),
		WebAddress:    row.Str("vendorWebAddress"),
		Function:      row.Str("vendorFunction"),
	}
}
