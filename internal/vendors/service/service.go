package service

import (
	"context"
	"log/slog"

	"confreg/internal/vendors/models"
)

// VendorStore is the persistence surface the service depends on.
type VendorStore interface {
	Vendor(ctx context.Context, vendorID int) (*models.Vendor, error)
	Venue(ctx context.Context, vendorID int) (*models.Venue, error)
	Save(ctx context.Context, v *models.Vendor) error
	VenueIDFromRoomName(ctx context.Context, roomName string) (int, error)
}

// Service exposes vendor and venue metadata.
type Service struct {
	store  VendorStore
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a vendor Service.
func New(store VendorStore, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Vendor returns one vendor record.
func (s *Service) Vendor(ctx context.Context, vendorID int) (*models.Vendor, error) {
	return s.store.Vendor(ctx, vendorID)
}

// Venue returns a vendor's venue facet.
func (s *Service) Venue(ctx context.Context, vendorID int) (*models.Venue, error) {
	return s.store.Venue(ctx, vendorID)
}

// Save validates and persists a vendor.
func (s *Service) Save(ctx context.Context, v *models.Vendor) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := s.store.Save(ctx, v); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "vendor saved", "vendor_id", v.ID, "company", v.CompanyName)
	return nil
}

// VenueIDFromRoomName resolves which venue hosts a named room.
func (s *Service) VenueIDFromRoomName(ctx context.Context, roomName string) (int, error) {
	return s.store.VenueIDFromRoomName(ctx, roomName)
}
