package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"confreg/internal/transport/http/shared"
	"confreg/internal/vendors/models"
	dErrors "confreg/pkg/domain-errors"
)

// Service defines the vendor operations the handler needs.
type Service interface {
	Vendor(ctx context.Context, vendorID int) (*models.Vendor, error)
	Venue(ctx context.Context, vendorID int) (*models.Venue, error)
	Save(ctx context.Context, v *models.Vendor) error
}

// Handler serves the vendor administration routes.
type Handler struct {
	vendors Service
	logger  *slog.Logger
}

// New creates a vendor Handler.
func New(vendors Service, logger *slog.Logger) *Handler {
	return &Handler{vendors: vendors, logger: logger}
}

// Register mounts the vendor routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/vendors/{vendorID}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Put("/", h.handlePut)
		r.Get("/venue", h.handleGetVenue)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := vendorID(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	v, err := h.vendors.Vendor(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleGetVenue(w http.ResponseWriter, r *http.Request) {
	id, err := vendorID(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	v, err := h.vendors.Venue(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	id, err := vendorID(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}

	var v models.Vendor
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		shared.WriteError(w, h.logger, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}
	v.ID = id

	if err := h.vendors.Save(r.Context(), &v); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, &v)
}

func vendorID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "vendorID"))
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid vendor id")
	}
	return id, nil
}
