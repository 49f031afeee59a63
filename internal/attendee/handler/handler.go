package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"confreg/internal/attendee/models"
	"confreg/internal/transport/http/shared"
	dErrors "confreg/pkg/domain-errors"
	"confreg/pkg/requestcontext"
)

// Service defines the attendee operations the handler needs.
type Service interface {
	Lookup(ctx context.Context, email string) (*models.Attendee, error)
	IsRegistered(ctx context.Context, email string) (bool, error)
}

// Handler serves attendee lookups.
type Handler struct {
	attendees Service
	logger    *slog.Logger
}

// New creates an attendee Handler.
func New(attendees Service, logger *slog.Logger) *Handler {
	return &Handler{attendees: attendees, logger: logger}
}

// Register mounts the attendee routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/attendees/{email}", h.handleGet)
}

type attendeeResponse struct {
	ID            int    `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	WorkPhone     string `json:"workPhone,omitempty"`
	MobilePhone   string `json:"mobilePhone,omitempty"`
	FoodAllergies string `json:"foodAllergies,omitempty"`
	SpecialNeeds  string `json:"specialNeeds,omitempty"`
	Kind          string `json:"kind"`
	Registered    bool   `json:"registered"`

	Division   string `json:"division,omitempty"`
	JobRole    string `json:"jobRole,omitempty"`
	HomeOffice string `json:"homeOffice,omitempty"`
	ShirtSize  string `json:"shirtSize,omitempty"`

	VendorID  int    `json:"vendorId,omitempty"`
	StaffRole string `json:"staffRole,omitempty"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr := chi.URLParam(r, "email")
	if !govalidator.IsEmail(addr) {
		shared.WriteError(w, h.logger, dErrors.New(dErrors.CodeBadRequest, "invalid email"))
		return
	}

	a, err := h.attendees.Lookup(ctx, addr)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) && !dErrors.HasCode(err, dErrors.CodeBadRequest) {
			h.logger.ErrorContext(ctx, "attendee lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, h.logger, err)
		return
	}

	registered, err := h.attendees.IsRegistered(ctx, a.Email)
	if err != nil {
		h.logger.WarnContext(ctx, "registration check failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}

	resp := attendeeResponse{
		ID:            a.ID,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		WorkPhone:     a.WorkPhone,
		MobilePhone:   a.MobilePhone,
		FoodAllergies: a.FoodAllergies,
		SpecialNeeds:  a.SpecialNeeds,
		Kind:          string(a.Kind),
		Registered:    registered,
	}
	if a.Employee != nil {
		resp.Division = a.Employee.Division
		resp.JobRole = a.Employee.JobRole
		resp.HomeOffice = a.Employee.HomeOffice
		resp.ShirtSize = a.Employee.ShirtSize
	}
	if a.VendorStaff != nil {
		resp.VendorID = a.VendorStaff.VendorID
		resp.StaffRole = a.VendorStaff.StaffRole
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}
