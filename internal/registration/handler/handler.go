package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	attendeeModels "confreg/internal/attendee/models"
	"confreg/internal/registration/models"
	"confreg/internal/transport/http/shared"
	dErrors "confreg/pkg/domain-errors"
	"confreg/pkg/requestcontext"
)

// Service defines the registration operations the handler needs.
type Service interface {
	Load(ctx context.Context, a *attendeeModels.Attendee, invitationType string) *models.RSVP
	Update(ctx context.Context, r *models.RSVP) error
	Cancel(ctx context.Context, r *models.RSVP, reason string) error
	MealDetails(ctx context.Context, userID int) ([]models.MealDetail, error)
	TransportationDetails(ctx context.Context, userID int) ([]models.TransportationDetail, error)
}

// Attendees resolves the attendee an RSVP belongs to.
type Attendees interface {
	Lookup(ctx context.Context, email string) (*attendeeModels.Attendee, error)
}

// CalendarRenderer produces the iCalendar attachment for a
// registration.
type CalendarRenderer interface {
	Calendar(r *models.RSVP) ([]byte, error)
}

// Handler serves the RSVP lifecycle routes.
type Handler struct {
	registrations Service
	attendees     Attendees
	calendar      CalendarRenderer
	logger        *slog.Logger
}

// New creates a registration Handler.
func New(registrations Service, attendees Attendees, calendar CalendarRenderer, logger *slog.Logger) *Handler {
	return &Handler{
		registrations: registrations,
		attendees:     attendees,
		calendar:      calendar,
		logger:        logger,
	}
}

// Register mounts the registration routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/rsvps/{email}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Put("/", h.handlePut)
		r.Post("/cancel", h.handleCancel)
		r.Get("/calendar", h.handleCalendar)
	})
}

type rsvpRequest struct {
	CheckInDate      *time.Time                  `json:"checkInDate"`
	CheckOutDate     *time.Time                  `json:"checkOutDate"`
	WelcomeReception *bool                       `json:"welcomeReception"`
	Golfing          *bool                       `json:"golfing"`
	PhotoWaiver      *bool                       `json:"photoWaiver"`
	Notes            *string                     `json:"notes"`
	MobilePhone      *string                     `json:"mobilePhone"`
	FoodAllergies    *string                     `json:"foodAllergies"`
	SpecialNeeds     *string                     `json:"specialNeeds"`
	ShirtSize        *string                     `json:"shirtSize"`
	Events           []models.EventItem          `json:"events"`
	Meals            []models.MealItem           `json:"meals"`
	Transportation   []models.TransportationItem `json:"transportation"`
	AdminEmail       *string                     `json:"adminEmail"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type rsvpResponse struct {
	Email            string                      `json:"email"`
	InvitationType   string                      `json:"invitationType"`
	ConfirmationCode string                      `json:"confirmationCode,omitempty"`
	RegistrationDate time.Time                   `json:"registrationDate"`
	CheckInDate      *time.Time                  `json:"checkInDate,omitempty"`
	CheckOutDate     *time.Time                  `json:"checkOutDate,omitempty"`
	WelcomeReception bool                        `json:"welcomeReception"`
	Golfing          bool                        `json:"golfing"`
	PhotoWaiver      bool                        `json:"photoWaiver"`
	Notes            string                      `json:"notes,omitempty"`
	New              bool                        `json:"new"`
	Current          bool                        `json:"current"`
	Valid            bool                        `json:"valid"`
	AdminEmail       string                      `json:"adminEmail,omitempty"`
	Events           []models.EventItem          `json:"events"`
	Meals            []models.MealItem           `json:"meals"`
	Transportation   []models.TransportationItem `json:"transportation"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rsvp, err := h.load(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(rsvp))
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	rsvp, err := h.load(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}

	var req rsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		shared.WriteError(w, h.logger, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}

	now := requestcontext.Now(r.Context())
	apply(rsvp, &req, now)

	if req.AdminEmail != nil && *req.AdminEmail != "" {
		admin, err := h.attendees.Lookup(r.Context(), *req.AdminEmail)
		if err != nil {
			shared.WriteError(w, h.logger, dErrors.Wrap(err, dErrors.CodeBadRequest, "unknown admin"))
			return
		}
		rsvp.SetAdmin(admin)
	}

	if err := h.registrations.Update(r.Context(), rsvp); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(rsvp))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	rsvp, err := h.load(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		shared.WriteError(w, h.logger, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}

	if err := h.registrations.Cancel(r.Context(), rsvp, req.Reason); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(rsvp))
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	rsvp, err := h.load(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	if rsvp.IsNew() || !rsvp.IsCurrent() {
		shared.WriteError(w, h.logger, dErrors.New(dErrors.CodeNotFound, "no active registration"))
		return
	}

	ics, err := h.calendar.Calendar(rsvp)
	if err != nil {
		shared.WriteError(w, h.logger, dErrors.Wrap(err, dErrors.CodeInternal, "render calendar"))
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="conference.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write(ics)
}

// load resolves the attendee from the path and assembles their RSVP.
func (h *Handler) load(r *http.Request) (*models.RSVP, error) {
	addr := chi.URLParam(r, "email")
	if !govalidator.IsEmail(addr) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid email address")
	}

	invitationType := r.URL.Query().Get("type")
	if invitationType == "" {
		invitationType = "conference"
	}

	a, err := h.attendees.Lookup(r.Context(), addr)
	if err != nil {
		return nil, err
	}
	return h.registrations.Load(r.Context(), a, invitationType), nil
}

// apply folds the request body into the aggregate through its setters
// so only real changes mark it dirty.
func apply(rsvp *models.RSVP, req *rsvpRequest, now time.Time) {
	if req.CheckInDate != nil {
		rsvp.SetCheckInDate(*req.CheckInDate)
	}
	if req.CheckOutDate != nil {
		rsvp.SetCheckOutDate(*req.CheckOutDate)
	}
	if req.WelcomeReception != nil {
		rsvp.SetWelcomeReception(*req.WelcomeReception)
	}
	if req.Golfing != nil {
		rsvp.SetGolfing(*req.Golfing)
	}
	if req.PhotoWaiver != nil && *req.PhotoWaiver {
		rsvp.SetPhotoWaiver()
	}
	if req.Notes != nil {
		rsvp.SetNotes(*req.Notes)
	}
	if req.MobilePhone != nil {
		rsvp.Attendee.MobilePhone = *req.MobilePhone
	}
	if req.FoodAllergies != nil {
		rsvp.Attendee.FoodAllergies = *req.FoodAllergies
	}
	if req.SpecialNeeds != nil {
		rsvp.Attendee.SpecialNeeds = *req.SpecialNeeds
	}
	if req.ShirtSize != nil && rsvp.Attendee.Employee != nil {
		rsvp.Attendee.Employee.ShirtSize = *req.ShirtSize
	}
	if req.Events != nil {
		rsvp.SetEventItems(req.Events, now)
	}
	if req.Meals != nil {
		rsvp.SetMealItems(req.Meals, now)
	}
	if req.Transportation != nil {
		rsvp.SetTransportationItem(req.Transportation, now)
	}
}

func toResponse(r *models.RSVP) rsvpResponse {
	resp := rsvpResponse{
		Email:            r.Attendee.Email,
		InvitationType:   r.InvitationType,
		ConfirmationCode: r.ConfirmationCode,
		RegistrationDate: r.RegistrationDate,
		WelcomeReception: r.WelcomeReception,
		Golfing:          r.Golfing,
		PhotoWaiver:      r.PhotoWaiver,
		Notes:            r.Notes,
		New:              r.IsNew(),
		Current:          r.IsCurrent(),
		Valid:            r.Valid,
		Events:           r.Events,
		Meals:            r.Meals,
		Transportation:   r.Transportation,
	}
	if !models.DateUnset(r.CheckInDate) {
		t := r.CheckInDate
		resp.CheckInDate = &t
	}
	if !models.DateUnset(r.CheckOutDate) {
		t := r.CheckOutDate
		resp.CheckOutDate = &t
	}
	if r.Admin != nil {
		resp.AdminEmail = r.Admin.Email
	}
	return resp
}
