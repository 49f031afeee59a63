package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"confreg/internal/conference/models"
	"confreg/internal/transport/http/shared"
	dErrors "confreg/pkg/domain-errors"
)

// Service defines the conference operations the handler needs.
type Service interface {
	Conference() *models.Conference
	SendInvitations(ctx context.Context, inviteClass int) (int, error)
	ResendInvitations(ctx context.Context, inviteClass int) (int, error)
	SendReminders(ctx context.Context, inviteClass int) (int, error)
	SendStaffInvitations(ctx context.Context) (int, error)
	SendConfirmations(ctx context.Context) (int, error)
	CorrectMissingConfirmationCodes(ctx context.Context) (int, error)
	AddInvitee(ctx context.Context, addr, divisionText, inviteType string) error
	Events(ctx context.Context) ([]models.ConferenceEvent, error)
	Event(ctx context.Context, eventID int) (*models.ConferenceEvent, error)
	SaveEvent(ctx context.Context, e *models.ConferenceEvent) error
	DeleteEvent(ctx context.Context, eventID int) error
	EventParentPath(ctx context.Context, eventID int) (string, error)
}

// Handler serves the conference administration routes.
type Handler struct {
	conferences Service
	logger      *slog.Logger
}

// New creates a conference Handler.
func New(conferences Service, logger *slog.Logger) *Handler {
	return &Handler{conferences: conferences, logger: logger}
}

// Register mounts the conference routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/conference", h.handleGetConference)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.handleListEvents)
		r.Post("/", h.handleSaveEvent)
		r.Get("/{eventID}", h.handleGetEvent)
		r.Put("/{eventID}", h.handleSaveEvent)
		r.Delete("/{eventID}", h.handleDeleteEvent)
		r.Get("/{eventID}/path", h.handleEventPath)
	})

	r.Post("/invitees", h.handleAddInvitee)
	r.Post("/invitations/send", h.batch(h.sendInvitationsByClass(false)))
	r.Post("/invitations/resend", h.batch(h.sendInvitationsByClass(true)))
	r.Post("/reminders/send", h.batch(func(r *http.Request) (int, error) {
		class, err := inviteClass(r)
		if err != nil {
			return 0, err
		}
		return h.conferences.SendReminders(r.Context(), class)
	}))
	r.Post("/staff-invitations/send", h.batch(func(r *http.Request) (int, error) {
		return h.conferences.SendStaffInvitations(r.Context())
	}))
	r.Post("/confirmations/send", h.batch(func(r *http.Request) (int, error) {
		return h.conferences.SendConfirmations(r.Context())
	}))
	r.Post("/confirmations/backfill-codes", h.batch(func(r *http.Request) (int, error) {
		return h.conferences.CorrectMissingConfirmationCodes(r.Context())
	}))
}

type conferenceResponse struct {
	ID                        int      `json:"id"`
	Title                     string   `json:"title"`
	Website                   string   `json:"website,omitempty"`
	InviteMax                 int      `json:"inviteMax"`
	VenueID                   int      `json:"venueId"`
	Start                     string   `json:"start"`
	Stop                      string   `json:"stop"`
	PrimaryRegistrationClosed string   `json:"primaryRegistrationClosed"`
	LateRegistrationClosed    string   `json:"lateRegistrationClosed"`
	POCs                      []string `json:"pocs,omitempty"`
}

type inviteeRequest struct {
	Email        string `json:"email"`
	DivisionText string `json:"divisionText"`
	InviteType   string `json:"inviteType"`
}

type batchResponse struct {
	Processed int `json:"processed"`
}

func (h *Handler) handleGetConference(w http.ResponseWriter, r *http.Request) {
	c := h.conferences.Conference()
	shared.WriteJSON(w, http.StatusOK, conferenceResponse{
		ID:                        c.ID,
		Title:                     c.Title,
		Website:                   c.Website,
		InviteMax:                 c.InviteMax,
		VenueID:                   c.VenueID,
		Start:                     c.Start.Format(time.RFC3339),
		Stop:                      c.Stop.Format(time.RFC3339),
		PrimaryRegistrationClosed: c.PrimaryRegistrationClosed.Format(time.RFC3339),
		LateRegistrationClosed:    c.LateRegistrationClosed.Format(time.RFC3339),
		POCs:                      c.POCs,
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.conferences.Events(r.Context())
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	e, err := h.conferences.Event(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) handleSaveEvent(w http.ResponseWriter, r *http.Request) {
	var e models.ConferenceEvent
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		shared.WriteError(w, h.logger, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}
	if raw := chi.URLParam(r, "eventID"); raw != "" {
		id, err := eventID(r)
		if err != nil {
			shared.WriteError(w, h.logger, err)
			return
		}
		e.ID = id
	}

	if err := h.conferences.SaveEvent(r.Context(), &e); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, &e)
}

func (h *Handler) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	if err := h.conferences.DeleteEvent(r.Context(), id); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEventPath(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	path, err := h.conferences.EventParentPath(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (h *Handler) handleAddInvitee(w http.ResponseWriter, r *http.Request) {
	var req inviteeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, h.logger, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}
	if !govalidator.IsEmail(req.Email) {
		shared.WriteError(w, h.logger, dErrors.New(dErrors.CodeBadRequest, "invalid email address"))
		return
	}

	if err := h.conferences.AddInvitee(r.Context(), req.Email, req.DivisionText, req.InviteType); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// batch adapts a batch job into a handler reporting how many items it
// processed.
func (h *Handler) batch(run func(r *http.Request) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := run(r)
		if err != nil {
			shared.WriteError(w, h.logger, err)
			return
		}
		shared.WriteJSON(w, http.StatusOK, batchResponse{Processed: n})
	}
}

func (h *Handler) sendInvitationsByClass(resend bool) func(r *http.Request) (int, error) {
	return func(r *http.Request) (int, error) {
		class, err := inviteClass(r)
		if err != nil {
			return 0, err
		}
		if resend {
			return h.conferences.ResendInvitations(r.Context(), class)
		}
		return h.conferences.SendInvitations(r.Context(), class)
	}
}

func inviteClass(r *http.Request) (int, error) {
	class, err := strconv.Atoi(r.URL.Query().Get("class"))
	if err != nil || (class != models.InviteClassPrimary && class != models.InviteClassLate) {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid invite class")
	}
	return class, nil
}

func eventID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid event id")
	}
	return id, nil
}
