package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confreg/internal/conference/models"
	dErrors "confreg/pkg/domain-errors"
)

type fakeService struct {
	conf        *models.Conference
	events      map[int]*models.ConferenceEvent
	invitations int
	reminders   int
	confirmed   int
	invitees    []string
	savedEvents []*models.ConferenceEvent
	deleted     []int
}

func (f *fakeService) Conference() *models.Conference { return f.conf }

func (f *fakeService) SendInvitations(ctx context.Context, inviteClass int) (int, error) {
	f.invitations++
	return 5, nil
}

func (f *fakeService) ResendInvitations(ctx context.Context, inviteClass int) (int, error) {
	f.invitations++
	return 12, nil
}

func (f *fakeService) SendReminders(ctx context.Context, inviteClass int) (int, error) {
	f.reminders++
	return 3, nil
}

func (f *fakeService) SendStaffInvitations(ctx context.Context) (int, error) {
	return 2, nil
}

func (f *fakeService) SendConfirmations(ctx context.Context) (int, error) {
	f.confirmed++
	return 4, nil
}

func (f *fakeService) CorrectMissingConfirmationCodes(ctx context.Context) (int, error) {
	return 1, nil
}

func (f *fakeService) AddInvitee(ctx context.Context, addr, divisionText, inviteType string) error {
	f.invitees = append(f.invitees, addr)
	return nil
}

func (f *fakeService) Events(ctx context.Context) ([]models.ConferenceEvent, error) {
	var out []models.ConferenceEvent
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeService) Event(ctx context.Context, eventID int) (*models.ConferenceEvent, error) {
	if e, ok := f.events[eventID]; ok {
		return e, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "no such event")
}

func (f *fakeService) SaveEvent(ctx context.Context, e *models.ConferenceEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == 0 {
		e.ID = 31
	}
	f.savedEvents = append(f.savedEvents, e)
	return nil
}

func (f *fakeService) DeleteEvent(ctx context.Context, eventID int) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

func (f *fakeService) EventParentPath(ctx context.Context, eventID int) (string, error) {
	return "Day 1 > Morning", nil
}

func newTestRouter(svc *fakeService) chi.Router {
	if svc.conf == nil {
		svc.conf = &models.Conference{
			ID:    7,
			Title: "Engineering Conference 2026",
			Start: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
			Stop:  time.Date(2026, 6, 4, 17, 0, 0, 0, time.UTC),
		}
	}
	r := chi.NewRouter()
	New(svc, slog.Default()).Register(r)
	return r
}

func TestGetConference(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/conference", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp conferenceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.ID)
	assert.Equal(t, "Engineering Conference 2026", resp.Title)
}

func TestSendInvitationsRequiresClass(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/invitations/send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.invitations)
}

func TestSendInvitationsReportsProcessed(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/invitations/send?class=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Processed)
	assert.Equal(t, 1, svc.invitations)
}

func TestBackfillCodes(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/confirmations/backfill-codes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Processed)
}

func TestAddInvitee(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body := `{"email": "pat.jones@example.com", "divisionText": "Products", "inviteType": "conference"}`
	req := httptest.NewRequest(http.MethodPost, "/invitees", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"pat.jones@example.com"}, svc.invitees)
}

func TestAddInviteeRejectsBadEmail(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/invitees", strings.NewReader(`{"email": "nope"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEvent(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body := `{
		"title": "Opening Keynote",
		"start": "2026-06-01T09:00:00Z",
		"stop":  "2026-06-01T10:00:00Z",
		"location": "Aspen Ballroom"
	}`
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var e models.ConferenceEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, 31, e.ID)
	require.Len(t, svc.savedEvents, 1)
}

func TestUpdateEventUsesPathID(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body := `{"title": "Opening Keynote", "start": "2026-06-01T09:00:00Z", "stop": "2026-06-01T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPut, "/events/31", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.savedEvents, 1)
	assert.Equal(t, 31, svc.savedEvents[0].ID)
}

func TestCreateEventMissingTitle(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEvent(t *testing.T) {
	svc := &fakeService{events: map[int]*models.ConferenceEvent{31: {ID: 31, Title: "x"}}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/events/31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int{31}, svc.deleted)
}

func TestEventParentPath(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/events/31/path", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Day 1 > Morning", resp["path"])
}
