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

	attendeeModels "confreg/internal/attendee/models"
	"confreg/internal/registration/models"
	dErrors "confreg/pkg/domain-errors"
)

type fakeService struct {
	rsvp      *models.RSVP
	updateErr error
	cancelErr error
	updated   bool
	cancelled bool
}

func (f *fakeService) Load(ctx context.Context, a *attendeeModels.Attendee, invitationType string) *models.RSVP {
	f.rsvp.InvitationType = invitationType
	return f.rsvp
}

func (f *fakeService) Update(ctx context.Context, r *models.RSVP) error {
	f.updated = true
	return f.updateErr
}

func (f *fakeService) Cancel(ctx context.Context, r *models.RSVP, reason string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = true
	r.CancelDate = time.Now()
	return nil
}

func (f *fakeService) MealDetails(ctx context.Context, userID int) ([]models.MealDetail, error) {
	return nil, nil
}

func (f *fakeService) TransportationDetails(ctx context.Context, userID int) ([]models.TransportationDetail, error) {
	return nil, nil
}

type fakeAttendees struct {
	attendee *attendeeModels.Attendee
}

func (f *fakeAttendees) Lookup(ctx context.Context, email string) (*attendeeModels.Attendee, error) {
	if f.attendee == nil || !strings.EqualFold(f.attendee.Email, email) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no such attendee")
	}
	return f.attendee, nil
}

type fakeCalendar struct{ ics string }

func (f *fakeCalendar) Calendar(r *models.RSVP) ([]byte, error) {
	return []byte(f.ics), nil
}

func testRSVP() *models.RSVP {
	a := &attendeeModels.Attendee{
		ID:        42,
		Email:     "pat.jones@example.com",
		FirstName: "Pat",
		LastName:  "Jones",
		Kind:      attendeeModels.KindEmployee,
		Employee:  &attendeeModels.EmployeeProfile{Login: "pjones"},
	}
	created := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	r := models.New(a, "conference", created)
	r.RegistrationDate = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	r.ConfirmationCode = "1A2B3C4D"
	r.Valid = true
	return r
}

func newTestRouter(svc *fakeService, attendees *fakeAttendees) chi.Router {
	h := New(svc, attendees, &fakeCalendar{ics: "BEGIN:VCALENDAR"}, slog.Default())
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestGetRSVP(t *testing.T) {
	rsvp := testRSVP()
	router := newTestRouter(&fakeService{rsvp: rsvp}, &fakeAttendees{attendee: rsvp.Attendee})

	req := httptest.NewRequest(http.MethodGet, "/rsvps/pat.jones@example.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp rsvpResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pat.jones@example.com", resp.Email)
	assert.Equal(t, "1A2B3C4D", resp.ConfirmationCode)
	assert.Equal(t, "conference", resp.InvitationType)
	assert.True(t, resp.Current)
	assert.False(t, resp.New)
}

func TestGetRSVPInvalidEmail(t *testing.T) {
	router := newTestRouter(&fakeService{rsvp: testRSVP()}, &fakeAttendees{})

	req := httptest.NewRequest(http.MethodGet, "/rsvps/not-an-email", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRSVPUnknownAttendee(t *testing.T) {
	router := newTestRouter(&fakeService{rsvp: testRSVP()}, &fakeAttendees{})

	req := httptest.NewRequest(http.MethodGet, "/rsvps/ghost@example.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutRSVPAppliesChanges(t *testing.T) {
	rsvp := testRSVP()
	svc := &fakeService{rsvp: rsvp}
	router := newTestRouter(svc, &fakeAttendees{attendee: rsvp.Attendee})

	body := `{
		"golfing": true,
		"mobilePhone": "555-0101",
		"meals": [{"mealId": 3, "mealOptionId": 9}]
	}`
	req := httptest.NewRequest(http.MethodPut, "/rsvps/pat.jones@example.com", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.updated)
	assert.True(t, rsvp.Golfing)
	assert.Equal(t, "555-0101", rsvp.Attendee.MobilePhone)
	require.Len(t, rsvp.Meals, 1)
	assert.Equal(t, 3, rsvp.Meals[0].MealID)
}

func TestPutRSVPMalformedBody(t *testing.T) {
	rsvp := testRSVP()
	svc := &fakeService{rsvp: rsvp}
	router := newTestRouter(svc, &fakeAttendees{attendee: rsvp.Attendee})

	req := httptest.NewRequest(http.MethodPut, "/rsvps/pat.jones@example.com", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, svc.updated)
}

func TestPutRSVPSaveFailure(t *testing.T) {
	rsvp := testRSVP()
	svc := &fakeService{
		rsvp:      rsvp,
		updateErr: dErrors.New(dErrors.CodeUnavailable, "registration was not fully saved"),
	}
	router := newTestRouter(svc, &fakeAttendees{attendee: rsvp.Attendee})

	req := httptest.NewRequest(http.MethodPut, "/rsvps/pat.jones@example.com", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCancelRSVP(t *testing.T) {
	rsvp := testRSVP()
	svc := &fakeService{rsvp: rsvp}
	router := newTestRouter(svc, &fakeAttendees{attendee: rsvp.Attendee})

	body := `{"reason": "schedule conflict"}`
	req := httptest.NewRequest(http.MethodPost, "/rsvps/pat.jones@example.com/cancel", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.cancelled)

	var resp rsvpResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Current)
}

func TestCancelRSVPConflict(t *testing.T) {
	rsvp := testRSVP()
	svc := &fakeService{
		rsvp:      rsvp,
		cancelErr: dErrors.New(dErrors.CodeConflict, "registration is already cancelled"),
	}
	router := newTestRouter(svc, &fakeAttendees{attendee: rsvp.Attendee})

	req := httptest.NewRequest(http.MethodPost, "/rsvps/pat.jones@example.com/cancel", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCalendarDownload(t *testing.T) {
	rsvp := testRSVP()
	router := newTestRouter(&fakeService{rsvp: rsvp}, &fakeAttendees{attendee: rsvp.Attendee})

	req := httptest.NewRequest(http.MethodGet, "/rsvps/pat.jones@example.com/calendar", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
}

func TestCalendarRequiresActiveRegistration(t *testing.T) {
	rsvp := testRSVP()
	rsvp.CancelDate = time.Date(2026, 4, 15, 8, 0, 0, 0, time.UTC)
	router := newTestRouter(&fakeService{rsvp: rsvp}, &fakeAttendees{attendee: rsvp.Attendee})

	req := httptest.NewRequest(http.MethodGet, "/rsvps/pat.jones@example.com/calendar", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
