package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confreg/internal/attendee/models"
	"confreg/internal/gateway"
	"confreg/internal/gateway/gatewaytest"
	"confreg/pkg/platform/sentinel"
)

var fixedClock = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestFindEmployeeMapsColumns(t *testing.T) {
	fake := &gatewaytest.Fake{
		TableFn: func(op string, p gateway.Params) ([]gateway.Row, error) {
			require.Equal(t, "sp_GetEmployeeUser", op)
			assert.Equal(t, "avery.quinn@example.com", p["userEmail"])
			assert.Equal(t, 1, p["conferenceID"])
			return []gateway.Row{{
				"userID":        int64(42),
				"userEmail":     "avery.quinn@example.com",
				"userFirstName": "Avery",
				"userLastName":  "Quinn",
				"userLogin":     "aquinn",
				"userDivision":  "RES",
				"isInvitee":     true,
				"inviteClass":   int64(1),
			}}, nil
		},
	}
	s := New(fake, WithClock(fixedClock))

	a, err := s.FindEmployee(context.Background(), "avery.quinn@example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, 42, a.ID)
	assert.Equal(t, models.KindEmployee, a.Kind)
	require.NotNil(t, a.Employee)
	assert.Equal(t, "aquinn", a.Employee.Login)
	assert.Equal(t, "RES", a.Employee.Division)
	assert.Equal(t, 1, a.Employee.InviteClass)
	assert.True(t, a.Invitee)
	assert.Nil(t, a.VendorStaff)
}

func TestFindEmployeeNotFound(t *testing.T) {
	s := New(&gatewaytest.Fake{}, WithClock(fixedClock))

	_, err := s.FindEmployee(context.Background(), "nobody@example.com", 1)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFindEmployeeDefaultsInviteClass(t *testing.T) {
	fake := &gatewaytest.Fake{
		TableFn: func(op string, p gateway.Params) ([]gateway.Row, error) {
			return []gateway.Row{{"userID": int64(7), "userEmail": "a@example.com", "inviteClass": nil}}, nil
		},
	}
	s := New(fake, WithClock(fixedClock))

	a, err := s.FindEmployee(context.Background(), "a@example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, -1, a.Employee.InviteClass)
}

func TestSaveContactAssignsIDForNewAttendee(t *testing.T) {
	fake := &gatewaytest.Fake{
		ScalarFn: func(op string, p gateway.Params) (any, error) {
			require.Equal(t, "sp_LoadUser", op)
			rows := p["userRow"].([]gateway.Row)
			require.Len(t, rows, 1)
			assert.Equal(t, "pat@example.com", rows[0]["userEmail"])
			assert.Equal(t, fixedClock(), rows[0]["lastUpdated"])
			return int64(99), nil
		},
	}
	s := New(fake, WithClock(fixedClock))

	a := &models.Attendee{Email: "pat@example.com", Kind: models.KindEmployee, Employee: &models.EmployeeProfile{}}
	require.NoError(t, s.SaveContact(context.Background(), a))
	assert.Equal(t, 99, a.ID)
}

func TestSaveContactExistingUsesExec(t *testing.T) {
	fake := &gatewaytest.Fake{}
	s := New(fake, WithClock(fixedClock))

	a := &models.Attendee{ID: 12, Email: "pat@example.com"}
	require.NoError(t, s.SaveContact(context.Background(), a))
	assert.Len(t, fake.CallsTo("sp_LoadUser"), 1)
	assert.Equal(t, "exec", fake.CallsTo("sp_LoadUser")[0].Kind)
}

func TestSaveContactSurfacesNonZeroStatus(t *testing.T) {
	fake := &gatewaytest.Fake{
		ExecFn: func(op string, p gateway.Params) (int, error) { return 3, nil },
	}
	s := New(fake, WithClock(fixedClock))

	err := s.SaveContact(context.Background(), &models.Attendee{ID: 12, Email: "pat@example.com"})
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
}

func TestVendorStaffRowsAreInvitees(t *testing.T) {
	fake := &gatewaytest.Fake{
		TableFn: func(op string, p gateway.Params) ([]gateway.Row, error) {
			require.Equal(t, "sp_GetExternalStaffUser", op)
			return []gateway.Row{{
				"userID":    int64(5),
				"userEmail": "pat@vendor.example.com",
				"vendorID":  int64(3),
				"staffRole": "booth",
			}}, nil
		},
	}
	s := New(fake, WithClock(fixedClock))

	a, err := s.FindVendorStaff(context.Background(), "pat@vendor.example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, models.KindVendorStaff, a.Kind)
	assert.True(t, a.Invitee)
	require.NotNil(t, a.VendorStaff)
	assert.Equal(t, 3, a.VendorStaff.VendorID)
	assert.Equal(t, "booth", a.VendorStaff.StaffRole)
}

func TestPredicates(t *testing.T) {
	fake := &gatewaytest.Fake{
		ScalarFn: func(op string, p gateway.Params) (any, error) {
			return op == "sp_IsConferenceSpeaker", nil
		},
	}
	s := New(fake, WithClock(fixedClock))

	speaker, err := s.IsPresenter(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.True(t, speaker)

	admin, err := s.IsConferenceAdmin(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestAdminFor(t *testing.T) {
	fake := &gatewaytest.Fake{
		TableFn: func(op string, p gateway.Params) ([]gateway.Row, error) {
			return []gateway.Row{
				{"userEmail": "one@example.com"},
				{"userEmail": "two@example.com"},
			}, nil
		},
	}
	s := New(fake, WithClock(fixedClock))

	emails, err := s.AdminFor(context.Background(), "admin@example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"one@example.com", "two@example.com"}, emails)
}
