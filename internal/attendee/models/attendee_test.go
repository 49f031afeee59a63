package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "confreg/pkg/domain-errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		attendee Attendee
		wantCode dErrors.Code
	}{
		{
			name: "valid employee",
			attendee: Attendee{
				Email:    "avery.quinn@example.com",
				Kind:     KindEmployee,
				Employee: &EmployeeProfile{Login: "aquinn"},
			},
		},
		{
			name: "valid vendor staff",
			attendee: Attendee{
				Email:       "pat@vendor.example.com",
				Kind:        KindVendorStaff,
				VendorStaff: &VendorStaffProfile{VendorID: 3},
			},
		},
		{
			name:     "employee without profile",
			attendee: Attendee{Email: "a@example.com", Kind: KindEmployee},
			wantCode: dErrors.CodeInvariantViolation,
		},
		{
			name: "both profiles set",
			attendee: Attendee{
				Email:       "a@example.com",
				Kind:        KindEmployee,
				Employee:    &EmployeeProfile{},
				VendorStaff: &VendorStaffProfile{},
			},
			wantCode: dErrors.CodeInvariantViolation,
		},
		{
			name:     "unknown kind",
			attendee: Attendee{Email: "a@example.com"},
			wantCode: dErrors.CodeInvariantViolation,
		},
		{
			name:     "missing email",
			attendee: Attendee{Kind: KindEmployee, Employee: &EmployeeProfile{}},
			wantCode: dErrors.CodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attendee.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, tt.wantCode))
		})
	}
}

func TestIsNew(t *testing.T) {
	a := Attendee{}
	assert.True(t, a.IsNew())
	a.ID = 17
	assert.False(t, a.IsNew())
}
