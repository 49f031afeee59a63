package directory

import (
	"context"
	"fmt"
	"strings"

	"confreg/pkg/platform/sentinel"
)

// FakeClient serves directory lookups from memory. Useful in tests and
// local development without a directory service.
type FakeClient struct {
	employees []Employee
}

// NewFakeClient seeds a fake directory.
func NewFakeClient(employees ...Employee) *FakeClient {
	return &FakeClient{employees: employees}
}

func (f *FakeClient) ByEmail(_ context.Context, email string) (Employee, error) {
	for _, e := range f.employees {
		if strings.EqualFold(e.Email, email) {
			return e, nil
		}
	}
	return Employee{}, fmt.Errorf("directory email=%s: %w", email, sentinel.ErrNotFound)
}

func (f *FakeClient) ByLogin(_ context.Context, login string) (Employee, error) {
	for _, e := range f.employees {
		if strings.EqualFold(e.Login, login) {
			return e, nil
		}
	}
	return Employee{}, fmt.Errorf("directory login=%s: %w", login, sentinel.ErrNotFound)
}
