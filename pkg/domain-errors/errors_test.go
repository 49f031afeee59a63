package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := New(CodeNotFound, "rsvp not found")

	assert.True(t, HasCode(base, CodeNotFound))
	assert.False(t, HasCode(base, CodeConflict))

	wrapped := fmt.Errorf("loading aggregate: %w", base)
	assert.True(t, HasCode(wrapped, CodeNotFound))

	rewrapped := Wrap(wrapped, CodeInternal, "load failed")
	assert.True(t, HasCode(rewrapped, CodeInternal))
	assert.True(t, HasCode(rewrapped, CodeNotFound), "inner code survives rewrapping")
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "dup")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeInvariantViolation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.code), string(tt.code))
	}
}

func TestMessageOfHidesCauses(t *testing.T) {
	err := Wrap(errors.New("pq: connection refused"), CodeUnavailable, "registration store unavailable")
	assert.Equal(t, "registration store unavailable", MessageOf(err))
	assert.Equal(t, "internal error", MessageOf(errors.New("raw")))
}
