// Package shared holds the JSON response helpers every handler uses.
package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "confreg/pkg/domain-errors"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteError maps a domain error to its HTTP status and writes a JSON
// body. Non-domain errors come out as a generic 500 so internals never
// leak to clients. Server-side failures are logged here so handlers do
// not have to.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.HTTPStatus(code)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "code", code, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: dErrors.MessageOf(err),
		Code:  string(code),
	})
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
