package sentinel

import "errors"

// Sentinel errors for infrastructure facts. The gateway and stores return
// these (optionally wrapped) so services can translate them into domain
// errors with user-facing messages.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row or record does not exist
// - ErrConflict: uniqueness or concurrency conflict
// - ErrInvalidState: entity in wrong state for the requested operation
// - ErrUnavailable: backing service temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
