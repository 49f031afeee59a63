package models

import dErrors "confreg/pkg/domain-errors"

var (
	errProfileMismatch = dErrors.New(dErrors.CodeInvariantViolation, "attendee profile does not match kind")
	errUnknownKind     = dErrors.New(dErrors.CodeInvariantViolation, "unknown attendee kind")
	errMissingEmail    = dErrors.New(dErrors.CodeBadRequest, "attendee email is required")
)
