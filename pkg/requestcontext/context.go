// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets the values; services read them
// without importing net/http.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey     struct{}
	requestTimeKey   struct{}
	attendeeEmailKey struct{}
)

// RequestID retrieves the request ID from the context, or "" if unset.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// AttendeeEmail retrieves the acting attendee's email from the context.
func AttendeeEmail(ctx context.Context) string {
	if email, ok := ctx.Value(attendeeEmailKey{}).(string); ok {
		return email
	}
	return ""
}

// WithAttendeeEmail injects the acting attendee's email into the context.
func WithAttendeeEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, attendeeEmailKey{}, email)
}

// Now retrieves the request-scoped time from the context, falling back to
// time.Now for non-HTTP callers (batch jobs, CLI, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time into a context. Batch jobs use it for a
// consistent timestamp across one run; unit tests use it for determinism.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
