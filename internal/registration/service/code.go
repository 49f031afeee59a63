package service

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"

	attendeeModels "confreg/internal/attendee/models"
	dErrors "confreg/pkg/domain-errors"
)

// codePool is the letter pool for the odd positions of a confirmation
// code. Digits fill the even positions.
const codePool = "A9B8C7D6E5FG4O3P2Q1R0ZSYT0X9U8N7V6J5W4K3H2L1I"

const (
	codeLength      = 8
	maxCodeAttempts = 16
)

// formatCode renders the 8-character digit/letter interleave for a
// seed. The same seed always yields the same code.
func formatCode(seed int64) string {
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		if i%2 == 0 {
			b.WriteByte(byte('0' + rng.Intn(10)))
		} else {
			b.WriteByte(codePool[rng.Intn(len(codePool))])
		}
	}
	return b.String()
}

// codeSeed derives the first-attempt seed from the current timestamp
// and the attendee's payroll number, so two simultaneous registrations
// rarely draw the same candidate.
func (s *Service) codeSeed(a *attendeeModels.Attendee) int64 {
	ticks := strconv.FormatInt(s.clock().UnixNano(), 10)
	if len(ticks) > 8 {
		ticks = ticks[len(ticks)-8:]
	}
	seed, _ := strconv.ParseInt(ticks, 10, 64)

	if a != nil && a.Kind == attendeeModels.KindEmployee && a.Employee != nil {
		seed += int64(digitsOf(a.Employee.EmployeeID))
	}
	return seed
}

// reseed draws a fresh seed from a random UUID's digits.
func reseed() (int64, bool) {
	digits := onlyDigits(uuid.NewString())
	if len(digits) < 4 {
		return 0, false
	}
	seed, err := strconv.ParseInt(digits[:4], 10, 64)
	if err != nil {
		return 0, false
	}
	return seed, true
}

// generateUniqueCode produces a confirmation code no other RSVP holds.
// Collisions reseed and retry up to maxCodeAttempts; exhausting the
// budget is a terminal error rather than an unbounded loop.
func (s *Service) generateUniqueCode(ctx context.Context, a *attendeeModels.Attendee) (string, error) {
	code := formatCode(s.codeSeed(a))

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		unique, err := s.store.IsUniqueConfirmationCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("confirmation code check: %w", err)
		}
		if unique {
			return code, nil
		}
		if s.metrics != nil {
			s.metrics.IncrementCodeCollision()
		}
		seed, ok := reseed()
		if !ok {
			continue
		}
		code = formatCode(seed)
	}
	return "", dErrors.New(dErrors.CodeInternal, "could not allocate a unique confirmation code")
}

func digitsOf(s string) int {
	n, _ := strconv.Atoi(onlyDigits(s))
	return n
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
