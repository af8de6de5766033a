package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moviepass/moviepass/internal/domain"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrSeatsTaken     = errors.New("seats already booked")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrRateLimited    = errors.New("rate limited")
)

// ValidationError carries the user-facing message for a rejected request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// SeatsTakenError reports the requested seats that are already booked for the
// showing, in request order. Seats may be empty when the conflict was caught
// by the storage constraint after the availability check passed.
type SeatsTakenError struct {
	Seats []domain.Seat
}

func (e *SeatsTakenError) Error() string {
	if len(e.Seats) == 0 {
		return "These seats are already booked."
	}
	return fmt.Sprintf("These seats are already booked: %s", strings.Join(domain.SeatStrings(e.Seats), ", "))
}

func (e *SeatsTakenError) Unwrap() error { return ErrSeatsTaken }
