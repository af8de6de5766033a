package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moviepass/moviepass/internal/domain"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrSeatsTaken = errors.New("some seats are already booked")
)

// TakenSeatsError reports exactly which requested seats are already claimed
// for a showing, in request order. It unwraps to ErrSeatsTaken so callers can
// match it with errors.Is.
type TakenSeatsError struct {
	Seats []domain.Seat
}

func (e *TakenSeatsError) Error() string {
	return fmt.Sprintf("seats already booked: %s", strings.Join(domain.SeatStrings(e.Seats), ", "))
}

func (e *TakenSeatsError) Unwrap() error { return ErrSeatsTaken }
