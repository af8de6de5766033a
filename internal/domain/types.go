package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketBooked TicketStatus = "booked"
	TicketPaid   TicketStatus = "paid"
)

// Seat identifies a single seat within a showing. Mobile clients send seat
// numbers as JSON numbers, web clients send labels like "A12"; both decode
// into the same string form.
type Seat string

func (s *Seat) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Seat(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("seat must be a string or a number: %w", err)
	}
	*s = Seat(n.String())

	return nil
}

func SeatFromInt(n int) Seat {
	return Seat(strconv.Itoa(n))
}

// SeatStrings converts seats to plain strings for storage drivers.
func SeatStrings(seats []Seat) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = string(s)
	}
	return out
}

func SeatsFromStrings(raw []string) []Seat {
	out := make([]Seat, len(raw))
	for i, s := range raw {
		out[i] = Seat(s)
	}
	return out
}

// Ticket is a persisted booking of seats for a showing. ShowingID is opaque
// to this service; it is never validated against the movie catalog.
type Ticket struct {
	ID               uuid.UUID    `json:"ticketId"`
	ShowingID        string       `json:"movieId"`
	OwnerEmail       string       `json:"userEmail"`
	Seats            []Seat       `json:"seats"`
	TotalPrice       float64      `json:"totalPrice"`
	Status           TicketStatus `json:"status"`
	BookingTime      time.Time    `json:"bookingTime"`
	ConfirmationTime *time.Time   `json:"confirmationTime,omitempty"`
}
