package httpgin

import (
	"github.com/moviepass/moviepass/internal/domain"
)

type BookTicketRequest struct {
	MovieID    string        `json:"movieId" binding:"required"`
	Seats      []domain.Seat `json:"seats" binding:"required,min=1"`
	TotalPrice float64       `json:"totalPrice" binding:"required,gt=0"`
}

type ConfirmBookingRequest struct {
	TicketID string `json:"ticketId" binding:"required"`
}

type BookTicketResponse struct {
	Message  string `json:"message"`
	TicketID string `json:"ticketId"`
	Success  bool   `json:"success"`
}

type TicketsResponse struct {
	Tickets []domain.Ticket `json:"tickets"`
	Success bool            `json:"success"`
}

type TicketResponse struct {
	Ticket  *domain.Ticket `json:"ticket"`
	Success bool           `json:"success"`
}

type ShowingSeatsResponse struct {
	Seats   []domain.Seat `json:"seats"`
	Success bool          `json:"success"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// ErrorResponse is the failure envelope every endpoint shares: a
// human-readable message and success=false.
type ErrorResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
