package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moviepass/moviepass/internal/domain"
)

// TicketStore is the persistence contract for tickets. The postgres
// implementation guarantees that the availability check and the booking write
// commit atomically.
type TicketStore interface {
	Create(ctx context.Context, t *domain.Ticket) error
	ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	Confirm(ctx context.Context, id uuid.UUID, at time.Time) error
	TakenSeats(ctx context.Context, showingID string) ([]domain.Seat, error)
}

// SeatCache is an optional read-through cache for per-showing seat maps.
type SeatCache interface {
	GetShowingSeats(ctx context.Context, showingID string) ([]string, bool, error)
	SetShowingSeats(ctx context.Context, showingID string, seats []string, ttl time.Duration) error
	InvalidateShowing(ctx context.Context, showingID string) error
}

// ShowingEvents broadcasts seat-map changes after a successful booking.
type ShowingEvents interface {
	PublishShowingChanged(ctx context.Context, showingID string) error
}

type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, current int64, retryAfter time.Duration, err error)
}
