package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moviepass/moviepass/internal/domain"
	"github.com/moviepass/moviepass/internal/repository"
)

type Config struct {
	SeatCacheTTL time.Duration
}

type Service struct {
	store   TicketStore
	cache   SeatCache
	events  ShowingEvents
	limiter Limiter
	cfg     Config
}

func New(
	store TicketStore,
	cache SeatCache,
	events ShowingEvents,
	limiter Limiter,
	cfg Config,
) *Service {
	if cfg.SeatCacheTTL <= 0 {
		cfg.SeatCacheTTL = 15 * time.Second
	}

	return &Service{
		store:   store,
		cache:   cache,
		events:  events,
		limiter: limiter,
		cfg:     cfg,
	}
}

type CreateTicketInput struct {
	ShowingID  string
	Seats      []domain.Seat
	TotalPrice float64
	OwnerEmail string
	RateKey    string
}

// CreateTicket validates the request, checks seat availability for the
// showing and persists the booking. Availability and write commit as one
// storage transaction, so two overlapping requests cannot both succeed.
//
// Returns:
//   - uuid.UUID: the ID of the created ticket.
//   - error: *ValidationError when required input is missing.
//   - error: *SeatsTakenError listing the conflicting seats in request order.
//   - error: ErrRateLimited when the caller exceeded the booking rate.
func (s *Service) CreateTicket(ctx context.Context, in CreateTicketInput) (uuid.UUID, error) {
	const op = "service.booking.CreateTicket"

	if in.ShowingID == "" || len(in.Seats) == 0 || in.TotalPrice <= 0 {
		return uuid.Nil, &ValidationError{Msg: "Movie ID, seats, and total price are required."}
	}

	if in.OwnerEmail == "" {
		return uuid.Nil, &ValidationError{Msg: "Caller identity is required."}
	}

	seen := make(map[domain.Seat]struct{}, len(in.Seats))
	for _, seat := range in.Seats {
		if seat == "" {
			return uuid.Nil, &ValidationError{Msg: "Seat identifiers must be non-empty."}
		}
		if _, dup := seen[seat]; dup {
			return uuid.Nil, &ValidationError{Msg: fmt.Sprintf("Seat %s is listed more than once.", seat)}
		}
		seen[seat] = struct{}{}
	}

	if s.limiter != nil && in.RateKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, in.RateKey)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return uuid.Nil, fmt.Errorf("%s: retry in %s: %w", op, retry, ErrRateLimited)
		}
	}

	ticket := &domain.Ticket{
		ID:          uuid.New(),
		ShowingID:   in.ShowingID,
		OwnerEmail:  in.OwnerEmail,
		Seats:       in.Seats,
		TotalPrice:  in.TotalPrice,
		Status:      domain.TicketBooked,
		BookingTime: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, ticket); err != nil {
		if taken := asSeatsTaken(err); taken != nil {
			return uuid.Nil, taken
		}

		return uuid.Nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateShowing(ctx, in.ShowingID)
	}
	if s.events != nil {
		_ = s.events.PublishShowingChanged(ctx, in.ShowingID)
	}

	return ticket.ID, nil
}

// MyTickets returns every ticket booked by the caller, in store-defined order.
func (s *Service) MyTickets(ctx context.Context, ownerEmail string) ([]domain.Ticket, error) {
	const op = "service.booking.MyTickets"

	if ownerEmail == "" {
		return nil, &ValidationError{Msg: "Caller identity is required."}
	}

	tickets, err := s.store.ListByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return tickets, nil
}

// GetTicket fetches one ticket. Tickets owned by a different identity are
// reported as not found rather than forbidden, so ids cannot be probed.
func (s *Service) GetTicket(ctx context.Context, id uuid.UUID, callerEmail string) (*domain.Ticket, error) {
	const op = "service.booking.GetTicket"

	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if t.OwnerEmail != callerEmail {
		return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
	}

	return t, nil
}

// ConfirmTicket marks a ticket as paid and stamps the confirmation time.
// Confirming an already-paid ticket succeeds and refreshes the timestamp; the
// payment provider integration behind this flag is out of scope.
func (s *Service) ConfirmTicket(ctx context.Context, id uuid.UUID) error {
	const op = "service.booking.ConfirmTicket"

	if err := s.store.Confirm(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Availability returns every seat already claimed for a showing, so clients
// can render the seat map before booking.
func (s *Service) Availability(ctx context.Context, showingID string) ([]domain.Seat, error) {
	const op = "service.booking.Availability"

	if showingID == "" {
		return nil, &ValidationError{Msg: "Movie ID is required."}
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.GetShowingSeats(ctx, showingID); err == nil && ok {
			return domain.SeatsFromStrings(cached), nil
		}
	}

	seats, err := s.store.TakenSeats(ctx, showingID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.SetShowingSeats(ctx, showingID, domain.SeatStrings(seats), s.cfg.SeatCacheTTL)
	}

	return seats, nil
}

// asSeatsTaken converts repository seat-conflict errors into the service
// error, keeping the conflicting-seat list when the repository produced one.
func asSeatsTaken(err error) *SeatsTakenError {
	var detailed *repository.TakenSeatsError
	if errors.As(err, &detailed) {
		return &SeatsTakenError{Seats: detailed.Seats}
	}

	if errors.Is(err, repository.ErrSeatsTaken) {
		return &SeatsTakenError{}
	}

	return nil
}
