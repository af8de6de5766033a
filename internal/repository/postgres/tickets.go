package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/moviepass/moviepass/internal/domain"
	"github.com/moviepass/moviepass/internal/repository"
)

type TicketRepo struct {
	store *Store
	db    DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.store.pool
}

// Create persists a new ticket after checking seat availability for the
// showing. The check and the write run in a single serializable transaction,
// and ticket_seats carries a (showing_id, seat) primary key, so a racing
// claim for the same seat fails inside the storage engine rather than
// producing a double booking. A serialization failure is retried once.
//
// Returns:
//   - *repository.TakenSeatsError listing the conflicting seats in request order.
//   - repository.ErrSeatsTaken when the conflict is detected by the constraint.
func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	const op = "postgres.TicketRepo.Create"

	if r.db != nil {
		if err := r.createCore(ctx, r.db, t); err != nil {
			return fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		return nil
	}

	run := func(ctx context.Context, tx DB) error {
		return r.createCore(ctx, tx, t)
	}

	err := r.store.RunTx(ctx, nil, run)
	if err != nil && IsRetryable(err) {
		err = r.store.RunTx(ctx, nil, run)
	}
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *TicketRepo) createCore(ctx context.Context, db DB, t *domain.Ticket) error {
	rows, err := db.Query(ctx,
		`SELECT seat FROM ticket_seats WHERE showing_id = $1`,
		t.ShowingID,
	)
	if err != nil {
		return err
	}

	defer rows.Close()

	taken := make(map[string]struct{})
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return err
		}
		taken[seat] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if conflicts := conflictingSeats(taken, t.Seats); len(conflicts) > 0 {
		return &repository.TakenSeatsError{Seats: conflicts}
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO tickets(id, showing_id, owner_email, seats, total_price, status, booking_time)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.ShowingID, t.OwnerEmail, domain.SeatStrings(t.Seats),
		t.TotalPrice, t.Status, t.BookingTime,
	); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, s := range t.Seats {
		batch.Queue(
			`INSERT INTO ticket_seats(showing_id, seat, ticket_id)
         	 VALUES ($1, $2, $3)`,
			t.ShowingID, string(s), t.ID,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return nil
}

// conflictingSeats returns the requested seats already present in taken,
// preserving request order.
func conflictingSeats(taken map[string]struct{}, requested []domain.Seat) []domain.Seat {
	var conflicts []domain.Seat
	for _, s := range requested {
		if _, ok := taken[string(s)]; ok {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts
}

// ListByOwner returns all tickets booked by the given identity. Order is
// store-defined; callers must not assume recency.
func (r *TicketRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.ListByOwner"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, showing_id, owner_email, seats, total_price, status, booking_time, confirmation_time
       	 FROM tickets WHERE owner_email = $1`,
		ownerEmail,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return tickets, nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.GetByID"

	db := r.handle()

	row := db.QueryRow(ctx,
		`SELECT id, showing_id, owner_email, seats, total_price, status, booking_time, confirmation_time
       	 FROM tickets WHERE id = $1`,
		id,
	)

	t, err := scanTicket(row)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// Confirm flips a ticket to paid and stamps the confirmation time. The update
// is unconditional on the previous status, so confirming twice is harmless.
func (r *TicketRepo) Confirm(ctx context.Context, id uuid.UUID, at time.Time) error {
	const op = "postgres.TicketRepo.Confirm"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE tickets SET status = $2, confirmation_time = $3 WHERE id = $1`,
		id, domain.TicketPaid, at,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// TakenSeats returns every seat already claimed for a showing, across all
// ticket statuses.
func (r *TicketRepo) TakenSeats(ctx context.Context, showingID string) ([]domain.Seat, error) {
	const op = "postgres.TicketRepo.TakenSeats"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT seat FROM ticket_seats WHERE showing_id = $1 ORDER BY seat`,
		showingID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var seats []domain.Seat
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, wrapDBErr(op, err)
		}
		seats = append(seats, domain.Seat(seat))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return seats, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t     domain.Ticket
		seats []string
	)

	if err := row.Scan(
		&t.ID, &t.ShowingID, &t.OwnerEmail, &seats,
		&t.TotalPrice, &t.Status, &t.BookingTime, &t.ConfirmationTime,
	); err != nil {
		return nil, err
	}

	t.Seats = domain.SeatsFromStrings(seats)

	return &t, nil
}
