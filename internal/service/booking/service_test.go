package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moviepass/moviepass/internal/domain"
	"github.com/moviepass/moviepass/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTicketStore struct {
	mock.Mock
}

func (m *mockTicketStore) Create(ctx context.Context, t *domain.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTicketStore) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Ticket, error) {
	args := m.Called(ctx, ownerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockTicketStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *mockTicketStore) Confirm(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockTicketStore) TakenSeats(ctx context.Context, showingID string) ([]domain.Seat, error) {
	args := m.Called(ctx, showingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

type mockSeatCache struct {
	mock.Mock
}

func (m *mockSeatCache) GetShowingSeats(ctx context.Context, showingID string) ([]string, bool, error) {
	args := m.Called(ctx, showingID)
	var seats []string
	if args.Get(0) != nil {
		seats = args.Get(0).([]string)
	}
	return seats, args.Bool(1), args.Error(2)
}

func (m *mockSeatCache) SetShowingSeats(ctx context.Context, showingID string, seats []string, ttl time.Duration) error {
	args := m.Called(ctx, showingID, seats, ttl)
	return args.Error(0)
}

func (m *mockSeatCache) InvalidateShowing(ctx context.Context, showingID string) error {
	args := m.Called(ctx, showingID)
	return args.Error(0)
}

type mockShowingEvents struct {
	mock.Mock
}

func (m *mockShowingEvents) PublishShowingChanged(ctx context.Context, showingID string) error {
	args := m.Called(ctx, showingID)
	return args.Error(0)
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Get(2).(time.Duration), args.Error(3)
}

func validInput() CreateTicketInput {
	return CreateTicketInput{
		ShowingID:  "603692",
		Seats:      []domain.Seat{"3", "4"},
		TotalPrice: 24.50,
		OwnerEmail: "viewer@example.com",
	}
}

func TestCreateTicket_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateTicketInput)
	}{
		{"missing showing", func(in *CreateTicketInput) { in.ShowingID = "" }},
		{"no seats", func(in *CreateTicketInput) { in.Seats = nil }},
		{"zero price", func(in *CreateTicketInput) { in.TotalPrice = 0 }},
		{"negative price", func(in *CreateTicketInput) { in.TotalPrice = -1 }},
		{"missing identity", func(in *CreateTicketInput) { in.OwnerEmail = "" }},
		{"empty seat id", func(in *CreateTicketInput) { in.Seats = []domain.Seat{"3", ""} }},
		{"duplicate seat", func(in *CreateTicketInput) { in.Seats = []domain.Seat{"3", "3"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockTicketStore)
			svc := New(store, nil, nil, nil, Config{})

			in := validInput()
			tt.mutate(&in)

			_, err := svc.CreateTicket(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateTicket_Success(t *testing.T) {
	store := new(mockTicketStore)
	cache := new(mockSeatCache)
	events := new(mockShowingEvents)

	var persisted *domain.Ticket
	store.On("Create", mock.Anything, mock.AnythingOfType("*domain.Ticket")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*domain.Ticket)
		}).
		Return(nil)
	cache.On("InvalidateShowing", mock.Anything, "603692").Return(nil)
	events.On("PublishShowingChanged", mock.Anything, "603692").Return(nil)

	svc := New(store, cache, events, nil, Config{})

	id, err := svc.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.NotNil(t, persisted)
	assert.Equal(t, id, persisted.ID)
	assert.Equal(t, domain.TicketBooked, persisted.Status)
	assert.Equal(t, "viewer@example.com", persisted.OwnerEmail)
	assert.Equal(t, []domain.Seat{"3", "4"}, persisted.Seats)
	assert.Nil(t, persisted.ConfirmationTime)
	assert.WithinDuration(t, time.Now().UTC(), persisted.BookingTime, time.Minute)

	cache.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCreateTicket_SeatsTaken(t *testing.T) {
	store := new(mockTicketStore)
	store.On("Create", mock.Anything, mock.Anything).
		Return(&repository.TakenSeatsError{Seats: []domain.Seat{"4"}})

	cache := new(mockSeatCache)
	events := new(mockShowingEvents)
	svc := New(store, cache, events, nil, Config{})

	in := validInput()
	in.Seats = []domain.Seat{"4", "5"}

	_, err := svc.CreateTicket(context.Background(), in)

	var taken *SeatsTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, []domain.Seat{"4"}, taken.Seats)
	assert.Equal(t, "These seats are already booked: 4", taken.Error())

	// no cache invalidation or events on a failed booking
	cache.AssertNotCalled(t, "InvalidateShowing", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "PublishShowingChanged", mock.Anything, mock.Anything)
}

func TestCreateTicket_SeatsTakenWithoutDetail(t *testing.T) {
	store := new(mockTicketStore)
	store.On("Create", mock.Anything, mock.Anything).Return(repository.ErrSeatsTaken)

	svc := New(store, nil, nil, nil, Config{})

	_, err := svc.CreateTicket(context.Background(), validInput())

	var taken *SeatsTakenError
	require.ErrorAs(t, err, &taken)
	assert.Empty(t, taken.Seats)
	assert.Equal(t, "These seats are already booked.", taken.Error())
}

func TestCreateTicket_SeatsTakenMessageOrder(t *testing.T) {
	store := new(mockTicketStore)
	store.On("Create", mock.Anything, mock.Anything).
		Return(&repository.TakenSeatsError{Seats: []domain.Seat{"3", "4"}})

	svc := New(store, nil, nil, nil, Config{})

	_, err := svc.CreateTicket(context.Background(), validInput())

	var taken *SeatsTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, "These seats are already booked: 3, 4", taken.Error())
}

func TestCreateTicket_RateLimited(t *testing.T) {
	store := new(mockTicketStore)
	limiter := new(mockLimiter)
	limiter.On("Allow", mock.Anything, "user:viewer@example.com").
		Return(false, int64(11), 30*time.Second, nil)

	svc := New(store, nil, nil, limiter, Config{})

	in := validInput()
	in.RateKey = "user:viewer@example.com"

	_, err := svc.CreateTicket(context.Background(), in)
	assert.ErrorIs(t, err, ErrRateLimited)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMyTickets(t *testing.T) {
	want := []domain.Ticket{
		{ID: uuid.New(), OwnerEmail: "viewer@example.com", Status: domain.TicketBooked},
		{ID: uuid.New(), OwnerEmail: "viewer@example.com", Status: domain.TicketPaid},
	}

	store := new(mockTicketStore)
	store.On("ListByOwner", mock.Anything, "viewer@example.com").Return(want, nil)

	svc := New(store, nil, nil, nil, Config{})

	got, err := svc.MyTickets(context.Background(), "viewer@example.com")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.MyTickets(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetTicket_OwnershipHidesForeignTickets(t *testing.T) {
	id := uuid.New()
	store := new(mockTicketStore)
	store.On("GetByID", mock.Anything, id).
		Return(&domain.Ticket{ID: id, OwnerEmail: "someone-else@example.com"}, nil)

	svc := New(store, nil, nil, nil, Config{})

	_, err := svc.GetTicket(context.Background(), id, "viewer@example.com")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestGetTicket(t *testing.T) {
	id := uuid.New()
	want := &domain.Ticket{ID: id, OwnerEmail: "viewer@example.com", Seats: []domain.Seat{"3"}}

	store := new(mockTicketStore)
	store.On("GetByID", mock.Anything, id).Return(want, nil)

	svc := New(store, nil, nil, nil, Config{})

	got, err := svc.GetTicket(context.Background(), id, "viewer@example.com")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetTicket_NotFound(t *testing.T) {
	id := uuid.New()
	store := new(mockTicketStore)
	store.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

	svc := New(store, nil, nil, nil, Config{})

	_, err := svc.GetTicket(context.Background(), id, "viewer@example.com")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestConfirmTicket(t *testing.T) {
	id := uuid.New()
	store := new(mockTicketStore)
	store.On("Confirm", mock.Anything, id, mock.AnythingOfType("time.Time")).Return(nil).Once()
	store.On("Confirm", mock.Anything, id, mock.AnythingOfType("time.Time")).Return(nil).Once()

	svc := New(store, nil, nil, nil, Config{})

	require.NoError(t, svc.ConfirmTicket(context.Background(), id))
	// confirming again succeeds, the update is idempotent
	require.NoError(t, svc.ConfirmTicket(context.Background(), id))
}

func TestConfirmTicket_NotFound(t *testing.T) {
	id := uuid.New()
	store := new(mockTicketStore)
	store.On("Confirm", mock.Anything, id, mock.AnythingOfType("time.Time")).Return(repository.ErrNotFound)

	svc := New(store, nil, nil, nil, Config{})

	assert.ErrorIs(t, svc.ConfirmTicket(context.Background(), id), ErrTicketNotFound)
}

func TestAvailability_CacheHit(t *testing.T) {
	store := new(mockTicketStore)
	cache := new(mockSeatCache)
	cache.On("GetShowingSeats", mock.Anything, "603692").Return([]string{"3", "4"}, true, nil)

	svc := New(store, cache, nil, nil, Config{})

	seats, err := svc.Availability(context.Background(), "603692")
	require.NoError(t, err)
	assert.Equal(t, []domain.Seat{"3", "4"}, seats)
	store.AssertNotCalled(t, "TakenSeats", mock.Anything, mock.Anything)
}

func TestAvailability_CacheMissFillsCache(t *testing.T) {
	store := new(mockTicketStore)
	store.On("TakenSeats", mock.Anything, "603692").Return([]domain.Seat{"7"}, nil)

	cache := new(mockSeatCache)
	cache.On("GetShowingSeats", mock.Anything, "603692").Return(nil, false, nil)
	cache.On("SetShowingSeats", mock.Anything, "603692", []string{"7"}, mock.AnythingOfType("time.Duration")).Return(nil)

	svc := New(store, cache, nil, nil, Config{})

	seats, err := svc.Availability(context.Background(), "603692")
	require.NoError(t, err)
	assert.Equal(t, []domain.Seat{"7"}, seats)
	cache.AssertExpectations(t)
}

func TestCreateTicket_StorageErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	store := new(mockTicketStore)
	store.On("Create", mock.Anything, mock.Anything).Return(boom)

	svc := New(store, nil, nil, nil, Config{})

	_, err := svc.CreateTicket(context.Background(), validInput())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrSeatsTaken)
	assert.NotErrorIs(t, err, ErrValidation)
}
