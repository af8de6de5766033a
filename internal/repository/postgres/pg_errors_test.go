package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/moviepass/moviepass/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestTranslateDBErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "no rows", in: pgx.ErrNoRows, want: repository.ErrNotFound},
		{name: "wrapped no rows", in: fmt.Errorf("query: %w", pgx.ErrNoRows), want: repository.ErrNotFound},
		{
			name: "seat unique violation",
			in:   &pgconn.PgError{Code: "23505", ConstraintName: "ticket_seats_pkey"},
			want: repository.ErrSeatsTaken,
		},
		{
			name: "other unique violation",
			in:   &pgconn.PgError{Code: "23505", ConstraintName: "tickets_pkey"},
			want: repository.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateDBErr(tt.in))
		})
	}
}

func TestTranslateDBErrPassesThroughUnknown(t *testing.T) {
	boom := errors.New("connection refused")
	assert.Equal(t, boom, translateDBErr(boom))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("timeout")))
}
