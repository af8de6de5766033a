package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Seat
		wantErr bool
	}{
		{name: "numbers", input: `[3, 4]`, want: []Seat{"3", "4"}},
		{name: "strings", input: `["A12", "A13"]`, want: []Seat{"A12", "A13"}},
		{name: "mixed", input: `[1, "B2"]`, want: []Seat{"1", "B2"}},
		{name: "large number stays exact", input: `[1234567890123]`, want: []Seat{"1234567890123"}},
		{name: "object rejected", input: `[{"row": 1}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Seat
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeatStringsRoundTrip(t *testing.T) {
	seats := []Seat{"3", "A12"}
	assert.Equal(t, seats, SeatsFromStrings(SeatStrings(seats)))
	assert.Equal(t, Seat("7"), SeatFromInt(7))
}
