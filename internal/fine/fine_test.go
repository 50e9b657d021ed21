package fine_test

import (
	"testing"
	"time"

	"github.com/N-Srikar/Athena/internal/fine"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	t.Parallel()
	due := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		returned time.Time
		want     int64
	}{
		{"early", due.Add(-48 * time.Hour), 0},
		{"exactly at due", due, 0},
		{"within grace", due.AddDate(0, 0, 5), 0},
		{"first chargeable day", due.AddDate(0, 0, 6), 5},
		{"end of first tier", due.AddDate(0, 0, 15), 50},
		{"start of second tier", due.AddDate(0, 0, 16), 60},
		{"twenty days late", due.AddDate(0, 0, 20), 100},
		{"end of second tier", due.AddDate(0, 0, 30), 200},
		{"into top tier", due.AddDate(0, 0, 31), 215},
		{"deep into top tier", due.AddDate(0, 0, 45), 425},
		{"partial day rounds up", due.Add(1 * time.Hour), 0},
		{"partial sixth day rounds up", due.AddDate(0, 0, 5).Add(1 * time.Hour), 5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, fine.Calculate(due, tt.returned))
		})
	}
}

func TestCalculateDeterministic(t *testing.T) {
	t.Parallel()
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d <= 60; d++ {
		returned := due.AddDate(0, 0, d)
		first := fine.Calculate(due, returned)
		require.GreaterOrEqual(t, first, int64(0))
		require.Equal(t, first, fine.Calculate(due, returned))
	}
}
