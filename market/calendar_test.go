package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.Local)
}

func TestBusinessDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"same_day", day(2026, 2, 19), day(2026, 2, 19), 0},
		{"next_day", day(2026, 2, 19), day(2026, 2, 20), 1},
		{"over_weekend", day(2026, 2, 19), day(2026, 2, 23), 2}, // Thu -> Mon
		{"full_week", day(2026, 2, 16), day(2026, 2, 23), 5},
		{"weekend_only", day(2026, 2, 20), day(2026, 2, 22), 0}, // Fri -> Sun
		{"reversed", day(2026, 2, 23), day(2026, 2, 19), 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BusinessDays(tt.from, tt.to))
		})
	}
}

func TestIsBusinessDay(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBusinessDay(day(2026, 2, 19)))  // Thursday
	assert.False(t, IsBusinessDay(day(2026, 2, 21))) // Saturday
	assert.False(t, IsBusinessDay(day(2026, 2, 22))) // Sunday
}
