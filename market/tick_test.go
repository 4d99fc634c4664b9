package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price float64
		want  Price
	}{
		{"under2000", 1_999, 1},
		{"band5", 2_000, 5},
		{"band10", 19_999, 10},
		{"band50", 20_000, 50},
		{"band100", 198_760, 100},
		{"band500", 200_000, 500},
		{"band1000", 500_000, 1_000},
		{"penny", 1, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TickSize(tt.price))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  float64
		want Price
	}{
		{"on_grid", 103_700, 103_700},
		{"round_up", 103_698, 103_700},
		{"round_down", 103_640, 103_600},
		{"surge_target", 98_760 * 1.05, 103_700}, // 103,698 -> 103,700
		{"small_cap", 1_234.4, 1_234},
		{"mid_band", 23_420, 23_400},
		{"large_cap", 612_345, 612_000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []float64{1, 1_999.4, 4_998, 17_777, 43_210, 123_456, 456_789, 1_234_567} {
		once, err := Normalize(raw)
		require.NoError(t, err)
		twice, err := Normalize(float64(once))
		require.NoError(t, err)
		assert.Equal(t, once, twice, "raw=%v", raw)
	}
}

func TestNormalizeInvalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []float64{0, -1, -98_760, math.NaN(), math.Inf(1)} {
		_, err := Normalize(raw)
		assert.ErrorIs(t, err, ErrInvalidPrice, "raw=%v", raw)
	}
}
