package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCadence(t *testing.T) {
	c, err := NewCadence("monthly")
	assert.NoError(t, err)
	assert.Equal(t, CadenceMonthly, c)

	_, err = NewCadence("weekly")
	assert.Error(t, err)
}

func TestCadenceAdvance(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 4, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"mid-month stays on its day", day(2026, time.July, 15), day(2026, time.August, 15)},
		{"year rollover", day(2026, time.December, 15), day(2027, time.January, 15)},
		{"Jan 31 clamps to Feb 28", day(2026, time.January, 31), day(2026, time.February, 28)},
		{"Jan 30 clamps to Feb 28", day(2026, time.January, 30), day(2026, time.February, 28)},
		{"Jan 29 clamps to Feb 28", day(2026, time.January, 29), day(2026, time.February, 28)},
		{"Jan 31 reaches Feb 29 in a leap year", day(2024, time.January, 31), day(2024, time.February, 29)},
		{"Mar 31 clamps to Apr 30", day(2026, time.March, 31), day(2026, time.April, 30)},
		{"Feb 28 lands on Mar 28", day(2026, time.February, 28), day(2026, time.March, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CadenceMonthly.Advance(tt.from)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}

	t.Run("time of day is preserved", func(t *testing.T) {
		from := time.Date(2026, time.January, 31, 9, 30, 15, 0, time.UTC)
		got := CadenceMonthly.Advance(from)
		assert.Equal(t, 9, got.Hour())
		assert.Equal(t, 30, got.Minute())
		assert.Equal(t, 15, got.Second())
	})

	t.Run("unknown cadence has no silent fallback", func(t *testing.T) {
		assert.Panics(t, func() {
			Cadence("weekly").Advance(day(2026, time.January, 15))
		})
	})
}
