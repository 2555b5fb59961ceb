package biztime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationConcurrentFirstUse(t *testing.T) {
	const goroutines = 16

	locations := make([]*time.Location, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			locations[i] = Location()
		}(i)
	}
	wg.Wait()

	require.NotNil(t, locations[0])
	for _, loc := range locations[1:] {
		assert.Same(t, locations[0], loc)
	}
}

func TestStartOfDayUTC(t *testing.T) {
	// 2026-09-01 02:00 UTC is still Aug 31 in New York (UTC-4 during DST).
	late := time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)
	start := StartOfDayUTC(late)

	assert.Equal(t, time.Date(2026, 8, 31, 4, 0, 0, 0, time.UTC), start)
	assert.True(t, SameBizDay(late, start))
}

func TestParseDateInBizTimezone(t *testing.T) {
	got, err := ParseDateInBizTimezone("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 4, 0, 0, 0, time.UTC), got)

	_, err = ParseDateInBizTimezone("09/01/2026")
	assert.Error(t, err)
}
