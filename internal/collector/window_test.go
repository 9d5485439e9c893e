package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindow(t *testing.T) {
	w, err := DayWindow("2024-03-15")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), w.End)
}

func TestDayWindowRejectsMalformedDates(t *testing.T) {
	for _, date := range []string{"15-03-2024", "2024/03/15", "March 15", "2024-13-01", ""} {
		_, err := DayWindow(date)
		assert.Error(t, err, "date %q should be rejected", date)
	}
}

func TestWindowContainsIsHalfOpen(t *testing.T) {
	w, err := DayWindow("2024-03-15")
	require.NoError(t, err)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End.Add(-time.Second)))
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
}

func TestValidTimeFilter(t *testing.T) {
	for _, tf := range TimeFilters {
		assert.True(t, ValidTimeFilter(tf))
	}
	assert.False(t, ValidTimeFilter("decade"))
	assert.False(t, ValidTimeFilter("Week"))
	assert.False(t, ValidTimeFilter(""))
}
