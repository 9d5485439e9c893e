package collector

import (
	"fmt"
	"time"
)

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow parses a YYYY-MM-DD date into the UTC calendar-day window it
// names. Malformed dates are rejected before any I/O happens.
func DayWindow(date string) (Window, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Window{}, fmt.Errorf("invalid date format %q, expected YYYY-MM-DD", date)
	}
	start := day.UTC()
	return Window{Start: start, End: start.AddDate(0, 0, 1)}, nil
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// TimeFilters are the relative windows accepted by the live API's top
// listing.
var TimeFilters = []string{"hour", "day", "week", "month", "year", "all"}

func ValidTimeFilter(tf string) bool {
	for _, v := range TimeFilters {
		if v == tf {
			return true
		}
	}
	return false
}
