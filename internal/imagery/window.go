package imagery

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date form used for window bounds and date queries.
const DateLayout = "2006-01-02"

// windowLag is how far behind "today" every window ends; recent days are not
// yet complete in the backend collections.
const windowLag = 5

// TimeWindow is the half-open interval [Start, End) of calendar days, both at
// midnight UTC.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow derives the window ending windowLag days before today and
// spanning numDays days. today is taken from the caller so the result is
// deterministic.
func NewTimeWindow(today time.Time, numDays int) (TimeWindow, error) {
	if numDays <= 0 {
		return TimeWindow{}, fmt.Errorf("num days must be greater than zero, got %d", numDays)
	}
	end := truncateDay(today).AddDate(0, 0, -windowLag)
	start := end.AddDate(0, 0, -numDays)
	return TimeWindow{Start: start, End: end}, nil
}

// DayWindow is the one-day window starting at day.
func DayWindow(day time.Time) TimeWindow {
	start := truncateDay(day)
	return TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains reports whether t falls in [Start, End).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days is the number of calendar days covered.
func (w TimeWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
