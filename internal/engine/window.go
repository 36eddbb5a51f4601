package engine

import (
	"strings"
	"time"

	"github.com/doorman-ac/doorman/internal/core"
)

// withinWindow checks a time window against the evaluation's now snapshot.
// Date range, time-of-day range and weekday set are ANDed; every bound is
// optional and an absent window is always open. A malformed bound makes the
// whole window fail closed.
func withinWindow(w *core.TimeWindow, now core.Snapshot) bool {
	if w.IsZero() {
		return true
	}
	return withinDateRange(w, now) && withinClockRange(w, now) && onAllowedWeekday(w, now)
}

func withinDateRange(w *core.TimeWindow, now core.Snapshot) bool {
	day, err := time.Parse(core.DateLayout, now.Date)
	if err != nil {
		return false
	}
	if w.StartDate != "" {
		start, err := time.Parse(core.DateLayout, w.StartDate)
		if err != nil || day.Before(start) {
			return false
		}
	}
	if w.EndDate != "" {
		end, err := time.Parse(core.DateLayout, w.EndDate)
		if err != nil || day.After(end) {
			return false
		}
	}
	return true
}

func withinClockRange(w *core.TimeWindow, now core.Snapshot) bool {
	if w.StartTime == "" && w.EndTime == "" {
		return true
	}

	cur, ok := minutesOfDay(now.Time)
	if !ok {
		return false
	}

	start, end := 0, 24*60-1
	if w.StartTime != "" {
		if start, ok = minutesOfDay(w.StartTime); !ok {
			return false
		}
	}
	if w.EndTime != "" {
		if end, ok = minutesOfDay(w.EndTime); !ok {
			return false
		}
	}

	if end < start {
		// window spans midnight, e.g. 22:00-06:00
		return cur >= start || cur <= end
	}
	return cur >= start && cur <= end
}

func onAllowedWeekday(w *core.TimeWindow, now core.Snapshot) bool {
	if len(w.Weekdays) == 0 {
		return true
	}
	day := strings.ToLower(now.Weekday.String())
	for _, allowed := range w.Weekdays {
		if strings.ToLower(allowed) == day {
			return true
		}
	}
	return false
}

func minutesOfDay(clock string) (int, bool) {
	t, err := time.Parse(core.ClockLayout, clock)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
