package scheduling

import (
	"time"

	"github.com/chairtime/booking-engine/internal/models"
)

// DayWindow is a provider's resolved working window for one calendar day,
// expressed as instants.
type DayWindow struct {
	Open   time.Time
	Close  time.Time
	Breaks []Interval
}

// parseHM anchors a "15:04" wall-clock string on the given day.
func parseHM(day time.Time, hm string, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	), true
}

// ResolveDayWindow applies the exception-first rule: a date exception
// overrides the weekly row entirely; without either the day is closed.
// day must be midnight in the provider's timezone.
func ResolveDayWindow(
	day time.Time,
	loc *time.Location,
	weekly *models.ProviderAvailability,
	exception *models.AvailabilityException,
) (DayWindow, bool) {

	if exception != nil {
		if exception.Closed {
			return DayWindow{}, false
		}
		open, ok1 := parseHM(day, exception.StartTime, loc)
		close, ok2 := parseHM(day, exception.EndTime, loc)
		if !ok1 || !ok2 || !close.After(open) {
			return DayWindow{}, false
		}
		return DayWindow{Open: open, Close: close}, true
	}

	if weekly == nil || !weekly.Active || weekly.StartTime == "" || weekly.EndTime == "" {
		return DayWindow{}, false
	}

	open, ok1 := parseHM(day, weekly.StartTime, loc)
	close, ok2 := parseHM(day, weekly.EndTime, loc)
	if !ok1 || !ok2 || !close.After(open) {
		return DayWindow{}, false
	}

	w := DayWindow{Open: open, Close: close}

	if weekly.BreakStart != "" && weekly.BreakEnd != "" {
		bs, ok1 := parseHM(day, weekly.BreakStart, loc)
		be, ok2 := parseHM(day, weekly.BreakEnd, loc)
		if ok1 && ok2 && be.After(bs) {
			w.Breaks = append(w.Breaks, Interval{Start: bs, End: be})
		}
	}

	return w, true
}

// Fits reports whether the core interval lies inside the window without
// touching a break.
func (w DayWindow) Fits(i Interval) bool {
	if i.Start.Before(w.Open) || i.End.After(w.Close) {
		return false
	}
	for _, b := range w.Breaks {
		if i.Overlaps(b) {
			return false
		}
	}
	return true
}
