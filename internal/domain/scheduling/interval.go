package scheduling

import (
	"time"

	"github.com/chairtime/booking-engine/internal/models"
)

// Interval is a half-open [Start, End) range of UTC instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, duration time.Duration) Interval {
	return Interval{Start: start, End: start.Add(duration)}
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// Overlaps is end-exclusive: intervals that only touch at a boundary
// do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// CoreInterval is the service interval of an appointment, buffers excluded.
func CoreInterval(ap *models.Appointment) Interval {
	return NewInterval(ap.StartTime, time.Duration(ap.DurationMin)*time.Minute)
}

// BlockedInterval is the range an appointment actually blocks on the
// provider's calendar: the core interval padded with both buffers.
func BlockedInterval(ap *models.Appointment) Interval {
	return PaddedInterval(ap.StartTime, ap.DurationMin, ap.BufferBeforeMin, ap.BufferAfterMin)
}

func PaddedInterval(start time.Time, durationMin, bufferBeforeMin, bufferAfterMin int) Interval {
	return Interval{
		Start: start.Add(-time.Duration(bufferBeforeMin) * time.Minute),
		End:   start.Add(time.Duration(durationMin+bufferAfterMin) * time.Minute),
	}
}

// HasConflict reports whether the candidate interval overlaps the blocked
// interval of any active appointment. excludeID omits an appointment's own
// row so a reschedule does not collide with itself.
func HasConflict(candidate Interval, existing []models.Appointment, excludeID uint) bool {
	for i := range existing {
		ap := &existing[i]
		if excludeID != 0 && ap.ID == excludeID {
			continue
		}
		if !Status(ap.Status).Active() {
			continue
		}
		if candidate.Overlaps(BlockedInterval(ap)) {
			return true
		}
	}
	return false
}

// BusyIntervals maps active appointments to their blocked intervals,
// skipping excludeID.
func BusyIntervals(appointments []models.Appointment, excludeID uint) []Interval {
	out := make([]Interval, 0, len(appointments))
	for i := range appointments {
		ap := &appointments[i]
		if excludeID != 0 && ap.ID == excludeID {
			continue
		}
		if !Status(ap.Status).Active() {
			continue
		}
		out = append(out, BlockedInterval(ap))
	}
	return out
}
