package scheduling

import (
	"iter"
	"time"
)

// TimeSlot is a derived candidate booking interval. It is never persisted.
type TimeSlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// SlotOptions drive one day of slot generation. Busy intervals must cover
// the day before and after as well, so buffers spilling over midnight are
// caught.
type SlotOptions struct {
	DurationMin     int
	BufferBeforeMin int
	BufferAfterMin  int
	StepMin         int
	Now             time.Time
}

const DefaultStepMinutes = 15

// GenerateSlots walks candidate start times across the working window at
// StepMin increments. The sequence is lazy and restartable; ranging over it
// twice replays the same slots.
//
// A candidate is emitted when its core interval fits the window; it is
// Available when its padded interval overlaps no busy interval. Candidates
// starting in the past are skipped entirely.
func GenerateSlots(window DayWindow, busy []Interval, opts SlotOptions) iter.Seq[TimeSlot] {
	step := time.Duration(opts.StepMin) * time.Minute
	if step <= 0 {
		step = DefaultStepMinutes * time.Minute
	}
	duration := time.Duration(opts.DurationMin) * time.Minute

	return func(yield func(TimeSlot) bool) {
		if opts.DurationMin <= 0 {
			return
		}
		for cur := window.Open; !cur.Add(duration).After(window.Close); cur = cur.Add(step) {
			core := NewInterval(cur, duration)
			if !window.Fits(core) {
				continue
			}
			if cur.Before(opts.Now) {
				continue
			}

			padded := PaddedInterval(cur, opts.DurationMin, opts.BufferBeforeMin, opts.BufferAfterMin)
			available := true
			for _, b := range busy {
				if padded.Overlaps(b) {
					available = false
					break
				}
			}

			if !yield(TimeSlot{Start: cur, End: core.End, Available: available}) {
				return
			}
		}
	}
}

// CollectSlots drains a slot sequence into a non-nil slice.
func CollectSlots(seq iter.Seq[TimeSlot]) []TimeSlot {
	out := []TimeSlot{}
	for s := range seq {
		out = append(out, s)
	}
	return out
}
