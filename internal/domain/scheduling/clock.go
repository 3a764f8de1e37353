package scheduling

import "time"

// Clock is the injectable "now" source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func SystemClock() Clock {
	return systemClock{}
}
