package scheduling

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not_found")
	ErrProviderNotFound  = errors.New("provider_not_found")
	ErrStaleVersion      = errors.New("stale_version")
	ErrInvalidTransition = errors.New("invalid_transition")

	// ErrConflict is the match target for ConflictError values.
	ErrConflict = errors.New("time_conflict")

	// ErrStorageUnavailable wraps infrastructure faults. It is the only
	// class the engine retries on its own.
	ErrStorageUnavailable = errors.New("storage_unavailable")
)

// ConflictError reports a double-booking attempt. Alternatives carry the
// nearest free slots of the same day so the caller can offer a re-pick
// without another round trip.
type ConflictError struct {
	ProviderID   uint
	Requested    Interval
	Alternatives []TimeSlot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"time_conflict: provider %d already booked between %s and %s",
		e.ProviderID,
		e.Requested.Start.Format("2006-01-02 15:04"),
		e.Requested.End.Format("15:04"),
	)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidIntervalError is a malformed booking interval: the caller's
// fault, never retried.
type InvalidIntervalError struct {
	Reason string
}

func (e *InvalidIntervalError) Error() string {
	return "invalid_interval: " + e.Reason
}

func InvalidInterval(reason string) error {
	return &InvalidIntervalError{Reason: reason}
}

func IsInvalidInterval(err error) bool {
	var ie *InvalidIntervalError
	return errors.As(err, &ie)
}
