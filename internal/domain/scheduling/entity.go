package scheduling

import (
	"fmt"
	"time"

	"github.com/chairtime/booking-engine/internal/models"
)

// ===============================
// Domain Actions
// ===============================
//
// Each action mutates the appointment in memory only; persisting the change
// under the version guard is the repository's job.

func Confirm(ap *models.Appointment) error {
	if err := canMove(ap, StatusConfirmed); err != nil {
		return err
	}
	ap.Status = string(StatusConfirmed)
	return nil
}

func Cancel(ap *models.Appointment, now time.Time, reason string) error {
	if err := canMove(ap, StatusCancelled); err != nil {
		return err
	}
	ap.Status = string(StatusCancelled)
	ap.CancelReason = reason
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if Status(ap.Status) != StatusConfirmed {
		return fmt.Errorf("%w: only confirmed appointments can be completed", ErrInvalidTransition)
	}
	if now.Before(ap.EndTime()) {
		return fmt.Errorf("%w: appointment has not finished yet", ErrInvalidTransition)
	}
	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment, now time.Time) error {
	if Status(ap.Status) != StatusConfirmed {
		return fmt.Errorf("%w: only confirmed appointments can be marked no-show", ErrInvalidTransition)
	}
	if now.Before(ap.EndTime()) {
		return fmt.Errorf("%w: appointment has not finished yet", ErrInvalidTransition)
	}
	ap.Status = string(StatusNoShow)
	ap.NoShowAt = &now
	return nil
}

func canMove(ap *models.Appointment, to Status) error {
	from := Status(ap.Status)
	if from == to {
		return fmt.Errorf("%w: already %s", ErrInvalidTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
