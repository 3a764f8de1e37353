package notify

import (
	"context"
	"log"
	"time"
)

type EventType string

const (
	EventBooked      EventType = "appointment_booked"
	EventConfirmed   EventType = "appointment_confirmed"
	EventRescheduled EventType = "appointment_rescheduled"
	EventCancelled   EventType = "appointment_cancelled"
)

type Event struct {
	Type          EventType
	AppointmentID uint
	ProviderID    uint
	StartTime     time.Time

	// Guest contact when the booking has no account.
	GuestEmail       string
	ConfirmationCode string
}

// Sender delivers one notification. Delivery is fire-and-forget: a failed
// send never rolls back the scheduling transaction that triggered it.
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// LogSender is the default delivery backend when no real channel is wired.
type LogSender struct{}

func (LogSender) Send(_ context.Context, ev Event) error {
	log.Printf("notify: %s appointment=%d provider=%d start=%s",
		ev.Type, ev.AppointmentID, ev.ProviderID, ev.StartTime.Format(time.RFC3339))
	return nil
}
