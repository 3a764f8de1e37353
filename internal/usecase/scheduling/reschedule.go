package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chairtime/booking-engine/internal/audit"
	"github.com/chairtime/booking-engine/internal/infra/cache"
	"github.com/chairtime/booking-engine/internal/models"
	"github.com/chairtime/booking-engine/internal/notify"
	"github.com/chairtime/booking-engine/internal/timezone"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

type RescheduleInput struct {
	Date string // "2006-01-02" in the provider's timezone
	Time string // "15:04"
}

type RescheduleAppointment struct {
	repo      domain.Repository
	slotCache *cache.SlotCache
	notifier  *notify.Dispatcher
	auditor   *audit.Dispatcher
	clock     domain.Clock
	stepMin   int
}

func NewRescheduleAppointment(
	repo domain.Repository,
	slotCache *cache.SlotCache,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	clock domain.Clock,
	stepMin int,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:      repo,
		slotCache: slotCache,
		notifier:  notifier,
		auditor:   auditor,
		clock:     clock,
		stepMin:   stepMin,
	}
}

// Execute moves an appointment to a new interval. The old slot is freed by
// the same transaction that claims the new one; the appointment's own row
// is excluded from the overlap test.
func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	expectedVersion int64,
	in RescheduleInput,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !domain.Status(ap.Status).Active() {
		return nil, fmt.Errorf("%w: cannot reschedule a %s appointment", domain.ErrInvalidTransition, ap.Status)
	}

	provider, err := uc.repo.GetProviderByID(ctx, ap.ProviderID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(provider.Timezone)

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		loc,
	)
	if err != nil {
		return nil, domain.InvalidInterval("invalid date or time")
	}

	// earliest bookable instant; alternatives below honor the same bound
	cutoff := uc.clock.Now().Add(minAdvance(provider))
	if start.Before(cutoff) {
		return nil, domain.InvalidInterval("too soon")
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	window, open, err := resolveDayWindow(ctx, uc.repo, ap.ProviderID, day, loc)
	if err != nil {
		return nil, err
	}
	core := domain.NewInterval(start, time.Duration(ap.DurationMin)*time.Minute)
	if !open || !window.Fits(core) {
		return nil, domain.InvalidInterval("outside working hours")
	}

	padded := domain.PaddedInterval(start, ap.DurationMin, ap.BufferBeforeMin, ap.BufferAfterMin)
	busy, err := busyIntervals(ctx, uc.repo, ap.ProviderID, day, ap.ID)
	if err != nil {
		return nil, err
	}
	for _, b := range busy {
		if padded.Overlaps(b) {
			return nil, uc.conflict(ctx, ap, window, day, start, cutoff)
		}
	}

	updated := *ap
	updated.StartTime = start.UTC()

	err = withStorageRetry(ctx, func() error {
		return uc.repo.ReserveAppointment(ctx, domain.ReserveInput{
			Appointment:     &updated,
			ExcludeID:       ap.ID,
			ExpectedVersion: expectedVersion,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, uc.conflict(ctx, ap, window, day, start, cutoff)
		}
		return nil, err
	}

	uc.slotCache.Invalidate(ctx, ap.ProviderID)

	if uc.auditor != nil {
		uc.auditor.Dispatch(audit.Event{
			ProviderID: ap.ProviderID,
			Action:     "appointment_rescheduled",
			Entity:     "appointment",
			EntityID:   &ap.ID,
		})
	}
	if uc.notifier != nil {
		uc.notifier.Dispatch(notify.Event{
			Type:          notify.EventRescheduled,
			AppointmentID: ap.ID,
			ProviderID:    ap.ProviderID,
			StartTime:     updated.StartTime,
		})
	}

	return &updated, nil
}

func (uc *RescheduleAppointment) conflict(
	ctx context.Context,
	ap *models.Appointment,
	window domain.DayWindow,
	day time.Time,
	requested time.Time,
	cutoff time.Time,
) error {

	ce := &domain.ConflictError{
		ProviderID: ap.ProviderID,
		Requested:  domain.NewInterval(requested.UTC(), time.Duration(ap.DurationMin)*time.Minute),
	}

	busy, err := busyIntervals(ctx, uc.repo, ap.ProviderID, day, ap.ID)
	if err != nil {
		return ce
	}

	var free []domain.TimeSlot
	for slot := range domain.GenerateSlots(window, busy, domain.SlotOptions{
		DurationMin:     ap.DurationMin,
		BufferBeforeMin: ap.BufferBeforeMin,
		BufferAfterMin:  ap.BufferAfterMin,
		StepMin:         uc.stepMin,
		Now:             cutoff,
	}) {
		if slot.Available {
			free = append(free, slot)
		}
	}

	sort.Slice(free, func(i, j int) bool {
		return absDuration(free[i].Start.Sub(requested)) < absDuration(free[j].Start.Sub(requested))
	})
	if len(free) > maxConflictAlternatives {
		free = free[:maxConflictAlternatives]
	}

	ce.Alternatives = free
	return ce
}
