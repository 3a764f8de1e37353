package scheduling

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chairtime/booking-engine/internal/audit"
	"github.com/chairtime/booking-engine/internal/infra/cache"
	"github.com/chairtime/booking-engine/internal/models"
	"github.com/chairtime/booking-engine/internal/notify"
	"github.com/chairtime/booking-engine/internal/timezone"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

const maxConflictAlternatives = 5

// ======================================================
// INPUT
// ======================================================

type BookInput struct {
	ProviderID uint
	ServiceID  uint

	// ClientID set means the account path; nil means a guest booking and
	// requires the guest fields.
	ClientID *uint

	GuestName  string
	GuestEmail string
	GuestPhone string

	Date  string // "2006-01-02" in the provider's timezone
	Time  string // "15:04"
	Notes string
}

type BookResult struct {
	Appointment *models.Appointment

	// ConfirmationCode is set on the guest path only.
	ConfirmationCode string
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	repo      domain.Repository
	slotCache *cache.SlotCache
	notifier  *notify.Dispatcher
	auditor   *audit.Dispatcher
	clock     domain.Clock

	autoConfirm bool
	stepMin     int
}

func NewBookAppointment(
	repo domain.Repository,
	slotCache *cache.SlotCache,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	clock domain.Clock,
	autoConfirm bool,
	stepMin int,
) *BookAppointment {
	return &BookAppointment{
		repo:        repo,
		slotCache:   slotCache,
		notifier:    notifier,
		auditor:     auditor,
		clock:       clock,
		autoConfirm: autoConfirm,
		stepMin:     stepMin,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookInput,
) (*BookResult, error) {

	provider, err := uc.repo.GetProviderByID(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}

	if in.ClientID == nil && strings.TrimSpace(in.GuestName) == "" {
		return nil, domain.InvalidInterval("guest name or client id required")
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

	svc, err := uc.repo.GetService(ctx, in.ProviderID, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.DurationMin <= 0 {
		return nil, domain.InvalidInterval("service has no duration")
	}

	// cutoff is the earliest bookable instant; slot generation uses the
	// same value so no reported slot can fail the advance check.
	cutoff := uc.clock.Now().Add(minAdvance(provider))
	if start.Before(cutoff) {
		return nil, domain.InvalidInterval("too soon")
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	window, open, err := resolveDayWindow(ctx, uc.repo, in.ProviderID, day, loc)
	if err != nil {
		return nil, err
	}
	core := domain.NewInterval(start, time.Duration(svc.DurationMin)*time.Minute)
	if !open || !window.Fits(core) {
		return nil, domain.InvalidInterval("outside working hours")
	}

	// Fail-fast pre-check against the current snapshot. The authoritative
	// re-validation happens inside the reservation transaction.
	padded := domain.PaddedInterval(start, svc.DurationMin, svc.BufferBeforeMin, svc.BufferAfterMin)
	busy, err := busyIntervals(ctx, uc.repo, in.ProviderID, day, 0)
	if err != nil {
		return nil, err
	}
	for _, b := range busy {
		if padded.Overlaps(b) {
			return nil, uc.conflict(ctx, provider, svc, day, window, start, cutoff)
		}
	}

	status := domain.StatusPending
	if uc.autoConfirm {
		status = domain.StatusConfirmed
	}

	ap := &models.Appointment{
		ProviderID:      in.ProviderID,
		ClientID:        in.ClientID,
		ServiceID:       &svc.ID,
		StartTime:       start.UTC(),
		DurationMin:     svc.DurationMin,
		BufferBeforeMin: svc.BufferBeforeMin,
		BufferAfterMin:  svc.BufferAfterMin,
		Status:          string(status),
		Notes:           in.Notes,
	}

	var guest *models.GuestBooking

	err = withStorageRetry(ctx, func() error {
		if in.ClientID == nil {
			// fresh code per attempt; the unique index is the backstop
			guest = &models.GuestBooking{
				GuestName:        in.GuestName,
				GuestEmail:       in.GuestEmail,
				GuestPhone:       in.GuestPhone,
				ConfirmationCode: newConfirmationCode(),
			}
		}
		return uc.repo.ReserveAppointment(ctx, domain.ReserveInput{
			Appointment: ap,
			Guest:       guest,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, uc.conflict(ctx, provider, svc, day, window, start, cutoff)
		}
		return nil, err
	}

	uc.slotCache.Invalidate(ctx, in.ProviderID)

	if uc.auditor != nil {
		uc.auditor.Dispatch(audit.Event{
			ProviderID: in.ProviderID,
			UserID:     in.ClientID,
			Action:     "appointment_booked",
			Entity:     "appointment",
			EntityID:   &ap.ID,
		})
	}

	result := &BookResult{Appointment: ap}
	if guest != nil {
		result.ConfirmationCode = guest.ConfirmationCode
	}

	if uc.notifier != nil {
		ev := notify.Event{
			Type:          notify.EventBooked,
			AppointmentID: ap.ID,
			ProviderID:    in.ProviderID,
			StartTime:     ap.StartTime,
		}
		if guest != nil {
			ev.GuestEmail = guest.GuestEmail
			ev.ConfirmationCode = guest.ConfirmationCode
		}
		uc.notifier.Dispatch(ev)
	}

	return result, nil
}

// conflict builds the conflict outcome with the nearest free slots of the
// same day, closest to the requested start first. cutoff is the earliest
// bookable instant, so every alternative offered is actually takeable.
func (uc *BookAppointment) conflict(
	ctx context.Context,
	provider *models.Provider,
	svc *models.Service,
	day time.Time,
	window domain.DayWindow,
	requested time.Time,
	cutoff time.Time,
) error {

	ce := &domain.ConflictError{
		ProviderID: provider.ID,
		Requested:  domain.NewInterval(requested.UTC(), time.Duration(svc.DurationMin)*time.Minute),
	}

	busy, err := busyIntervals(ctx, uc.repo, provider.ID, day, 0)
	if err != nil {
		return ce
	}

	var free []domain.TimeSlot
	for slot := range domain.GenerateSlots(window, busy, domain.SlotOptions{
		DurationMin:     svc.DurationMin,
		BufferBeforeMin: svc.BufferBeforeMin,
		BufferAfterMin:  svc.BufferAfterMin,
		StepMin:         uc.stepMin,
		Now:             cutoff,
	}) {
		if slot.Available {
			free = append(free, slot)
		}
	}

	sort.Slice(free, func(i, j int) bool {
		di := absDuration(free[i].Start.Sub(requested))
		dj := absDuration(free[j].Start.Sub(requested))
		return di < dj
	})
	if len(free) > maxConflictAlternatives {
		free = free[:maxConflictAlternatives]
	}

	ce.Alternatives = free
	return ce
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func newConfirmationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:12])
}
