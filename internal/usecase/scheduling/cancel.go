package scheduling

import (
	"context"

	"github.com/chairtime/booking-engine/internal/audit"
	"github.com/chairtime/booking-engine/internal/infra/cache"
	"github.com/chairtime/booking-engine/internal/models"
	"github.com/chairtime/booking-engine/internal/notify"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

type CancelAppointment struct {
	repo      domain.Repository
	slotCache *cache.SlotCache
	notifier  *notify.Dispatcher
	auditor   *audit.Dispatcher
	clock     domain.Clock
}

func NewCancelAppointment(
	repo domain.Repository,
	slotCache *cache.SlotCache,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	clock domain.Clock,
) *CancelAppointment {
	return &CancelAppointment{
		repo:      repo,
		slotCache: slotCache,
		notifier:  notifier,
		auditor:   auditor,
		clock:     clock,
	}
}

// Execute cancels under the version guard. Cancellation never conflicts
// with time; the row is kept, only its status changes.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	expectedVersion int64,
	reason string,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Cancel(ap, uc.clock.Now(), reason); err != nil {
		return nil, err
	}

	err = withStorageRetry(ctx, func() error {
		return uc.repo.UpdateAppointmentVersioned(ctx, ap, expectedVersion)
	})
	if err != nil {
		return nil, err
	}

	// the slot is free again
	uc.slotCache.Invalidate(ctx, ap.ProviderID)

	if uc.auditor != nil {
		uc.auditor.Dispatch(audit.Event{
			ProviderID: ap.ProviderID,
			Action:     "appointment_cancelled",
			Entity:     "appointment",
			EntityID:   &ap.ID,
		})
	}
	if uc.notifier != nil {
		uc.notifier.Dispatch(notify.Event{
			Type:          notify.EventCancelled,
			AppointmentID: ap.ID,
			ProviderID:    ap.ProviderID,
			StartTime:     ap.StartTime,
		})
	}

	return ap, nil
}
