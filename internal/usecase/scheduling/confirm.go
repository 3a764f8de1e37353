package scheduling

import (
	"context"

	"github.com/chairtime/booking-engine/internal/audit"
	"github.com/chairtime/booking-engine/internal/models"
	"github.com/chairtime/booking-engine/internal/notify"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

type ConfirmAppointment struct {
	repo     domain.Repository
	notifier *notify.Dispatcher
	auditor  *audit.Dispatcher
}

func NewConfirmAppointment(
	repo domain.Repository,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
) *ConfirmAppointment {
	return &ConfirmAppointment{
		repo:     repo,
		notifier: notifier,
		auditor:  auditor,
	}
}

func (uc *ConfirmAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	expectedVersion int64,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Confirm(ap); err != nil {
		return nil, err
	}

	err = withStorageRetry(ctx, func() error {
		return uc.repo.UpdateAppointmentVersioned(ctx, ap, expectedVersion)
	})
	if err != nil {
		return nil, err
	}

	if uc.auditor != nil {
		uc.auditor.Dispatch(audit.Event{
			ProviderID: ap.ProviderID,
			Action:     "appointment_confirmed",
			Entity:     "appointment",
			EntityID:   &ap.ID,
		})
	}
	if uc.notifier != nil {
		uc.notifier.Dispatch(notify.Event{
			Type:          notify.EventConfirmed,
			AppointmentID: ap.ID,
			ProviderID:    ap.ProviderID,
			StartTime:     ap.StartTime,
		})
	}

	return ap, nil
}
