package scheduling

import (
	"context"

	"github.com/chairtime/booking-engine/internal/audit"
	"github.com/chairtime/booking-engine/internal/models"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

type CompleteAppointment struct {
	repo    domain.Repository
	auditor *audit.Dispatcher
	clock   domain.Clock
}

func NewCompleteAppointment(
	repo domain.Repository,
	auditor *audit.Dispatcher,
	clock domain.Clock,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:    repo,
		auditor: auditor,
		clock:   clock,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	expectedVersion int64,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Complete(ap, uc.clock.Now()); err != nil {
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
			Action:     "appointment_completed",
			Entity:     "appointment",
			EntityID:   &ap.ID,
		})
	}

	return ap, nil
}
