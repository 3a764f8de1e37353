package scheduling

import (
	"context"

	"github.com/chairtime/booking-engine/internal/audit"
	"github.com/chairtime/booking-engine/internal/models"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

type MarkNoShow struct {
	repo    domain.Repository
	auditor *audit.Dispatcher
	clock   domain.Clock
}

func NewMarkNoShow(
	repo domain.Repository,
	auditor *audit.Dispatcher,
	clock domain.Clock,
) *MarkNoShow {
	return &MarkNoShow{
		repo:    repo,
		auditor: auditor,
		clock:   clock,
	}
}

func (uc *MarkNoShow) Execute(
	ctx context.Context,
	appointmentID uint,
	expectedVersion int64,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.MarkNoShow(ap, uc.clock.Now()); err != nil {
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
			Action:     "appointment_no_show",
			Entity:     "appointment",
			EntityID:   &ap.ID,
		})
	}

	return ap, nil
}
