package scheduling

import (
	"context"

	"github.com/chairtime/booking-engine/internal/audit"
	"github.com/chairtime/booking-engine/internal/models"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

type ConvertGuestBooking struct {
	repo    domain.Repository
	auditor *audit.Dispatcher
}

func NewConvertGuestBooking(
	repo domain.Repository,
	auditor *audit.Dispatcher,
) *ConvertGuestBooking {
	return &ConvertGuestBooking{
		repo:    repo,
		auditor: auditor,
	}
}

// Execute attaches a guest booking to an account. Converting twice with the
// same inputs returns the original conversion.
func (uc *ConvertGuestBooking) Execute(
	ctx context.Context,
	guestBookingID uint,
	userID uint,
) (*models.GuestBooking, error) {

	var gb *models.GuestBooking

	err := withStorageRetry(ctx, func() error {
		var err error
		gb, err = uc.repo.ConvertGuestBooking(ctx, guestBookingID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.auditor != nil {
		ap, err := uc.repo.GetAppointmentByID(ctx, gb.AppointmentID)
		if err == nil {
			uc.auditor.Dispatch(audit.Event{
				ProviderID: ap.ProviderID,
				UserID:     &userID,
				Action:     "guest_booking_converted",
				Entity:     "guest_booking",
				EntityID:   &gb.ID,
			})
		}
	}

	return gb, nil
}
