package scheduling

import (
	"context"
	"time"

	"github.com/chairtime/booking-engine/internal/dto"
	"github.com/chairtime/booking-engine/internal/timezone"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

type ListAppointmentsByDate struct {
	repo  domain.Repository
	clock domain.Clock
}

func NewListAppointmentsByDate(
	repo domain.Repository,
	clock domain.Clock,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo:  repo,
		clock: clock,
	}
}

// Execute lists the provider's agenda for one calendar day. date is
// "2006-01-02"; empty means today in the provider's timezone, which near
// midnight is not the same day as UTC.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	providerID uint,
	date string,
) ([]dto.AppointmentListDTO, error) {

	provider, err := uc.repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(provider.Timezone)

	day := uc.clock.Now().In(loc)
	if date != "" {
		day, err = time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return nil, domain.InvalidInterval("date must be YYYY-MM-DD")
		}
	}

	start := time.Date(
		day.Year(),
		day.Month(),
		day.Day(),
		0, 0, 0, 0,
		loc,
	)
	end := start.Add(24 * time.Hour)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		providerID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		item := dto.AppointmentListDTO{
			ID:        ap.ID,
			StartTime: ap.StartTime,
			EndTime:   ap.EndTime(),
			Status:    ap.Status,
			Version:   ap.Version,
		}
		if ap.Service != nil {
			item.ServiceName = ap.Service.Name
		}
		out = append(out, item)
	}

	return out, nil
}
