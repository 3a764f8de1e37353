package scheduling

import (
	"context"
	"time"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
	"github.com/chairtime/booking-engine/internal/models"
)

// resolveDayWindow loads the availability inputs for one calendar day and
// applies the exception-first precedence. day must be midnight in the
// provider's timezone.
func resolveDayWindow(
	ctx context.Context,
	repo domain.Repository,
	providerID uint,
	day time.Time,
	loc *time.Location,
) (domain.DayWindow, bool, error) {

	exception, err := repo.GetAvailabilityException(ctx, providerID, day.Format("2006-01-02"))
	if err != nil {
		return domain.DayWindow{}, false, err
	}

	var weekly *models.ProviderAvailability
	if exception == nil {
		weekly, err = repo.GetWeeklyAvailability(ctx, providerID, int(day.Weekday()))
		if err != nil {
			return domain.DayWindow{}, false, err
		}
	}

	window, open := domain.ResolveDayWindow(day, loc, weekly, exception)
	return window, open, nil
}

// busyIntervals collects the blocked intervals around a day, reaching one
// day either side so buffers spilling over midnight are caught.
func busyIntervals(
	ctx context.Context,
	repo domain.Repository,
	providerID uint,
	day time.Time,
	excludeID uint,
) ([]domain.Interval, error) {

	from := day.Add(-24 * time.Hour)
	to := day.Add(48 * time.Hour)

	apps, err := repo.ListActiveAppointments(ctx, providerID, from, to)
	if err != nil {
		return nil, err
	}
	return domain.BusyIntervals(apps, excludeID), nil
}

func minAdvance(provider *models.Provider) time.Duration {
	minutes := provider.MinAdvanceMinutes
	if minutes <= 0 {
		minutes = 120
	}
	return time.Duration(minutes) * time.Minute
}
