package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/chairtime/booking-engine/internal/audit"
	"github.com/chairtime/booking-engine/internal/infra/cache"
	"github.com/chairtime/booking-engine/internal/models"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

// ManageSchedule covers the provider-facing calendar administration:
// the recurring weekly grid and per-date exceptions. Every mutation
// invalidates the provider's cached slots.
type ManageSchedule struct {
	repo      domain.Repository
	slotCache *cache.SlotCache
	auditor   *audit.Dispatcher
}

func NewManageSchedule(
	repo domain.Repository,
	slotCache *cache.SlotCache,
	auditor *audit.Dispatcher,
) *ManageSchedule {
	return &ManageSchedule{
		repo:      repo,
		slotCache: slotCache,
		auditor:   auditor,
	}
}

func validHM(hm string) bool {
	_, err := time.Parse("15:04", hm)
	return err == nil
}

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func (uc *ManageSchedule) ListWeeklyHours(
	ctx context.Context,
	providerID uint,
) ([]models.ProviderAvailability, error) {
	return uc.repo.ListWeeklyAvailability(ctx, providerID)
}

// SetWeeklyHours replaces the provider's whole weekly grid.
func (uc *ManageSchedule) SetWeeklyHours(
	ctx context.Context,
	providerID uint,
	rows []models.ProviderAvailability,
) error {

	seen := map[int]bool{}
	for _, row := range rows {
		if row.Weekday < 0 || row.Weekday > 6 {
			return domain.InvalidInterval(fmt.Sprintf("weekday %d out of range", row.Weekday))
		}
		if seen[row.Weekday] {
			return domain.InvalidInterval(fmt.Sprintf("duplicate weekday %d", row.Weekday))
		}
		seen[row.Weekday] = true

		if !validHM(row.StartTime) || !validHM(row.EndTime) {
			return domain.InvalidInterval("working hours must be HH:MM")
		}
		if row.EndTime <= row.StartTime {
			return domain.InvalidInterval("working hours must end after they start")
		}
		if row.BreakStart != "" || row.BreakEnd != "" {
			if !validHM(row.BreakStart) || !validHM(row.BreakEnd) {
				return domain.InvalidInterval("break must be HH:MM")
			}
			if row.BreakEnd <= row.BreakStart {
				return domain.InvalidInterval("break must end after it starts")
			}
			if row.BreakStart < row.StartTime || row.BreakEnd > row.EndTime {
				return domain.InvalidInterval("break must fall inside working hours")
			}
		}
	}

	err := withStorageRetry(ctx, func() error {
		return uc.repo.ReplaceWeeklyAvailability(ctx, providerID, rows)
	})
	if err != nil {
		return err
	}

	if uc.slotCache != nil {
		uc.slotCache.Invalidate(ctx, providerID)
	}
	if uc.auditor != nil {
		uc.auditor.Dispatch(audit.Event{
			ProviderID: providerID,
			Action:     "weekly_hours_replaced",
			Entity:     "provider_availability",
		})
	}
	return nil
}

func (uc *ManageSchedule) ListExceptions(
	ctx context.Context,
	providerID uint,
	fromDate string,
	toDate string,
) ([]models.AvailabilityException, error) {

	if fromDate != "" && !validDate(fromDate) {
		return nil, domain.InvalidInterval("from must be YYYY-MM-DD")
	}
	if toDate != "" && !validDate(toDate) {
		return nil, domain.InvalidInterval("to must be YYYY-MM-DD")
	}
	return uc.repo.ListAvailabilityExceptions(ctx, providerID, fromDate, toDate)
}

// AddException creates or replaces the exception for a date.
func (uc *ManageSchedule) AddException(
	ctx context.Context,
	ex *models.AvailabilityException,
) error {

	if !validDate(ex.Date) {
		return domain.InvalidInterval("date must be YYYY-MM-DD")
	}
	if !ex.Closed {
		if !validHM(ex.StartTime) || !validHM(ex.EndTime) {
			return domain.InvalidInterval("special hours must be HH:MM")
		}
		if ex.EndTime <= ex.StartTime {
			return domain.InvalidInterval("special hours must end after they start")
		}
	}

	err := withStorageRetry(ctx, func() error {
		return uc.repo.UpsertAvailabilityException(ctx, ex)
	})
	if err != nil {
		return err
	}

	if uc.slotCache != nil {
		uc.slotCache.Invalidate(ctx, ex.ProviderID)
	}
	if uc.auditor != nil {
		uc.auditor.Dispatch(audit.Event{
			ProviderID: ex.ProviderID,
			Action:     "exception_set",
			Entity:     "availability_exception",
			EntityID:   &ex.ID,
		})
	}
	return nil
}

func (uc *ManageSchedule) RemoveException(
	ctx context.Context,
	providerID uint,
	date string,
) error {

	if !validDate(date) {
		return domain.InvalidInterval("date must be YYYY-MM-DD")
	}

	err := withStorageRetry(ctx, func() error {
		return uc.repo.DeleteAvailabilityException(ctx, providerID, date)
	})
	if err != nil {
		return err
	}

	if uc.slotCache != nil {
		uc.slotCache.Invalidate(ctx, providerID)
	}
	if uc.auditor != nil {
		uc.auditor.Dispatch(audit.Event{
			ProviderID: providerID,
			Action:     "exception_removed",
			Entity:     "availability_exception",
		})
	}
	return nil
}
