package scheduling

import (
	"context"
	"time"

	"github.com/chairtime/booking-engine/internal/infra/cache"
	"github.com/chairtime/booking-engine/internal/timezone"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

const maxAvailabilityRangeDays = 31

type GetAvailability struct {
	repo      domain.Repository
	slotCache *cache.SlotCache
	clock     domain.Clock
	stepMin   int
}

func NewGetAvailability(
	repo domain.Repository,
	slotCache *cache.SlotCache,
	clock domain.Clock,
	stepMin int,
) *GetAvailability {
	return &GetAvailability{
		repo:      repo,
		slotCache: slotCache,
		clock:     clock,
		stepMin:   stepMin,
	}
}

type AvailabilityDay struct {
	Date  string            `json:"date"`
	Slots []domain.TimeSlot `json:"slots"`
}

// Execute produces the slot sequence for each day of the range, ordered by
// date. from/to are "2006-01-02" dates in the provider's timezone; an empty
// to means a single day.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	providerID uint,
	serviceID uint,
	from string,
	to string,
) ([]AvailabilityDay, error) {

	provider, err := uc.repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	svc, err := uc.repo.GetService(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(provider.Timezone)

	start, err := time.ParseInLocation("2006-01-02", from, loc)
	if err != nil {
		return nil, domain.InvalidInterval("invalid from date")
	}

	end := start
	if to != "" {
		end, err = time.ParseInLocation("2006-01-02", to, loc)
		if err != nil {
			return nil, domain.InvalidInterval("invalid to date")
		}
	}
	if end.Before(start) {
		return nil, domain.InvalidInterval("to date before from date")
	}
	if end.Sub(start) > maxAvailabilityRangeDays*24*time.Hour {
		return nil, domain.InvalidInterval("date range too wide")
	}

	// A reported slot must pass the booking advance check, so generation
	// starts at the same cutoff the booking path enforces.
	cutoff := uc.clock.Now().Add(minAdvance(provider))
	out := make([]AvailabilityDay, 0)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dateStr := day.Format("2006-01-02")

		if slots, ok := uc.slotCache.Get(ctx, providerID, serviceID, dateStr); ok {
			// entries live for a TTL, so the cutoff has moved since they
			// were written; drop what slid behind it
			out = append(out, AvailabilityDay{Date: dateStr, Slots: pruneBefore(slots, cutoff)})
			continue
		}

		window, open, err := resolveDayWindow(ctx, uc.repo, providerID, day, loc)
		if err != nil {
			return nil, err
		}

		slots := []domain.TimeSlot{}
		if open {
			busy, err := busyIntervals(ctx, uc.repo, providerID, day, 0)
			if err != nil {
				return nil, err
			}

			slots = domain.CollectSlots(domain.GenerateSlots(window, busy, domain.SlotOptions{
				DurationMin:     svc.DurationMin,
				BufferBeforeMin: svc.BufferBeforeMin,
				BufferAfterMin:  svc.BufferAfterMin,
				StepMin:         uc.stepMin,
				Now:             cutoff,
			}))
		}

		uc.slotCache.Set(ctx, providerID, serviceID, dateStr, slots)
		out = append(out, AvailabilityDay{Date: dateStr, Slots: slots})
	}

	return out, nil
}

func pruneBefore(slots []domain.TimeSlot, cutoff time.Time) []domain.TimeSlot {
	out := make([]domain.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.Start.Before(cutoff) {
			continue
		}
		out = append(out, s)
	}
	return out
}
