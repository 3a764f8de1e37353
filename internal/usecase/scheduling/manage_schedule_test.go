package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
	"github.com/chairtime/booking-engine/internal/models"
)

func validWeek() []models.ProviderAvailability {
	return []models.ProviderAvailability{
		{Weekday: 1, StartTime: "09:00", EndTime: "18:00", Active: true},
		{Weekday: 2, StartTime: "09:00", EndTime: "18:00", BreakStart: "12:00", BreakEnd: "13:00", Active: true},
	}
}

func TestSetWeeklyHours(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ReplaceWeeklyAvailability", mock.Anything, uint(1), mock.Anything).Return(nil)

	uc := NewManageSchedule(repo, nil, nil)
	require.NoError(t, uc.SetWeeklyHours(context.Background(), 1, validWeek()))
	repo.AssertExpectations(t)
}

func TestSetWeeklyHoursValidation(t *testing.T) {
	uc := NewManageSchedule(new(MockRepository), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		rows []models.ProviderAvailability
	}{
		{"weekday out of range", []models.ProviderAvailability{
			{Weekday: 7, StartTime: "09:00", EndTime: "18:00"},
		}},
		{"duplicate weekday", []models.ProviderAvailability{
			{Weekday: 1, StartTime: "09:00", EndTime: "18:00"},
			{Weekday: 1, StartTime: "10:00", EndTime: "16:00"},
		}},
		{"bad time format", []models.ProviderAvailability{
			{Weekday: 1, StartTime: "9am", EndTime: "18:00"},
		}},
		{"end before start", []models.ProviderAvailability{
			{Weekday: 1, StartTime: "18:00", EndTime: "09:00"},
		}},
		{"break outside hours", []models.ProviderAvailability{
			{Weekday: 1, StartTime: "09:00", EndTime: "18:00", BreakStart: "08:00", BreakEnd: "08:30"},
		}},
		{"inverted break", []models.ProviderAvailability{
			{Weekday: 1, StartTime: "09:00", EndTime: "18:00", BreakStart: "13:00", BreakEnd: "12:00"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := uc.SetWeeklyHours(ctx, 1, tt.rows)
			assert.True(t, domain.IsInvalidInterval(err), "expected invalid interval, got %v", err)
		})
	}
}

func TestAddException(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpsertAvailabilityException", mock.Anything, mock.Anything).Return(nil)

	uc := NewManageSchedule(repo, nil, nil)

	require.NoError(t, uc.AddException(context.Background(), &models.AvailabilityException{
		ProviderID: 1,
		Date:       "2026-12-24",
		Closed:     true,
	}))

	require.NoError(t, uc.AddException(context.Background(), &models.AvailabilityException{
		ProviderID: 1,
		Date:       "2026-12-26",
		StartTime:  "10:00",
		EndTime:    "14:00",
	}))
}

func TestAddExceptionValidation(t *testing.T) {
	uc := NewManageSchedule(new(MockRepository), nil, nil)
	ctx := context.Background()

	err := uc.AddException(ctx, &models.AvailabilityException{ProviderID: 1, Date: "24/12/2026"})
	assert.True(t, domain.IsInvalidInterval(err))

	// open exception without hours
	err = uc.AddException(ctx, &models.AvailabilityException{ProviderID: 1, Date: "2026-12-24"})
	assert.True(t, domain.IsInvalidInterval(err))

	err = uc.AddException(ctx, &models.AvailabilityException{
		ProviderID: 1, Date: "2026-12-24", StartTime: "14:00", EndTime: "10:00",
	})
	assert.True(t, domain.IsInvalidInterval(err))
}

func TestRemoveException(t *testing.T) {
	repo := new(MockRepository)
	repo.On("DeleteAvailabilityException", mock.Anything, uint(1), "2026-12-24").Return(nil)

	uc := NewManageSchedule(repo, nil, nil)
	require.NoError(t, uc.RemoveException(context.Background(), 1, "2026-12-24"))

	err := uc.RemoveException(context.Background(), 1, "nonsense")
	assert.True(t, domain.IsInvalidInterval(err))
}

func TestListExceptionsValidatesRange(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListAvailabilityExceptions", mock.Anything, uint(1), "", "").
		Return([]models.AvailabilityException{}, nil)

	uc := NewManageSchedule(repo, nil, nil)

	_, err := uc.ListExceptions(context.Background(), 1, "", "")
	require.NoError(t, err)

	_, err = uc.ListExceptions(context.Background(), 1, "bad", "")
	assert.True(t, domain.IsInvalidInterval(err))
}
