package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
	"github.com/chairtime/booking-engine/internal/models"
)

// now is well before the booked day, so the min-advance rule never trips
// unless a test wants it to.
var testNow = time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)

func newBookUC(repo *MockRepository, autoConfirm bool) *BookAppointment {
	return NewBookAppointment(repo, nil, nil, nil, fixedClock{now: testNow}, autoConfirm, 30)
}

func expectOpenDay(repo *MockRepository, date string) {
	repo.On("GetAvailabilityException", mock.Anything, uint(1), date).Return(nil, nil)
	repo.On("GetWeeklyAvailability", mock.Anything, uint(1), mock.Anything).Return(openWeek(), nil)
}

func TestBookAppointmentAccountPath(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)
	expectOpenDay(repo, "2026-09-16")
	repo.On("ListActiveAppointments", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return([]models.Appointment{}, nil)
	repo.On("ReserveAppointment", mock.Anything, mock.Anything).Return(nil)

	clientID := uint(42)
	result, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		ClientID:   &clientID,
		Date:       "2026-09-16",
		Time:       "10:00",
	})

	require.NoError(t, err)
	ap := result.Appointment
	assert.Equal(t, "pending", ap.Status)
	assert.Equal(t, time.Date(2026, 9, 16, 10, 0, 0, 0, time.UTC), ap.StartTime)
	assert.Equal(t, 60, ap.DurationMin)
	assert.Equal(t, &clientID, ap.ClientID)
	assert.Empty(t, result.ConfirmationCode)
	repo.AssertExpectations(t)
}

func TestBookAppointmentAutoConfirm(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)
	expectOpenDay(repo, "2026-09-16")
	repo.On("ListActiveAppointments", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return([]models.Appointment{}, nil)
	repo.On("ReserveAppointment", mock.Anything, mock.Anything).Return(nil)

	clientID := uint(42)
	result, err := newBookUC(repo, true).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		ClientID:   &clientID,
		Date:       "2026-09-16",
		Time:       "10:00",
	})

	require.NoError(t, err)
	assert.Equal(t, "confirmed", result.Appointment.Status)
}

func TestBookAppointmentGuestPath(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)
	expectOpenDay(repo, "2026-09-16")
	repo.On("ListActiveAppointments", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return([]models.Appointment{}, nil)

	var captured domain.ReserveInput
	repo.On("ReserveAppointment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(domain.ReserveInput)
		}).
		Return(nil)

	result, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		GuestName:  "Dana",
		GuestEmail: "dana@example.com",
		Date:       "2026-09-16",
		Time:       "10:00",
	})

	require.NoError(t, err)
	require.NotNil(t, captured.Guest)
	assert.Equal(t, "Dana", captured.Guest.GuestName)
	assert.Len(t, result.ConfirmationCode, 12)
	assert.Equal(t, captured.Guest.ConfirmationCode, result.ConfirmationCode)
}

func TestBookAppointmentRejectsAnonymousWithoutGuestName(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)

	_, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		Date:       "2026-09-16",
		Time:       "10:00",
	})

	assert.True(t, domain.IsInvalidInterval(err))
	repo.AssertNotCalled(t, "ReserveAppointment", mock.Anything, mock.Anything)
}

func TestBookAppointmentTooSoon(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)

	clientID := uint(42)
	// 09:00 the same morning is inside the 120 minute advance window
	_, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		ClientID:   &clientID,
		Date:       "2026-09-14",
		Time:       "09:00",
	})

	require.Error(t, err)
	assert.True(t, domain.IsInvalidInterval(err))
	assert.Contains(t, err.Error(), "too soon")
}

func TestBookAppointmentOutsideWorkingHours(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)
	expectOpenDay(repo, "2026-09-16")

	clientID := uint(42)
	// 17:30 + 60min spills past the 18:00 close
	_, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		ClientID:   &clientID,
		Date:       "2026-09-16",
		Time:       "17:30",
	})

	require.Error(t, err)
	assert.True(t, domain.IsInvalidInterval(err))
	assert.Contains(t, err.Error(), "outside working hours")
}

func TestBookAppointmentClosedDay(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)
	repo.On("GetAvailabilityException", mock.Anything, uint(1), "2026-09-16").
		Return(&models.AvailabilityException{ProviderID: 1, Date: "2026-09-16", Closed: true}, nil)

	clientID := uint(42)
	_, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		ClientID:   &clientID,
		Date:       "2026-09-16",
		Time:       "10:00",
	})

	require.Error(t, err)
	assert.True(t, domain.IsInvalidInterval(err))
	repo.AssertNotCalled(t, "GetWeeklyAvailability", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookAppointmentConflictCarriesNearestAlternatives(t *testing.T) {
	taken := models.Appointment{
		ID:          55,
		ProviderID:  1,
		StartTime:   time.Date(2026, 9, 16, 10, 0, 0, 0, time.UTC),
		DurationMin: 60,
		Status:      "confirmed",
	}

	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)
	expectOpenDay(repo, "2026-09-16")
	repo.On("ListActiveAppointments", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return([]models.Appointment{taken}, nil)

	clientID := uint(42)
	_, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		ClientID:   &clientID,
		Date:       "2026-09-16",
		Time:       "10:30",
	})

	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NotEmpty(t, ce.Alternatives)
	assert.LessOrEqual(t, len(ce.Alternatives), 5)

	// closest free start first, and none of them collide with the taken hour
	assert.Equal(t, time.Date(2026, 9, 16, 11, 0, 0, 0, time.UTC), ce.Alternatives[0].Start)
	for _, alt := range ce.Alternatives {
		assert.True(t, alt.Available)
		blocked := domain.BlockedInterval(&taken)
		assert.False(t, domain.NewInterval(alt.Start, time.Hour).Overlaps(blocked))
	}

	// the reservation was never attempted
	repo.AssertNotCalled(t, "ReserveAppointment", mock.Anything, mock.Anything)
}

func TestBookAppointmentAlternativesHonorAdvanceWindow(t *testing.T) {
	// same-day conflict at 10:30; 09:00 and 09:30 are free but inside the
	// 120 minute advance window, so they must not be offered
	taken := models.Appointment{
		ID:          55,
		ProviderID:  1,
		StartTime:   time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC),
		DurationMin: 60,
		Status:      "confirmed",
	}

	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)
	expectOpenDay(repo, "2026-09-14")
	repo.On("ListActiveAppointments", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return([]models.Appointment{taken}, nil)

	clientID := uint(42)
	_, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		ClientID:   &clientID,
		Date:       "2026-09-14",
		Time:       "10:30",
	})

	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	require.NotEmpty(t, ce.Alternatives)

	cutoff := testNow.Add(120 * time.Minute)
	for _, alt := range ce.Alternatives {
		assert.False(t, alt.Start.Before(cutoff), "alternative %s is inside the advance window", alt.Start)
	}
	assert.Equal(t, time.Date(2026, 9, 14, 11, 0, 0, 0, time.UTC), ce.Alternatives[0].Start)
}

func TestBookAppointmentReserveConflictRace(t *testing.T) {
	// the snapshot looks clear but the transaction loses the race
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)
	expectOpenDay(repo, "2026-09-16")
	repo.On("ListActiveAppointments", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return([]models.Appointment{}, nil)
	repo.On("ReserveAppointment", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	clientID := uint(42)
	_, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		ClientID:   &clientID,
		Date:       "2026-09-16",
		Time:       "10:00",
	})

	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	repo.AssertNumberOfCalls(t, "ReserveAppointment", 1)
}

func TestBookAppointmentProviderMissing(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(9)).Return(nil, domain.ErrProviderNotFound)

	_, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 9,
		ServiceID:  7,
		GuestName:  "Dana",
		Date:       "2026-09-16",
		Time:       "10:00",
	})

	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestBookAppointmentStorageErrorSurfaces(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProviderByID", mock.Anything, uint(1)).Return(testProvider(), nil)
	repo.On("GetService", mock.Anything, uint(1), uint(7)).Return(testService(), nil)
	expectOpenDay(repo, "2026-09-16")
	repo.On("ListActiveAppointments", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return([]models.Appointment{}, nil)
	repo.On("ReserveAppointment", mock.Anything, mock.Anything).
		Return(errors.Join(domain.ErrStorageUnavailable))

	clientID := uint(42)
	_, err := newBookUC(repo, false).Execute(context.Background(), BookInput{
		ProviderID: 1,
		ServiceID:  7,
		ClientID:   &clientID,
		Date:       "2026-09-16",
		Time:       "10:00",
	})

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	// the retry loop exhausted its attempts before giving up
	repo.AssertNumberOfCalls(t, "ReserveAppointment", 3)
}
