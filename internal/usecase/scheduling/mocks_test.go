package scheduling

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
	"github.com/chairtime/booking-engine/internal/models"
)

// MockRepository stands in for the persistence port.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetProviderByID(ctx context.Context, id uint) (*models.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Provider), args.Error(1)
}

func (m *MockRepository) GetProviderBySlug(ctx context.Context, slug string) (*models.Provider, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Provider), args.Error(1)
}

func (m *MockRepository) GetService(ctx context.Context, providerID, serviceID uint) (*models.Service, error) {
	args := m.Called(ctx, providerID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *MockRepository) ListActiveServices(ctx context.Context, providerID uint) ([]models.Service, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *MockRepository) GetWeeklyAvailability(ctx context.Context, providerID uint, weekday int) (*models.ProviderAvailability, error) {
	args := m.Called(ctx, providerID, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderAvailability), args.Error(1)
}

func (m *MockRepository) ListWeeklyAvailability(ctx context.Context, providerID uint) ([]models.ProviderAvailability, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProviderAvailability), args.Error(1)
}

func (m *MockRepository) ReplaceWeeklyAvailability(ctx context.Context, providerID uint, rows []models.ProviderAvailability) error {
	args := m.Called(ctx, providerID, rows)
	return args.Error(0)
}

func (m *MockRepository) GetAvailabilityException(ctx context.Context, providerID uint, date string) (*models.AvailabilityException, error) {
	args := m.Called(ctx, providerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AvailabilityException), args.Error(1)
}

func (m *MockRepository) ListAvailabilityExceptions(ctx context.Context, providerID uint, fromDate, toDate string) ([]models.AvailabilityException, error) {
	args := m.Called(ctx, providerID, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AvailabilityException), args.Error(1)
}

func (m *MockRepository) UpsertAvailabilityException(ctx context.Context, ex *models.AvailabilityException) error {
	args := m.Called(ctx, ex)
	return args.Error(0)
}

func (m *MockRepository) DeleteAvailabilityException(ctx context.Context, providerID uint, date string) error {
	args := m.Called(ctx, providerID, date)
	return args.Error(0)
}

func (m *MockRepository) ListActiveAppointments(ctx context.Context, providerID uint, from, to time.Time) ([]models.Appointment, error) {
	args := m.Called(ctx, providerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockRepository) ListAppointmentsForPeriod(ctx context.Context, providerID uint, from, to time.Time) ([]models.Appointment, error) {
	args := m.Called(ctx, providerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockRepository) GetAppointmentByID(ctx context.Context, id uint) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockRepository) ReserveAppointment(ctx context.Context, in domain.ReserveInput) error {
	args := m.Called(ctx, in)
	if args.Error(0) == nil && in.Appointment.ID == 0 {
		in.Appointment.ID = 101 // simulate the insert
		in.Appointment.Version = 1
	}
	return args.Error(0)
}

func (m *MockRepository) UpdateAppointmentVersioned(ctx context.Context, ap *models.Appointment, expectedVersion int64) error {
	args := m.Called(ctx, ap, expectedVersion)
	if args.Error(0) == nil {
		ap.Version = expectedVersion + 1
	}
	return args.Error(0)
}

func (m *MockRepository) GetGuestBookingByID(ctx context.Context, id uint) (*models.GuestBooking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestBooking), args.Error(1)
}

func (m *MockRepository) GetGuestBookingByCode(ctx context.Context, code string) (*models.GuestBooking, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestBooking), args.Error(1)
}

func (m *MockRepository) ConvertGuestBooking(ctx context.Context, guestBookingID, userID uint) (*models.GuestBooking, error) {
	args := m.Called(ctx, guestBookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestBooking), args.Error(1)
}

var _ domain.Repository = (*MockRepository)(nil)

// fixedClock pins "now" for deterministic advance-time checks.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testProvider() *models.Provider {
	return &models.Provider{
		ID:                1,
		Name:              "Studio One",
		Slug:              "studio-one",
		Timezone:          "UTC",
		MinAdvanceMinutes: 120,
		Active:            true,
	}
}

func testService() *models.Service {
	return &models.Service{
		ID:          7,
		ProviderID:  1,
		Name:        "Session",
		DurationMin: 60,
		Active:      true,
	}
}

func openWeek() *models.ProviderAvailability {
	return &models.ProviderAvailability{
		ProviderID: 1,
		StartTime:  "09:00",
		EndTime:    "18:00",
		Active:     true,
	}
}
