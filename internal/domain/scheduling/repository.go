package scheduling

import (
	"context"
	"time"

	"github.com/chairtime/booking-engine/internal/models"
)

// ReserveInput is one atomic reservation attempt. ExpectedVersion zero
// means insert; non-zero means a version-guarded update of an existing row.
// Guest, when set on insert, is created in the same transaction and linked
// to the new appointment.
type ReserveInput struct {
	Appointment *models.Appointment

	// ExcludeID omits the appointment's own row from the overlap check
	// when rescheduling.
	ExcludeID uint

	ExpectedVersion int64

	Guest *models.GuestBooking
}

// Repository is the persistence port of the scheduling engine.
//
// ReserveAppointment must re-validate the overlap predicate against the
// latest committed state inside the same transaction as the write, and for
// updates reject any version mismatch with ErrStaleVersion. That closes the
// race window left open by the caller's snapshot pre-check.
type Repository interface {
	// -------- Provider / Service --------
	GetProviderByID(
		ctx context.Context,
		id uint,
	) (*models.Provider, error)

	GetProviderBySlug(
		ctx context.Context,
		slug string,
	) (*models.Provider, error)

	GetService(
		ctx context.Context,
		providerID uint,
		serviceID uint,
	) (*models.Service, error)

	ListActiveServices(
		ctx context.Context,
		providerID uint,
	) ([]models.Service, error)

	// -------- Availability --------
	GetWeeklyAvailability(
		ctx context.Context,
		providerID uint,
		weekday int,
	) (*models.ProviderAvailability, error)

	ListWeeklyAvailability(
		ctx context.Context,
		providerID uint,
	) ([]models.ProviderAvailability, error)

	// ReplaceWeeklyAvailability swaps the provider's whole weekly grid in
	// one transaction.
	ReplaceWeeklyAvailability(
		ctx context.Context,
		providerID uint,
		rows []models.ProviderAvailability,
	) error

	// GetAvailabilityException returns (nil, nil) when the date has no
	// exception row.
	GetAvailabilityException(
		ctx context.Context,
		providerID uint,
		date string,
	) (*models.AvailabilityException, error)

	ListAvailabilityExceptions(
		ctx context.Context,
		providerID uint,
		fromDate string,
		toDate string,
	) ([]models.AvailabilityException, error)

	// UpsertAvailabilityException replaces any existing row for the same
	// provider and date.
	UpsertAvailabilityException(
		ctx context.Context,
		ex *models.AvailabilityException,
	) error

	DeleteAvailabilityException(
		ctx context.Context,
		providerID uint,
		date string,
	) error

	// -------- Appointments --------
	ListActiveAppointments(
		ctx context.Context,
		providerID uint,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		providerID uint,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	GetAppointmentByID(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	ReserveAppointment(
		ctx context.Context,
		in ReserveInput,
	) error

	// UpdateAppointmentVersioned persists a lifecycle mutation under the
	// optimistic version guard and bumps Version on success.
	UpdateAppointmentVersioned(
		ctx context.Context,
		ap *models.Appointment,
		expectedVersion int64,
	) error

	// -------- Guest bookings --------
	GetGuestBookingByID(
		ctx context.Context,
		id uint,
	) (*models.GuestBooking, error)

	GetGuestBookingByCode(
		ctx context.Context,
		code string,
	) (*models.GuestBooking, error)

	// ConvertGuestBooking links a guest booking to an account. Idempotent:
	// an already-converted row is returned as-is.
	ConvertGuestBooking(
		ctx context.Context,
		guestBookingID uint,
		userID uint,
	) (*models.GuestBooking, error)
}
