package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
	"github.com/chairtime/booking-engine/internal/models"
)

// reserveScanPad widens the row scan around a candidate so neighbouring
// appointments whose buffers reach into the candidate's window are locked
// and checked too. No appointment plus buffers exceeds a day.
const reserveScanPad = 24 * time.Hour

type SchedulingGormRepository struct {
	db *gorm.DB
}

func NewSchedulingGormRepository(db *gorm.DB) *SchedulingGormRepository {
	return &SchedulingGormRepository{db: db}
}

// wrapStorage folds infrastructure faults into the retryable class and
// translates the Postgres exclusion constraint, the last line of defense
// against double booking, into the domain conflict.
func wrapStorage(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "appointments_no_overlap" {
		return domain.ErrConflict
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}

// --------------------------------------------------
// Provider / Service
// --------------------------------------------------

func (r *SchedulingGormRepository) GetProviderByID(
	ctx context.Context,
	id uint,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, wrapStorage(err)
	}
	return &p, nil
}

func (r *SchedulingGormRepository) GetProviderBySlug(
	ctx context.Context,
	slug string,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, wrapStorage(err)
	}
	return &p, nil
}

func (r *SchedulingGormRepository) GetService(
	ctx context.Context,
	providerID uint,
	serviceID uint,
) (*models.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ? AND active = ?", serviceID, providerID, true).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &s, nil
}

func (r *SchedulingGormRepository) ListActiveServices(
	ctx context.Context,
	providerID uint,
) ([]models.Service, error) {

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND active = ?", providerID, true).
		Order("name ASC").
		Find(&services).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return services, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *SchedulingGormRepository) GetWeeklyAvailability(
	ctx context.Context,
	providerID uint,
	weekday int,
) (*models.ProviderAvailability, error) {

	var wh models.ProviderAvailability
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND weekday = ?", providerID, weekday).
		First(&wh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorage(err)
	}
	return &wh, nil
}

func (r *SchedulingGormRepository) GetAvailabilityException(
	ctx context.Context,
	providerID uint,
	date string,
) (*models.AvailabilityException, error) {

	var ex models.AvailabilityException
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND date = ?", providerID, date).
		First(&ex).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorage(err)
	}
	return &ex, nil
}

func (r *SchedulingGormRepository) ListWeeklyAvailability(
	ctx context.Context,
	providerID uint,
) ([]models.ProviderAvailability, error) {

	var rows []models.ProviderAvailability
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("weekday ASC").
		Find(&rows).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return rows, nil
}

func (r *SchedulingGormRepository) ReplaceWeeklyAvailability(
	ctx context.Context,
	providerID uint,
	rows []models.ProviderAvailability,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("provider_id = ?", providerID).
			Delete(&models.ProviderAvailability{}).Error; err != nil {
			return wrapStorage(err)
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].ProviderID = providerID
			if err := tx.Create(&rows[i]).Error; err != nil {
				return wrapStorage(err)
			}
		}
		return nil
	})
	return err
}

func (r *SchedulingGormRepository) ListAvailabilityExceptions(
	ctx context.Context,
	providerID uint,
	fromDate string,
	toDate string,
) ([]models.AvailabilityException, error) {

	q := r.db.WithContext(ctx).Where("provider_id = ?", providerID)
	if fromDate != "" {
		q = q.Where("date >= ?", fromDate)
	}
	if toDate != "" {
		q = q.Where("date <= ?", toDate)
	}

	var rows []models.AvailabilityException
	if err := q.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return rows, nil
}

func (r *SchedulingGormRepository) UpsertAvailabilityException(
	ctx context.Context,
	ex *models.AvailabilityException,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("provider_id = ? AND date = ?", ex.ProviderID, ex.Date).
			Delete(&models.AvailabilityException{}).Error; err != nil {
			return wrapStorage(err)
		}
		ex.ID = 0
		if err := tx.Create(ex).Error; err != nil {
			return wrapStorage(err)
		}
		return nil
	})
	return err
}

func (r *SchedulingGormRepository) DeleteAvailabilityException(
	ctx context.Context,
	providerID uint,
	date string,
) error {

	res := r.db.WithContext(ctx).
		Where("provider_id = ? AND date = ?", providerID, date).
		Delete(&models.AvailabilityException{})
	if res.Error != nil {
		return wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Appointments (read)
// --------------------------------------------------

func (r *SchedulingGormRepository) ListActiveAppointments(
	ctx context.Context,
	providerID uint,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"provider_id = ? AND status IN ? AND start_time < ? AND start_time > ?",
			providerID, domain.ActiveStatuses(), to, from,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return apps, nil
}

func (r *SchedulingGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	providerID uint,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where(
			"provider_id = ? AND start_time >= ? AND start_time < ?",
			providerID, from, to,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return apps, nil
}

func (r *SchedulingGormRepository) GetAppointmentByID(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &ap, nil
}

// --------------------------------------------------
// Reservation (the conflict guard's storage layer)
// --------------------------------------------------

// ReserveAppointment commits a reservation in a single transaction:
// the provider's active rows around the candidate are locked and the
// overlap predicate re-validated against them before the write. Updates
// are additionally guarded by the caller's expected version.
func (r *SchedulingGormRepository) ReserveAppointment(
	ctx context.Context,
	in domain.ReserveInput,
) error {

	ap := in.Appointment
	blocked := domain.BlockedInterval(ap)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		q := tx.
			Where(
				"provider_id = ? AND status IN ? AND start_time < ? AND start_time > ?",
				ap.ProviderID,
				domain.ActiveStatuses(),
				blocked.End.Add(reserveScanPad),
				blocked.Start.Add(-reserveScanPad),
			)
		if in.ExcludeID != 0 {
			q = q.Where("id <> ?", in.ExcludeID)
		}
		// FOR UPDATE is a Postgres-ism; SQLite serializes writers on its own.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var rows []models.Appointment
		if err := q.Find(&rows).Error; err != nil {
			return wrapStorage(err)
		}

		if domain.HasConflict(blocked, rows, in.ExcludeID) {
			return &domain.ConflictError{
				ProviderID: ap.ProviderID,
				Requested:  domain.CoreInterval(ap),
			}
		}

		if in.ExpectedVersion == 0 {
			ap.Version = 1
			if err := tx.Create(ap).Error; err != nil {
				return wrapStorage(err)
			}
			if in.Guest != nil {
				in.Guest.AppointmentID = ap.ID
				if err := tx.Create(in.Guest).Error; err != nil {
					return wrapStorage(err)
				}
				ap.GuestBookingID = &in.Guest.ID
				if err := tx.Model(&models.Appointment{}).
					Where("id = ?", ap.ID).
					Update("guest_booking_id", in.Guest.ID).Error; err != nil {
					return wrapStorage(err)
				}
			}
			return nil
		}

		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND version = ?", ap.ID, in.ExpectedVersion).
			Updates(map[string]any{
				"start_time":        ap.StartTime,
				"duration_min":      ap.DurationMin,
				"buffer_before_min": ap.BufferBeforeMin,
				"buffer_after_min":  ap.BufferAfterMin,
				"version":           gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return wrapStorage(res.Error)
		}
		if res.RowsAffected == 0 {
			return staleOrMissing(tx, ap.ID)
		}

		ap.Version = in.ExpectedVersion + 1
		return nil
	})

	return err
}

func (r *SchedulingGormRepository) UpdateAppointmentVersioned(
	ctx context.Context,
	ap *models.Appointment,
	expectedVersion int64,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND version = ?", ap.ID, expectedVersion).
		Updates(map[string]any{
			"status":        ap.Status,
			"cancel_reason": ap.CancelReason,
			"cancelled_at":  ap.CancelledAt,
			"completed_at":  ap.CompletedAt,
			"no_show_at":    ap.NoShowAt,
			"version":       gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return staleOrMissing(r.db.WithContext(ctx), ap.ID)
	}

	ap.Version = expectedVersion + 1
	return nil
}

// staleOrMissing tells a vanished row apart from a concurrent mutation.
func staleOrMissing(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Appointment{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return wrapStorage(err)
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrStaleVersion
}

// --------------------------------------------------
// Guest bookings
// --------------------------------------------------

func (r *SchedulingGormRepository) GetGuestBookingByID(
	ctx context.Context,
	id uint,
) (*models.GuestBooking, error) {

	var gb models.GuestBooking
	if err := r.db.WithContext(ctx).First(&gb, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &gb, nil
}

func (r *SchedulingGormRepository) GetGuestBookingByCode(
	ctx context.Context,
	code string,
) (*models.GuestBooking, error) {

	var gb models.GuestBooking
	if err := r.db.WithContext(ctx).
		Where("confirmation_code = ?", code).
		First(&gb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &gb, nil
}

// ConvertGuestBooking is one-way and idempotent: converting an already
// converted booking returns the prior conversion unchanged.
func (r *SchedulingGormRepository) ConvertGuestBooking(
	ctx context.Context,
	guestBookingID uint,
	userID uint,
) (*models.GuestBooking, error) {

	var out *models.GuestBooking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gb models.GuestBooking
		q := tx.Where("id = ?", guestBookingID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&gb).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return wrapStorage(err)
		}

		if gb.Converted() {
			out = &gb
			return nil
		}

		now := time.Now().UTC()
		gb.ConvertedToUserID = &userID
		gb.ConvertedToAppointmentID = &gb.AppointmentID
		gb.ConvertedAt = &now

		if err := tx.Model(&models.GuestBooking{}).
			Where("id = ?", gb.ID).
			Updates(map[string]any{
				"converted_to_user_id":        gb.ConvertedToUserID,
				"converted_to_appointment_id": gb.ConvertedToAppointmentID,
				"converted_at":                gb.ConvertedAt,
			}).Error; err != nil {
			return wrapStorage(err)
		}

		// The appointment now belongs to the account; bump its version so
		// concurrent writers holding the old one fail.
		if err := tx.Model(&models.Appointment{}).
			Where("id = ?", gb.AppointmentID).
			Updates(map[string]any{
				"client_id": userID,
				"version":   gorm.Expr("version + 1"),
			}).Error; err != nil {
			return wrapStorage(err)
		}

		out = &gb
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Compile-time check
var _ domain.Repository = (*SchedulingGormRepository)(nil)
