package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/chairtime/booking-engine/internal/config"
	"github.com/chairtime/booking-engine/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Provider{},
		&models.User{},
		&models.Service{},
		&models.ProviderAvailability{},
		&models.AvailabilityException{},
		&models.Appointment{},
		&models.GuestBooking{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	db.Exec(`
        UPDATE providers
        SET timezone = 'UTC'
        WHERE timezone IS NULL OR timezone = ''
    `)

	installExclusionConstraint(db)

	return db
}

// installExclusionConstraint adds the database-level overlap guard: two
// active appointments of one provider can never hold intersecting padded
// intervals, no matter what the application layer concluded. Requires
// btree_gist; a failure is logged and the transactional re-check remains
// the only guard.
func installExclusionConstraint(db *gorm.DB) {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		log.Println("btree_gist unavailable, skipping exclusion constraint:", err)
		return
	}

	err := db.Exec(`
        DO $$
        BEGIN
            IF NOT EXISTS (
                SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap'
            ) THEN
                ALTER TABLE appointments
                ADD CONSTRAINT appointments_no_overlap
                EXCLUDE USING gist (
                    provider_id WITH =,
                    tsrange(
                        start_time - make_interval(mins => buffer_before_min),
                        start_time + make_interval(mins => duration_min + buffer_after_min)
                    ) WITH &&
                )
                WHERE (status IN ('pending', 'confirmed'));
            END IF;
        END
        $$;
    `).Error
	if err != nil {
		log.Println("failed to install exclusion constraint:", err)
	}
}
