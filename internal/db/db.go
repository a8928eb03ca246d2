package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wizmedik/booking-api/internal/config"
	"github.com/wizmedik/booking-api/internal/models"
)

// noOverlap makes Postgres reject overlapping blocking appointments of one
// provider even if two transactions slip past the application check.
const noOverlap = `
DO $$
BEGIN
    CREATE EXTENSION IF NOT EXISTS btree_gist;
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap'
    ) THEN
        ALTER TABLE appointments
            ADD CONSTRAINT appointments_no_overlap
            EXCLUDE USING gist (
                provider_id WITH =,
                tstzrange(start_time, end_time, '[)') WITH &&
            ) WHERE (status IN ('scheduled', 'completed'));
    END IF;
END
$$;`

func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Provider{},
		&models.User{},
		&models.MedicalService{},
		&models.WorkingHours{},
		&models.ScheduleBreak{},
		&models.Holiday{},
		&models.Patient{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Managed databases may forbid extensions; the locked insert still
	// guards against double booking then.
	if err := db.Exec(noOverlap).Error; err != nil {
		log.Warn("overlap constraint not installed", zap.Error(err))
	}

	if err := db.Exec(`
        UPDATE providers
        SET timezone = ?
        WHERE timezone IS NULL OR timezone = ''
    `, cfg.DefaultTimezone).Error; err != nil {
		log.Warn("timezone backfill failed", zap.Error(err))
	}

	return db, nil
}
