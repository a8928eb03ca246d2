package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Provider
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProviderByID(
	ctx context.Context,
	id uint,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *AppointmentGormRepository) GetProviderBySlug(
	ctx context.Context,
	slug string,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	providerID uint,
	serviceID uint,
) (*models.MedicalService, error) {

	var svc models.MedicalService
	if err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", serviceID, providerID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Patient
// --------------------------------------------------

func (r *AppointmentGormRepository) GetOrCreatePatient(
	ctx context.Context,
	providerID uint,
	name string,
	phone string,
	email string,
) (*models.Patient, error) {

	var patient models.Patient
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND phone = ?", providerID, phone).
		First(&patient).Error

	if err == nil {
		return &patient, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	patient = models.Patient{
		ProviderID: providerID,
		Name:       name,
		Phone:      phone,
		Email:      email,
	}

	if err := r.db.WithContext(ctx).Create(&patient).Error; err != nil {
		return nil, err
	}

	return &patient, nil
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *AppointmentGormRepository) LoadSchedule(
	ctx context.Context,
	providerID uint,
) (*domain.ScheduleRows, error) {

	rows := &domain.ScheduleRows{}
	db := r.db.WithContext(ctx)

	if err := db.
		Where("provider_id = ?", providerID).
		Order("weekday ASC").
		Find(&rows.WorkingHours).Error; err != nil {
		return nil, err
	}

	if err := db.
		Where("provider_id = ?", providerID).
		Order("id ASC").
		Find(&rows.Breaks).Error; err != nil {
		return nil, err
	}

	if err := db.
		Where("provider_id = ?", providerID).
		Order("start_date ASC").
		Find(&rows.Holidays).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

// CreateAppointment locks the provider row so concurrent bookings for the
// same provider are serialized, then re-checks the overlap before inserting.
func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Provider
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&p, ap.ProviderID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.
			Model(&models.Appointment{}).
			Where(
				"provider_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
				ap.ProviderID,
				domain.BlockingStatuses,
				ap.EndTime,
				ap.StartTime,
			).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return httperr.ErrBusiness("time_conflict")
		}

		return tx.Create(ap).Error
	})
}

// --------------------------------------------------
// Appointment (Cancel / Complete)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointmentForProvider(
	ctx context.Context,
	appointmentID uint,
	providerID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", appointmentID, providerID).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).
		Model(ap).
		Select("status", "cancelled_at", "completed_at", "notes").
		Updates(ap).Error
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) ListBookedForPeriod(
	ctx context.Context,
	providerID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where(
			"provider_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			providerID, domain.BlockingStatuses, end, start,
		).
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	providerID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("MedicalService").
		Where(
			"provider_id = ? AND start_time >= ? AND start_time < ?",
			providerID,
			start,
			end,
		).
		Order("start_time ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

// Compile-time checks
var (
	_ domain.Repository     = (*AppointmentGormRepository)(nil)
	_ domain.ScheduleSource = (*AppointmentGormRepository)(nil)
)
