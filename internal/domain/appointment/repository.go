package appointment

import (
	"context"
	"time"

	"github.com/wizmedik/booking-api/internal/models"
)

// ScheduleSource loads the raw schedule rows of a provider. It is split from
// Repository so the rows can be served from a cache.
type ScheduleSource interface {
	LoadSchedule(
		ctx context.Context,
		providerID uint,
	) (*ScheduleRows, error)
}

type Repository interface {
	// -------- Provider --------
	GetProviderByID(
		ctx context.Context,
		id uint,
	) (*models.Provider, error)

	GetProviderBySlug(
		ctx context.Context,
		slug string,
	) (*models.Provider, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		providerID uint,
		serviceID uint,
	) (*models.MedicalService, error)

	// -------- Patient --------
	GetOrCreatePatient(
		ctx context.Context,
		providerID uint,
		name string,
		phone string,
		email string,
	) (*models.Patient, error)

	// -------- Appointment (create / conflict) --------

	// CreateAppointment inserts ap after checking, under a row lock, that no
	// blocking appointment overlaps it. A conflict is returned as
	// httperr.ErrBusiness("time_conflict").
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointmentForProvider(
		ctx context.Context,
		appointmentID uint,
		providerID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Availability --------

	// ListBookedForPeriod returns blocking appointments that overlap
	// [start, end), in no particular order.
	ListBookedForPeriod(
		ctx context.Context,
		providerID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- Listing --------
	ListAppointmentsForPeriod(
		ctx context.Context,
		providerID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
