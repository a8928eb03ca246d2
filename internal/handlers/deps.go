package handlers

import (
	"context"
	"time"

	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/dto"
	"github.com/wizmedik/booking-api/internal/infra/repository"
	"github.com/wizmedik/booking-api/internal/models"
	ucAppointment "github.com/wizmedik/booking-api/internal/usecase/appointment"
)

// The interfaces below are what handlers need from the use cases and the
// gorm repositories; tests substitute in-memory versions.

type AvailabilityQuery interface {
	Execute(ctx context.Context, in domain.AvailabilityInput) (*ucAppointment.AvailabilityResult, error)
}

type AppointmentCreator interface {
	Execute(ctx context.Context, in ucAppointment.CreateAppointmentInput) (*models.Appointment, error)
}

type AppointmentStatusChanger interface {
	Execute(ctx context.Context, providerID, userID, appointmentID uint) (*models.Appointment, error)
}

type AppointmentLister interface {
	ByDate(ctx context.Context, providerID uint, date time.Time) ([]dto.AppointmentListDTO, error)
	ByMonth(ctx context.Context, providerID uint, year, month int) ([]dto.AppointmentListDTO, error)
}

type ProviderDirectory interface {
	Search(ctx context.Context, f repository.ProviderFilter) ([]models.Provider, error)
	GetBySlug(ctx context.Context, slug string) (*models.Provider, error)
	ListServices(ctx context.Context, providerID uint) ([]models.MedicalService, error)
}

type ProviderProfiles interface {
	GetByID(ctx context.Context, id uint) (*models.Provider, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
}

type ServiceCatalog interface {
	ListAllServices(ctx context.Context, providerID uint) ([]models.MedicalService, error)
	CreateService(ctx context.Context, svc *models.MedicalService) error
	UpdateService(ctx context.Context, providerID, serviceID uint, fields map[string]any) (*models.MedicalService, error)
}

type ScheduleEditor interface {
	ReplaceWorkingHours(ctx context.Context, providerID uint, hours []models.WorkingHours) error
	CreateBreak(ctx context.Context, b *models.ScheduleBreak) error
	DeleteBreak(ctx context.Context, providerID, id uint) error
	CreateHoliday(ctx context.Context, h *models.Holiday) error
	DeleteHoliday(ctx context.Context, providerID, id uint) error
}

// ScheduleInvalidator drops cached schedules after an edit.
type ScheduleInvalidator interface {
	Invalidate(ctx context.Context, providerID uint)
}

type PatientDirectory interface {
	ListPatients(ctx context.Context, providerID uint, query string) ([]models.Patient, error)
}
