package appointment

import (
	"context"
	"time"

	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/dto"
	"github.com/wizmedik/booking-api/internal/models"
	"github.com/wizmedik/booking-api/internal/timezone"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// ByDate lists the provider's appointments on date's calendar day in the
// provider's timezone.
func (uc *ListAppointments) ByDate(
	ctx context.Context,
	providerID uint,
	date time.Time,
) ([]dto.AppointmentListDTO, error) {

	p, err := uc.repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(p.Timezone)
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	return uc.list(ctx, providerID, start, end)
}

func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	providerID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	p, err := uc.repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(p.Timezone)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	return uc.list(ctx, providerID, start, end)
}

func (uc *ListAppointments) list(ctx context.Context, providerID uint, start, end time.Time) ([]dto.AppointmentListDTO, error) {
	appointments, err := uc.repo.ListAppointmentsForPeriod(ctx, providerID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, toListDTO(ap))
	}
	return out, nil
}

func toListDTO(ap models.Appointment) dto.AppointmentListDTO {
	d := dto.AppointmentListDTO{
		ID:          ap.ID,
		Reference:   ap.Reference,
		StartTime:   ap.StartTime,
		EndTime:     ap.EndTime,
		Status:      ap.Status,
		PatientName: ap.Patient.Name,
		Reason:      ap.Reason,
	}
	if ap.MedicalServiceID != nil {
		d.ServiceName = ap.MedicalService.Name
	}
	return d
}
