package appointment

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/wizmedik/booking-api/internal/audit"
	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/models"
)

type fakeRepo struct {
	providers    []models.Provider
	services     []models.MedicalService
	patients     []models.Patient
	appointments []models.Appointment

	// raceBooking is inserted just before CreateAppointment checks for
	// conflicts, simulating a concurrent booking.
	raceBooking *models.Appointment
	nextID      uint
}

func (r *fakeRepo) GetProviderByID(_ context.Context, id uint) (*models.Provider, error) {
	for i := range r.providers {
		if r.providers[i].ID == id {
			p := r.providers[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetProviderBySlug(_ context.Context, slug string) (*models.Provider, error) {
	for i := range r.providers {
		if r.providers[i].Slug == slug {
			p := r.providers[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetService(_ context.Context, providerID, serviceID uint) (*models.MedicalService, error) {
	for i := range r.services {
		if r.services[i].ID == serviceID && r.services[i].ProviderID == providerID {
			s := r.services[i]
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetOrCreatePatient(_ context.Context, providerID uint, name, phone, email string) (*models.Patient, error) {
	for i := range r.patients {
		if r.patients[i].ProviderID == providerID && r.patients[i].Phone == phone {
			p := r.patients[i]
			return &p, nil
		}
	}
	r.nextID++
	p := models.Patient{ID: r.nextID, ProviderID: providerID, Name: name, Phone: phone, Email: email}
	r.patients = append(r.patients, p)
	return &p, nil
}

func (r *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	if r.raceBooking != nil {
		r.appointments = append(r.appointments, *r.raceBooking)
		r.raceBooking = nil
	}
	for _, other := range r.appointments {
		if other.ProviderID == ap.ProviderID && blocking(other) &&
			other.StartTime.Before(ap.EndTime) && ap.StartTime.Before(other.EndTime) {
			return httperr.ErrBusiness("time_conflict")
		}
	}
	r.nextID++
	ap.ID = r.nextID
	r.appointments = append(r.appointments, *ap)
	return nil
}

func (r *fakeRepo) GetAppointmentForProvider(_ context.Context, appointmentID, providerID uint) (*models.Appointment, error) {
	for i := range r.appointments {
		if r.appointments[i].ID == appointmentID && r.appointments[i].ProviderID == providerID {
			ap := r.appointments[i]
			return &ap, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	for i := range r.appointments {
		if r.appointments[i].ID == ap.ID {
			r.appointments[i] = *ap
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListBookedForPeriod(_ context.Context, providerID uint, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.ProviderID == providerID && blocking(ap) &&
			ap.StartTime.Before(end) && start.Before(ap.EndTime) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAppointmentsForPeriod(_ context.Context, providerID uint, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.ProviderID == providerID && !ap.StartTime.Before(start) && ap.StartTime.Before(end) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func blocking(ap models.Appointment) bool {
	for _, s := range domain.BlockingStatuses {
		if ap.Status == s {
			return true
		}
	}
	return false
}

type fakeSchedules struct {
	rows *domain.ScheduleRows
	err  error
}

func (f fakeSchedules) LoadSchedule(context.Context, uint) (*domain.ScheduleRows, error) {
	return f.rows, f.err
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}
