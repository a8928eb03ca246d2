package appointment

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wizmedik/booking-api/internal/audit"
	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/domain/availability"
	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/models"
	"github.com/wizmedik/booking-api/internal/timezone"
)

// alternativesLimit caps the slots offered after a conflict.
const alternativesLimit = 5

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	// ProviderID wins over ProviderSlug when both are set.
	ProviderID   uint
	ProviderSlug string

	// UserID is the acting staff member, nil for public bookings.
	UserID *uint

	PatientName  string
	PatientPhone string
	PatientEmail string

	Purpose domain.Purpose

	Date  string // YYYY-MM-DD
	Time  string // HH:MM
	Notes string
}

// SlotTakenError is returned when the chosen slot is no longer free. It
// carries the next free slots of the same day so the client can offer them
// without another round trip.
type SlotTakenError struct {
	Alternatives []domain.TimeSlot
}

func (e *SlotTakenError) Error() string {
	return "time_conflict"
}

func (e *SlotTakenError) Unwrap() error {
	return httperr.ErrBusiness("time_conflict")
}

// ======================================================
// USE CASE
// ======================================================

// CreateAppointment is the authoritative booking step. The availability shown
// to the patient may be stale; this use case re-runs the engine on a fresh
// snapshot and lets the repository's locked insert decide races.
type CreateAppointment struct {
	loader snapshotLoader
	audit  Auditor
}

func NewCreateAppointment(
	repo domain.Repository,
	schedules domain.ScheduleSource,
	clock timezone.Clock,
	auditor Auditor,
) *CreateAppointment {
	return &CreateAppointment{
		loader: snapshotLoader{repo: repo, schedules: schedules, clock: clock},
		audit:  auditor,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// Provider
	// --------------------------------------------------
	p, err := uc.loader.provider(ctx, in.ProviderID, in.ProviderSlug)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Purpose and patient data
	// --------------------------------------------------
	if in.Purpose == nil {
		return nil, httperr.ErrBusiness("invalid_purpose")
	}
	if err := in.Purpose.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.PatientName)
	phone := strings.TrimSpace(in.PatientPhone)
	if name == "" || phone == "" {
		return nil, httperr.ErrBusiness("invalid_patient")
	}

	var (
		serviceID uint
		reason    string
	)
	switch pp := in.Purpose.(type) {
	case domain.ServicePurpose:
		serviceID = pp.ServiceID
	case domain.OtherPurpose:
		reason = strings.TrimSpace(pp.Reason)
	}

	duration, svc, err := uc.loader.duration(ctx, p, serviceID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Date / time in the provider's timezone
	// --------------------------------------------------
	day, err := availability.ParseDate(in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	tod, err := availability.ParseTimeOfDay(in.Time)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// Fresh availability check
	// --------------------------------------------------
	snap, err := uc.loader.load(ctx, p, day.String(), 1, duration)
	if err != nil {
		return nil, err
	}
	start := day.At(tod, snap.loc)
	end := start.Add(time.Duration(duration) * time.Minute)

	// The engine only applies the clock to today; past days are refused here.
	if !start.After(snap.request.Now.Add(snap.request.LeadTime)) {
		return nil, httperr.ErrBusiness("too_soon")
	}
	if err := checkSlot(snap.request, tod); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Patient (get or create)
	// --------------------------------------------------
	patient, err := uc.loader.repo.GetOrCreatePatient(
		ctx,
		p.ID,
		name,
		phone,
		strings.ToLower(strings.TrimSpace(in.PatientEmail)),
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Locked insert
	// --------------------------------------------------
	ap := &models.Appointment{
		Reference:  uuid.NewString(),
		ProviderID: p.ID,
		PatientID:  patient.ID,
		Reason:     reason,
		StartTime:  start,
		EndTime:    end,
		Status:     string(domain.InitialStatus()),
		Notes:      strings.TrimSpace(in.Notes),
	}
	if svc != nil {
		ap.MedicalServiceID = &svc.ID
	}

	if err := uc.loader.repo.CreateAppointment(ctx, ap); err != nil {
		if httperr.IsBusiness(err, "time_conflict") || httperr.IsExclusionConflict(err) {
			uc.audit.Dispatch(audit.Event{
				ProviderID: p.ID,
				UserID:     in.UserID,
				Action:     "appointment_conflict",
				Entity:     "appointment",
				Metadata: map[string]any{
					"start": start,
					"end":   end,
				},
			})
			return nil, uc.slotTaken(ctx, p, day, tod, duration)
		}
		return nil, err
	}

	// --------------------------------------------------
	// Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		ProviderID: p.ID,
		UserID:     in.UserID,
		Action:     "appointment_created",
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})

	return ap, nil
}

// checkSlot tells apart a time off the provider's grid from a taken slot.
func checkSlot(req availability.Request, tod availability.TimeOfDay) error {
	free, err := availability.Compute(req)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(free, func(s availability.Slot) bool { return s.Time == tod }) {
		return nil
	}

	open := req
	open.Booked = nil
	open.Now = time.Time{}
	grid, err := availability.Compute(open)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(grid, func(s availability.Slot) bool { return s.Time == tod }) {
		return httperr.ErrBusiness("outside_working_hours")
	}

	return &SlotTakenError{Alternatives: alternatives(req, tod)}
}

func (uc *CreateAppointment) slotTaken(
	ctx context.Context,
	p *models.Provider,
	day availability.Date,
	tod availability.TimeOfDay,
	duration int,
) error {
	snap, err := uc.loader.load(ctx, p, day.String(), 1, duration)
	if err != nil {
		return &SlotTakenError{}
	}
	return &SlotTakenError{Alternatives: alternatives(snap.request, tod)}
}

func alternatives(req availability.Request, after availability.TimeOfDay) []domain.TimeSlot {
	next, err := availability.Next(req, after, alternativesLimit)
	if err != nil {
		return []domain.TimeSlot{}
	}
	return toTimeSlots(next, req.SlotDurationMinutes)
}
