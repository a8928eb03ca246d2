package appointment

import (
	"context"
	"time"

	"github.com/wizmedik/booking-api/internal/audit"
	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/models"
	"github.com/wizmedik/booking-api/internal/timezone"
)

// changeStatus loads an appointment of the provider, applies action and
// persists it. Cancel and complete differ only in action and audit name.
type changeStatus struct {
	repo   domain.Repository
	audit  Auditor
	clock  timezone.Clock
	action func(*models.Appointment, time.Time) error
	name   string
}

func (uc *changeStatus) execute(
	ctx context.Context,
	providerID uint,
	userID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	p, err := uc.repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentForProvider(ctx, appointmentID, providerID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	now := uc.clock.NowIn(p.Timezone)
	if err := uc.action(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProviderID: providerID,
		UserID:     &userID,
		Action:     uc.name,
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})

	return ap, nil
}

type CancelAppointment struct {
	changeStatus
}

func NewCancelAppointment(
	repo domain.Repository,
	clock timezone.Clock,
	auditor Auditor,
) *CancelAppointment {
	return &CancelAppointment{changeStatus{
		repo:   repo,
		audit:  auditor,
		clock:  clock,
		action: domain.Cancel,
		name:   "appointment_cancelled",
	}}
}

func (uc *CancelAppointment) Execute(ctx context.Context, providerID, userID, appointmentID uint) (*models.Appointment, error) {
	return uc.execute(ctx, providerID, userID, appointmentID)
}

type CompleteAppointment struct {
	changeStatus
}

func NewCompleteAppointment(
	repo domain.Repository,
	clock timezone.Clock,
	auditor Auditor,
) *CompleteAppointment {
	return &CompleteAppointment{changeStatus{
		repo:   repo,
		audit:  auditor,
		clock:  clock,
		action: domain.Complete,
		name:   "appointment_completed",
	}}
}

func (uc *CompleteAppointment) Execute(ctx context.Context, providerID, userID, appointmentID uint) (*models.Appointment, error) {
	return uc.execute(ctx, providerID, userID, appointmentID)
}
