package appointment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wizmedik/booking-api/internal/audit"
	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/domain/availability"
	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/models"
	"github.com/wizmedik/booking-api/internal/timezone"
)

// Auditor is satisfied by *audit.Dispatcher.
type Auditor interface {
	Dispatch(ev audit.Event)
}

// snapshotLoader gathers everything the availability engine needs for one
// provider and date range. Shared by the availability and booking use cases
// so both judge a slot the same way.
type snapshotLoader struct {
	repo      domain.Repository
	schedules domain.ScheduleSource
	clock     timezone.Clock
}

type snapshot struct {
	provider *models.Provider
	loc      *time.Location
	request  availability.Request
}

func (l snapshotLoader) provider(ctx context.Context, id uint, slug string) (*models.Provider, error) {
	var (
		p   *models.Provider
		err error
	)
	if id != 0 {
		p, err = l.repo.GetProviderByID(ctx, id)
	} else {
		p, err = l.repo.GetProviderBySlug(ctx, slug)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness("provider_not_found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// duration resolves the slot length: the service's when one is chosen, the
// provider default otherwise.
func (l snapshotLoader) duration(ctx context.Context, p *models.Provider, serviceID uint) (int, *models.MedicalService, error) {
	if serviceID == 0 {
		if p.SlotDurationMin <= 0 {
			return 0, nil, &availability.InvalidConfigurationError{
				Field:  "slot_duration_min",
				Reason: "provider has no default slot length",
			}
		}
		return p.SlotDurationMin, nil, nil
	}

	svc, err := l.repo.GetService(ctx, p.ID, serviceID)
	if err != nil || !svc.Active {
		return 0, nil, httperr.ErrBusiness("service_not_found")
	}
	if svc.DurationMin <= 0 {
		return 0, nil, &availability.InvalidConfigurationError{
			Field:  "service.duration_min",
			Reason: "service has no duration",
		}
	}
	return svc.DurationMin, svc, nil
}

// load builds the engine request for days dates starting at date.
func (l snapshotLoader) load(
	ctx context.Context,
	p *models.Provider,
	date string,
	days int,
	duration int,
) (*snapshot, error) {

	day, err := availability.ParseDate(date)
	if err != nil {
		return nil, &availability.InvalidRequestError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if days <= 0 {
		days = 1
	}

	rows, err := l.schedules.LoadSchedule(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	schedule, err := domain.BuildSchedule(rows)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(p.Timezone)
	from := day.In(loc)
	to := day.AddDays(days).In(loc)

	booked, err := l.repo.ListBookedForPeriod(ctx, p.ID, from, to)
	if err != nil {
		return nil, err
	}

	lead := p.MinAdvanceMinutes
	if lead < 0 {
		lead = 0
	}

	return &snapshot{
		provider: p,
		loc:      loc,
		request: availability.Request{
			WorkingHours:        schedule.WorkingHours,
			Breaks:              schedule.Breaks,
			Holidays:            schedule.Holidays,
			Booked:              domain.BookedSlots(booked),
			SlotDurationMinutes: duration,
			SelectedDate:        day.String(),
			Location:            loc,
			Now:                 l.clock(),
			LeadTime:            time.Duration(lead) * time.Minute,
		},
	}, nil
}

func toTimeSlots(slots []availability.Slot, duration int) []domain.TimeSlot {
	out := make([]domain.TimeSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, domain.TimeSlot{
			Date:  s.Date.String(),
			Start: s.Time.String(),
			End:   s.Time.Add(duration).String(),
		})
	}
	return out
}
