package appointment

import (
	"context"
	"slices"

	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/domain/availability"
	"github.com/wizmedik/booking-api/internal/models"
	"github.com/wizmedik/booking-api/internal/timezone"
)

type AvailabilityResult struct {
	Provider    *models.Provider  `json:"-"`
	Date        string            `json:"date"`
	Days        int               `json:"days"`
	DurationMin int               `json:"duration_min"`
	Slots       []domain.TimeSlot `json:"slots"`
}

type GetAvailability struct {
	loader snapshotLoader
}

func NewGetAvailability(
	repo domain.Repository,
	schedules domain.ScheduleSource,
	clock timezone.Clock,
) *GetAvailability {
	return &GetAvailability{loader: snapshotLoader{repo: repo, schedules: schedules, clock: clock}}
}

// Execute returns the bookable slots. An empty Slots list means the provider
// is fully booked or closed; a malformed schedule is an
// *availability.InvalidConfigurationError instead.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (*AvailabilityResult, error) {

	p, err := uc.loader.provider(ctx, 0, in.ProviderSlug)
	if err != nil {
		return nil, err
	}

	duration, _, err := uc.loader.duration(ctx, p, in.ServiceID)
	if err != nil {
		return nil, err
	}

	days := in.Days
	if days == 0 {
		days = 1
	}
	if days < 0 || days > availability.MaxHorizonDays {
		return nil, &availability.InvalidRequestError{Field: "days", Reason: "out of range"}
	}

	snap, err := uc.loader.load(ctx, p, in.Date, days, duration)
	if err != nil {
		return nil, err
	}

	slots, err := availability.ComputeRange(snap.request, days)
	if err != nil {
		return nil, err
	}

	// Days before today are not filtered by the engine's clock rule.
	cutoff := snap.request.Now.Add(snap.request.LeadTime)
	slots = slices.DeleteFunc(slots, func(s availability.Slot) bool {
		return !s.Start(snap.loc).After(cutoff)
	})

	return &AvailabilityResult{
		Provider:    p,
		Date:        snap.request.SelectedDate,
		Days:        days,
		DurationMin: duration,
		Slots:       toTimeSlots(slots, duration),
	}, nil
}
