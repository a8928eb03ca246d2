package availability

import "time"

// MaxHorizonDays bounds ComputeRange.
const MaxHorizonDays = 62

// Validate rejects malformed input. It runs before any filtering so a broken
// schedule is never reported as "fully booked".
func Validate(req Request) error {
	if _, err := ParseDate(req.SelectedDate); err != nil {
		return requestErr("selected_date", "cannot parse %q", req.SelectedDate)
	}
	if req.SlotDurationMinutes <= 0 {
		return requestErr("slot_duration_minutes", "must be positive, got %d", req.SlotDurationMinutes)
	}
	if req.LeadTime < 0 {
		return requestErr("lead_time", "must not be negative, got %s", req.LeadTime)
	}

	for wd, iv := range req.WorkingHours {
		if wd < time.Sunday || wd > time.Saturday {
			return configErr("working_hours", "unknown weekday %d", int(wd))
		}
		if err := validInterval("working_hours."+wd.String(), iv); err != nil {
			return err
		}
	}

	for i, b := range req.Breaks {
		if b.Weekday != nil && b.Date != nil {
			return configErr("breaks", "break %d has both a weekday and a date", i)
		}
		if b.Weekday != nil && (*b.Weekday < time.Sunday || *b.Weekday > time.Saturday) {
			return configErr("breaks", "break %d has unknown weekday %d", i, int(*b.Weekday))
		}
		if err := validInterval("breaks", b.Interval); err != nil {
			return err
		}
	}

	for i, h := range req.Holidays {
		if h.Start.IsZero() || h.End.IsZero() {
			return configErr("holidays", "holiday %d is missing a date", i)
		}
		if h.End.Before(h.Start) {
			return configErr("holidays", "holiday %d ends %s before it starts %s", i, h.End, h.Start)
		}
	}

	for i, b := range req.Booked {
		if b.DurationMinutes <= 0 {
			return configErr("booked_slots", "booked slot %d has duration %d", i, b.DurationMinutes)
		}
	}

	return nil
}

func validInterval(field string, iv Interval) error {
	if !iv.Start.Valid() || !iv.End.Valid() {
		return configErr(field, "time of day out of range (%d..%d)", int(iv.Start), int(iv.End))
	}
	if iv.Start >= iv.End {
		return configErr(field, "start %s is not before end %s", iv.Start, iv.End)
	}
	return nil
}

// Compute returns the bookable slots of req.SelectedDate in ascending order.
// An empty result is a normal answer; errors are only returned for malformed
// input.
func Compute(req Request) ([]Slot, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	day, _ := ParseDate(req.SelectedDate)
	return computeDay(req, day), nil
}

// ComputeRange runs Compute for days consecutive dates starting at
// req.SelectedDate and concatenates the results.
func ComputeRange(req Request, days int) ([]Slot, error) {
	if days <= 0 || days > MaxHorizonDays {
		return nil, requestErr("days", "must be between 1 and %d, got %d", MaxHorizonDays, days)
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	from, _ := ParseDate(req.SelectedDate)
	out := []Slot{}
	for _, day := range Horizon(from, days) {
		out = append(out, computeDay(req, day)...)
	}
	return out, nil
}

// Next returns up to limit slots of req.SelectedDate starting strictly after
// after, in ascending order.
func Next(req Request, after TimeOfDay, limit int) ([]Slot, error) {
	slots, err := Compute(req)
	if err != nil {
		return nil, err
	}

	out := []Slot{}
	for _, s := range slots {
		if limit > 0 && len(out) == limit {
			break
		}
		if s.Time > after {
			out = append(out, s)
		}
	}
	return out, nil
}

func computeDay(req Request, day Date) []Slot {
	loc := req.location()
	d := req.SlotDurationMinutes

	candidates := GenerateWindow(day, req.WorkingHours, d)
	candidates = FilterExceptions(day, candidates, d, req.Breaks, req.Holidays)
	candidates = FilterOccupied(day, loc, candidates, d, req.Booked, req.Now, req.LeadTime)

	out := make([]Slot, len(candidates))
	for i, t := range candidates {
		out[i] = Slot{Date: day, Time: t}
	}
	return out
}
