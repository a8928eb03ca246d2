package availability

import "time"

// FilterOccupied drops candidates that overlap a booked appointment. Booked
// slots may have any duration and arrive in any order; one long booking can
// remove several candidates.
//
// Candidates skipped by a daylight saving jump in loc are dropped.
//
// When day is today in loc, candidates that do not start strictly after
// now+lead are dropped as well.
func FilterOccupied(
	day Date,
	loc *time.Location,
	candidates []TimeOfDay,
	duration int,
	booked []BookedSlot,
	now time.Time,
	lead time.Duration,
) []TimeOfDay {
	slotLen := time.Duration(duration) * time.Minute

	isToday := !now.IsZero() && DateOf(now.In(loc)) == day
	cutoff := now.Add(lead)

	out := make([]TimeOfDay, 0, len(candidates))
	for _, t := range candidates {
		if !day.Exists(t, loc) {
			continue
		}
		start := day.At(t, loc)
		end := start.Add(slotLen)

		if isToday && !start.After(cutoff) {
			continue
		}
		if occupied(start, end, booked) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func occupied(start, end time.Time, booked []BookedSlot) bool {
	for _, b := range booked {
		if start.Before(b.End()) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
