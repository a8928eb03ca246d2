package availability

func IsHoliday(day Date, holidays []Holiday) bool {
	for _, h := range holidays {
		if h.Covers(day) {
			return true
		}
	}
	return false
}

// FilterExceptions drops candidates on holidays and candidates whose
// [t, t+duration) overlaps a break that applies to day. A slot that ends
// exactly when a break starts, or starts when it ends, is kept.
func FilterExceptions(day Date, candidates []TimeOfDay, duration int, breaks []Break, holidays []Holiday) []TimeOfDay {
	if IsHoliday(day, holidays) {
		return []TimeOfDay{}
	}

	var applicable []Interval
	for _, b := range breaks {
		if b.AppliesTo(day) {
			applicable = append(applicable, b.Interval)
		}
	}

	out := make([]TimeOfDay, 0, len(candidates))
	for _, t := range candidates {
		slot := Interval{Start: t, End: t.Add(duration)}
		if overlapsAny(slot, applicable) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func overlapsAny(slot Interval, blocked []Interval) bool {
	for _, b := range blocked {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}
