package availability

// GenerateWindow lists every start time on day where a slot of duration
// minutes fits entirely inside the day's working interval. A closed day yields
// an empty slice.
func GenerateWindow(day Date, hours WorkingHours, duration int) []TimeOfDay {
	if duration <= 0 {
		return nil
	}

	iv, ok := hours[day.Weekday()]
	if !ok {
		return []TimeOfDay{}
	}

	out := make([]TimeOfDay, 0, iv.Minutes()/duration)
	for t := iv.Start; t.Add(duration) <= iv.End; t = t.Add(duration) {
		out = append(out, t)
	}
	return out
}

// Horizon returns days consecutive dates starting at from.
func Horizon(from Date, days int) []Date {
	if days <= 0 {
		return nil
	}
	out := make([]Date, days)
	for i := range out {
		out[i] = from.AddDays(i)
	}
	return out
}
