package timezone

import "time"

// DefaultTimezone applies to providers that never set one.
const DefaultTimezone = "Europe/Sarajevo"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolves tz, falling back to DefaultTimezone and then UTC.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// Clock is the injected source of "now". Use cases never call time.Now
// directly so availability results can be reproduced in tests.
type Clock func() time.Time

// SystemClock is the production clock.
func SystemClock() time.Time {
	return time.Now()
}

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// NowIn returns clock's time in tz.
func (c Clock) NowIn(tz string) time.Time {
	return c().In(Location(tz))
}
