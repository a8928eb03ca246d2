// Package availability derives bookable appointment start times from a
// provider's weekly working hours, breaks, holidays and existing bookings.
//
// Every function in this package is pure: the current time is always passed
// in, nothing is read from a global clock and nothing is logged. The result is
// a best-effort filter for the booking UI. Whether a slot can really be taken
// is decided by the transactional create step, never here.
package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerDay = 24 * 60

	dateLayout = "2006-01-02"
)

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
// Valid values are 0..1440, where 1440 means end of day.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM", "HH:MM:SS" (seconds must be zero) and
// "24:00".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}

	if !digits(parts[0]) || len(parts[0]) > 2 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	h, _ := strconv.Atoi(parts[0])
	if !digits(parts[1]) || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	m, _ := strconv.Atoi(parts[1])
	if m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || !digits(parts[2]) || sec != 0 {
			return 0, fmt.Errorf("invalid seconds in %q", s)
		}
	}

	t := TimeOfDay(h*60 + m)
	if !t.Valid() {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MustParseTimeOfDay is ParseTimeOfDay for constants and tests.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= minutesPerDay
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Interval is the half-open range [Start, End).
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Overlaps reports whether two half-open intervals share at least one minute.
// Intervals that only touch (a.End == b.Start) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

func (i Interval) Contains(o Interval) bool {
	return o.Start >= i.Start && o.End <= i.End
}

func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

// Date is a calendar day without a time or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At returns the instant of tod on date d in loc.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, tod.Hour(), tod.Minute(), 0, 0, loc)
}

// Exists reports whether tod is a real wall-clock time on d in loc. Times
// skipped by a daylight saving jump do not exist.
func (d Date) Exists(tod TimeOfDay, loc *time.Location) bool {
	t := d.At(tod, loc)
	return DateOf(t) == d && t.Hour() == tod.Hour() && t.Minute() == tod.Minute()
}

func (d Date) Weekday() time.Weekday {
	return d.In(time.UTC).Weekday()
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.In(time.UTC).Before(o.In(time.UTC))
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return d.In(time.UTC).Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// WorkingHours is the recurring weekly template. A weekday that is absent is
// closed.
type WorkingHours map[time.Weekday]Interval

// Break removes time from working days. Weekday makes it recurring, Date makes
// it a one-off. With neither set the break applies to every day.
type Break struct {
	Weekday *time.Weekday `json:"weekday,omitempty"`
	Date    *Date         `json:"date,omitempty"`
	Interval
}

// AppliesTo reports whether the break is in effect on day.
func (b Break) AppliesTo(day Date) bool {
	switch {
	case b.Date != nil:
		return *b.Date == day
	case b.Weekday != nil:
		return *b.Weekday == day.Weekday()
	default:
		return true
	}
}

// Holiday closes every day from Start through End, both inclusive.
type Holiday struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

func (h Holiday) Covers(day Date) bool {
	return !day.Before(h.Start) && !day.After(h.End)
}

// BookedSlot is an existing appointment from the booking snapshot.
type BookedSlot struct {
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
}

func (b BookedSlot) End() time.Time {
	return b.Start.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// Request carries every input of one computation. Collections are read only.
type Request struct {
	WorkingHours        WorkingHours
	Breaks              []Break
	Holidays            []Holiday
	Booked              []BookedSlot
	SlotDurationMinutes int

	// SelectedDate is "YYYY-MM-DD" in the provider's location.
	SelectedDate string
	// Location defaults to UTC.
	Location *time.Location

	// Now is the injected wall clock. Only used when SelectedDate is today.
	Now      time.Time
	LeadTime time.Duration
}

func (r Request) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// Slot is one bookable start time.
type Slot struct {
	Date Date      `json:"date"`
	Time TimeOfDay `json:"time"`
}

// Start returns the instant the slot begins in loc.
func (s Slot) Start(loc *time.Location) time.Time {
	return s.Date.At(s.Time, loc)
}

func (s Slot) String() string {
	return s.Date.String() + " " + s.Time.String()
}
