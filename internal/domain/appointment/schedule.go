package appointment

import (
	"fmt"
	"time"

	"github.com/wizmedik/booking-api/internal/domain/availability"
	"github.com/wizmedik/booking-api/internal/models"
)

// ScheduleRows is the stored form of a provider schedule. It is what the
// schedule cache keeps.
type ScheduleRows struct {
	WorkingHours []models.WorkingHours  `json:"working_hours"`
	Breaks       []models.ScheduleBreak `json:"breaks"`
	Holidays     []models.Holiday       `json:"holidays"`
}

// Schedule is the engine-ready form of ScheduleRows.
type Schedule struct {
	WorkingHours availability.WorkingHours
	Breaks       []availability.Break
	Holidays     []availability.Holiday
}

// BuildSchedule converts stored rows. Inactive weekdays are closed, a lunch
// pause becomes a break on its weekday. Malformed rows are reported as
// *availability.InvalidConfigurationError; nothing is silently dropped.
func BuildSchedule(rows *ScheduleRows) (*Schedule, error) {
	s := &Schedule{WorkingHours: availability.WorkingHours{}}
	if rows == nil {
		return s, nil
	}

	for _, wh := range rows.WorkingHours {
		if !wh.Active {
			continue
		}

		wd, err := weekday(wh.Weekday)
		if err != nil {
			return nil, err
		}
		if _, dup := s.WorkingHours[wd]; dup {
			return nil, invalidRow("working_hours", "weekday %s configured twice", wd)
		}

		iv, err := interval("working_hours", wh.StartTime, wh.EndTime)
		if err != nil {
			return nil, err
		}
		s.WorkingHours[wd] = iv

		if wh.LunchStart == "" && wh.LunchEnd == "" {
			continue
		}
		lunch, err := interval("lunch", wh.LunchStart, wh.LunchEnd)
		if err != nil {
			return nil, err
		}
		s.Breaks = append(s.Breaks, availability.Break{Weekday: &wd, Interval: lunch})
	}

	for _, b := range rows.Breaks {
		iv, err := interval("breaks", b.StartTime, b.EndTime)
		if err != nil {
			return nil, err
		}
		br := availability.Break{Interval: iv}

		if b.Weekday != nil {
			wd, err := weekday(*b.Weekday)
			if err != nil {
				return nil, err
			}
			br.Weekday = &wd
		}
		if b.Date != nil {
			d, err := availability.ParseDate(*b.Date)
			if err != nil {
				return nil, invalidRow("breaks", "invalid date %q", *b.Date)
			}
			br.Date = &d
		}
		s.Breaks = append(s.Breaks, br)
	}

	for _, h := range rows.Holidays {
		start, err := availability.ParseDate(h.StartDate)
		if err != nil {
			return nil, invalidRow("holidays", "invalid start date %q", h.StartDate)
		}
		end, err := availability.ParseDate(h.EndDate)
		if err != nil {
			return nil, invalidRow("holidays", "invalid end date %q", h.EndDate)
		}
		s.Holidays = append(s.Holidays, availability.Holiday{Start: start, End: end})
	}

	return s, nil
}

// BookedSlots converts stored appointments into the engine snapshot.
func BookedSlots(aps []models.Appointment) []availability.BookedSlot {
	out := make([]availability.BookedSlot, 0, len(aps))
	for _, ap := range aps {
		out = append(out, availability.BookedSlot{
			Start:           ap.StartTime,
			DurationMinutes: ap.DurationMinutes(),
		})
	}
	return out
}

func weekday(v int) (time.Weekday, error) {
	if v < int(time.Sunday) || v > int(time.Saturday) {
		return 0, invalidRow("weekday", "unknown weekday %d", v)
	}
	return time.Weekday(v), nil
}

func interval(field, start, end string) (availability.Interval, error) {
	s, err := availability.ParseTimeOfDay(start)
	if err != nil {
		return availability.Interval{}, invalidRow(field, "start: %v", err)
	}
	e, err := availability.ParseTimeOfDay(end)
	if err != nil {
		return availability.Interval{}, invalidRow(field, "end: %v", err)
	}
	if s >= e {
		return availability.Interval{}, invalidRow(field, "start %s is not before end %s", s, e)
	}
	return availability.Interval{Start: s, End: e}, nil
}

func invalidRow(field, format string, args ...any) error {
	return &availability.InvalidConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
