package availability

import (
	"math/rand/v2"
	"reflect"
	"testing"
	"time"
)

// 2026-10-19 is a Monday.
const monday = "2026-10-19"

func mondayMorning() WorkingHours {
	return WorkingHours{
		time.Monday: {Start: MustParseTimeOfDay("09:00"), End: MustParseTimeOfDay("12:00")},
	}
}

func times(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Time.String()
	}
	return out
}

func at(date, hm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hm, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCompute_Scenarios(t *testing.T) {
	weekday := time.Monday
	lunch := Break{Weekday: &weekday, Interval: Interval{
		Start: MustParseTimeOfDay("10:00"),
		End:   MustParseTimeOfDay("11:00"),
	}}

	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "plain working hours",
			req: Request{
				WorkingHours:        mondayMorning(),
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
			},
			want: []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"},
		},
		{
			name: "break removes overlapping slots",
			req: Request{
				WorkingHours:        mondayMorning(),
				Breaks:              []Break{lunch},
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
			},
			want: []string{"09:00", "09:30", "11:00", "11:30"},
		},
		{
			name: "long booking consumes two slots",
			req: Request{
				WorkingHours:        mondayMorning(),
				Booked:              []BookedSlot{{Start: at(monday, "09:30"), DurationMinutes: 60}},
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
			},
			want: []string{"09:00", "10:30", "11:00", "11:30"},
		},
		{
			name: "holiday empties the day",
			req: Request{
				WorkingHours: mondayMorning(),
				Holidays: []Holiday{{
					Start: Date{2026, time.October, 18},
					End:   Date{2026, time.October, 20},
				}},
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
			},
			want: []string{},
		},
		{
			name: "today drops past slots",
			req: Request{
				WorkingHours:        mondayMorning(),
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
				Now:                 at(monday, "09:45"),
			},
			want: []string{"10:00", "10:30", "11:00", "11:30"},
		},
		{
			name: "closed weekday",
			req: Request{
				WorkingHours:        mondayMorning(),
				SlotDurationMinutes: 30,
				SelectedDate:        "2026-10-20",
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.req)
			if err != nil {
				t.Fatalf("Compute returned error: %v", err)
			}
			if !reflect.DeepEqual(times(got), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, times(got))
			}
		})
	}
}

func TestCompute_BookingScenarioMatchesHalfOpenOverlap(t *testing.T) {
	// A 60 minute booking at 09:30 covers [09:30,10:30): only 09:30 and 10:00
	// candidates overlap it.
	got, err := Compute(Request{
		WorkingHours:        mondayMorning(),
		Booked:              []BookedSlot{{Start: at(monday, "09:30"), DurationMinutes: 60}},
		SlotDurationMinutes: 30,
		SelectedDate:        monday,
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	for _, s := range got {
		if s.Time.String() == "09:30" || s.Time.String() == "10:00" {
			t.Fatalf("slot %s overlaps the booking", s)
		}
	}
}

func TestCompute_LeadTime(t *testing.T) {
	got, err := Compute(Request{
		WorkingHours:        mondayMorning(),
		SlotDurationMinutes: 30,
		SelectedDate:        monday,
		Now:                 at(monday, "09:00"),
		LeadTime:            time.Hour,
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	want := []string{"10:30", "11:00", "11:30"}
	if !reflect.DeepEqual(times(got), want) {
		t.Fatalf("expected %v, got %v", want, times(got))
	}
}

func TestCompute_NowOnAnotherDayIsIgnored(t *testing.T) {
	got, err := Compute(Request{
		WorkingHours:        mondayMorning(),
		SlotDurationMinutes: 30,
		SelectedDate:        monday,
		Now:                 at("2026-10-18", "23:00"),
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(got))
	}
}

func TestCompute_TodayUsesProviderLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	// 2026-10-20 01:00 UTC is still Monday 22:00 in UTC-3, so the
	// today-filter applies and removes every morning slot.
	now := time.Date(2026, time.October, 20, 1, 0, 0, 0, time.UTC)

	got, err := Compute(Request{
		WorkingHours:        mondayMorning(),
		SlotDurationMinutes: 30,
		SelectedDate:        monday,
		Location:            loc,
		Now:                 now,
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no slots, got %v", times(got))
	}
}

func TestCompute_FailsFastOnMalformedInput(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		wantConfig bool
	}{
		{
			name: "start after end",
			req: Request{
				WorkingHours: WorkingHours{
					time.Monday: {Start: MustParseTimeOfDay("10:00"), End: MustParseTimeOfDay("09:00")},
				},
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
			},
			wantConfig: true,
		},
		{
			name: "start equals end",
			req: Request{
				WorkingHours: WorkingHours{
					time.Monday: {Start: MustParseTimeOfDay("10:00"), End: MustParseTimeOfDay("10:00")},
				},
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
			},
			wantConfig: true,
		},
		{
			name: "invalid break",
			req: Request{
				WorkingHours: mondayMorning(),
				Breaks: []Break{{Interval: Interval{
					Start: MustParseTimeOfDay("11:00"),
					End:   MustParseTimeOfDay("10:00"),
				}}},
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
			},
			wantConfig: true,
		},
		{
			name: "inverted holiday",
			req: Request{
				WorkingHours: mondayMorning(),
				Holidays: []Holiday{{
					Start: Date{2026, time.October, 20},
					End:   Date{2026, time.October, 18},
				}},
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
			},
			wantConfig: true,
		},
		{
			name: "booked slot without duration",
			req: Request{
				WorkingHours:        mondayMorning(),
				Booked:              []BookedSlot{{Start: at(monday, "09:00")}},
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
			},
			wantConfig: true,
		},
		{
			name: "negative duration",
			req: Request{
				WorkingHours:        mondayMorning(),
				SlotDurationMinutes: -30,
				SelectedDate:        monday,
			},
		},
		{
			name: "zero duration",
			req: Request{
				WorkingHours: mondayMorning(),
				SelectedDate: monday,
			},
		},
		{
			name: "unparseable date",
			req: Request{
				WorkingHours:        mondayMorning(),
				SlotDurationMinutes: 30,
				SelectedDate:        "19/10/2026",
			},
		},
		{
			name: "negative lead time",
			req: Request{
				WorkingHours:        mondayMorning(),
				SlotDurationMinutes: 30,
				SelectedDate:        monday,
				LeadTime:            -time.Minute,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.req)
			if err == nil {
				t.Fatalf("expected error, got slots %v", times(got))
			}
			if got != nil {
				t.Fatalf("expected nil slots on error, got %v", got)
			}
			if IsInvalidConfiguration(err) != tt.wantConfig {
				t.Fatalf("IsInvalidConfiguration = %v for %v", !tt.wantConfig, err)
			}
			if IsInvalidRequest(err) == tt.wantConfig {
				t.Fatalf("IsInvalidRequest = %v for %v", tt.wantConfig, err)
			}
		})
	}
}

func TestComputeRange(t *testing.T) {
	hours := mondayMorning()
	hours[time.Tuesday] = Interval{Start: MustParseTimeOfDay("14:00"), End: MustParseTimeOfDay("15:00")}

	got, err := ComputeRange(Request{
		WorkingHours:        hours,
		SlotDurationMinutes: 30,
		SelectedDate:        monday,
	}, 8)
	if err != nil {
		t.Fatalf("ComputeRange returned error: %v", err)
	}

	want := []string{
		"2026-10-19 09:00", "2026-10-19 09:30", "2026-10-19 10:00",
		"2026-10-19 10:30", "2026-10-19 11:00", "2026-10-19 11:30",
		"2026-10-20 14:00", "2026-10-20 14:30",
		"2026-10-26 09:00", "2026-10-26 09:30", "2026-10-26 10:00",
		"2026-10-26 10:30", "2026-10-26 11:00", "2026-10-26 11:30",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if _, err := ComputeRange(Request{WorkingHours: hours, SlotDurationMinutes: 30, SelectedDate: monday}, 0); !IsInvalidRequest(err) {
		t.Fatalf("expected invalid request for zero days, got %v", err)
	}
}

func TestNext(t *testing.T) {
	got, err := Next(Request{
		WorkingHours:        mondayMorning(),
		SlotDurationMinutes: 30,
		SelectedDate:        monday,
	}, MustParseTimeOfDay("10:00"), 2)
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	want := []string{"10:30", "11:00"}
	if !reflect.DeepEqual(times(got), want) {
		t.Fatalf("expected %v, got %v", want, times(got))
	}
}

func TestCompute_Deterministic(t *testing.T) {
	req := Request{
		WorkingHours:        mondayMorning(),
		Booked:              []BookedSlot{{Start: at(monday, "11:00"), DurationMinutes: 15}},
		SlotDurationMinutes: 20,
		SelectedDate:        monday,
		Now:                 at(monday, "08:00"),
	}
	first, err := Compute(req)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := Compute(req)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, times(first), times(again))
		}
	}
}

// TestCompute_Properties checks containment, break/holiday exclusion, no
// double booking and ordering over generated schedules.
func TestCompute_Properties(t *testing.T) {
	day := Date{2026, time.October, 19}

	for seed := uint64(1); seed <= 300; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7919))

		start := TimeOfDay(rng.IntN(12*4) * 15)
		end := start + TimeOfDay(30+rng.IntN(10*4)*15)
		if end > minutesPerDay {
			end = minutesPerDay
		}
		hours := WorkingHours{time.Monday: {Start: start, End: end}}
		duration := 5 + rng.IntN(12)*5

		var breaks []Break
		for i := rng.IntN(3); i > 0; i-- {
			bs := start + TimeOfDay(rng.IntN(int(end-start)))
			breaks = append(breaks, Break{Interval: Interval{Start: bs, End: bs + TimeOfDay(1+rng.IntN(90))}})
		}

		var booked []BookedSlot
		for i := rng.IntN(5); i > 0; i-- {
			bs := start + TimeOfDay(rng.IntN(int(end-start)))
			booked = append(booked, BookedSlot{
				Start:           day.At(bs, time.UTC),
				DurationMinutes: 1 + rng.IntN(120),
			})
		}

		var holidays []Holiday
		if rng.IntN(10) == 0 {
			holidays = append(holidays, Holiday{Start: day, End: day})
		}

		req := Request{
			WorkingHours:        hours,
			Breaks:              breaks,
			Holidays:            holidays,
			Booked:              booked,
			SlotDurationMinutes: duration,
			SelectedDate:        day.String(),
		}

		got, err := Compute(req)
		if err != nil {
			t.Fatalf("seed %d: Compute returned error: %v", seed, err)
		}

		if len(holidays) > 0 && len(got) != 0 {
			t.Fatalf("seed %d: holiday produced slots %v", seed, times(got))
		}

		for i, s := range got {
			slot := Interval{Start: s.Time, End: s.Time.Add(duration)}
			if !hours[time.Monday].Contains(slot) {
				t.Fatalf("seed %d: slot %s outside working hours", seed, s)
			}
			for _, b := range breaks {
				if slot.Overlaps(b.Interval) {
					t.Fatalf("seed %d: slot %s overlaps break %v", seed, s, b.Interval)
				}
			}
			st := s.Start(time.UTC)
			en := st.Add(time.Duration(duration) * time.Minute)
			for _, b := range booked {
				if st.Before(b.End()) && b.Start.Before(en) {
					t.Fatalf("seed %d: slot %s overlaps booking at %s", seed, s, b.Start)
				}
			}
			if i > 0 && got[i-1].Time >= s.Time {
				t.Fatalf("seed %d: slots not strictly ascending at %d", seed, i)
			}
		}
	}
}
