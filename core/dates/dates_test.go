package dates

import (
	"testing"
	"time"
)

func TestIsValidTargetDate(t *testing.T) {
	la := Location()
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, la)

	tests := []struct {
		name    string
		target  time.Time
		current time.Time
		want    bool
	}{
		{name: "null target", target: time.Time{}, current: now, want: true},
		{name: "today", target: now, current: now, want: true},
		{name: "today (earlier hour)", target: time.Date(2024, time.March, 15, 0, 0, 1, 0, la), current: now, want: true},
		{name: "yesterday", target: now.AddDate(0, 0, -1), current: now, want: false},
		{name: "tomorrow", target: now.AddDate(0, 0, 1), current: now, want: true},
		{name: "far past", target: now.AddDate(-1, 0, 0), current: now, want: false},
		{
			// 2024-03-15 06:00 UTC is still 2024-03-14 in Los Angeles (UTC-7 after DST)
			name: "UTC instant on previous local day", target: time.Date(2024, time.March, 15, 6, 0, 0, 0, time.UTC),
			current: now, want: false,
		},
		{
			// 07:30 UTC is 00:30 PDT: a fixed UTC-8 offset would wrongly call this the 14th
			name: "DST boundary", target: time.Date(2024, time.March, 15, 7, 30, 0, 0, time.UTC),
			current: now, want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTargetDate(tt.target, tt.current); got != tt.want {
				t.Errorf("IsValidTargetDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidTargetDate_defaultsToNow(t *testing.T) {
	if !IsValidTargetDate(time.Now(), time.Time{}) {
		t.Error("IsValidTargetDate(today) = false, want true")
	}
	if IsValidTargetDate(time.Now().AddDate(0, 0, -1), time.Time{}) {
		t.Error("IsValidTargetDate(yesterday) = true, want false")
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, time.November, 3, 23, 59, 0, 0, Location())
	got := StartOfDay(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Errorf("StartOfDay() = %v, want midnight", got)
	}
	if got.Day() != 3 || got.Month() != time.November || got.Year() != 2024 {
		t.Errorf("StartOfDay() = %v, want same date", got)
	}
	if got.Location() != Location() {
		t.Errorf("StartOfDay() location = %v, want %v", got.Location(), Location())
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		t      time.Time
		layout []string
		want   string
	}{
		{name: "zero", t: time.Time{}, want: ""},
		{name: "winter (PST)", t: time.Date(2024, time.January, 10, 5, 0, 0, 0, time.UTC), want: "Jan 9, 2024"},
		{name: "summer (PDT)", t: time.Date(2024, time.July, 10, 6, 30, 0, 0, time.UTC), want: "Jul 9, 2024"},
		{name: "summer after local midnight", t: time.Date(2024, time.July, 10, 7, 30, 0, 0, time.UTC), want: "Jul 10, 2024"},
		{name: "custom layout", t: time.Date(2024, time.July, 10, 19, 0, 0, 0, time.UTC), layout: []string{DayLayout}, want: "2024-07-10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.t, tt.layout...); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	la := Location()
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{name: "same day", a: time.Date(2024, 5, 1, 1, 0, 0, 0, la), b: time.Date(2024, 5, 1, 23, 0, 0, 0, la), want: 0},
		{name: "two weeks", a: time.Date(2024, 5, 1, 12, 0, 0, 0, la), b: time.Date(2024, 5, 15, 9, 0, 0, 0, la), want: 14},
		{name: "across spring forward", a: time.Date(2024, 3, 9, 12, 0, 0, 0, la), b: time.Date(2024, 3, 11, 12, 0, 0, 0, la), want: 2},
		{name: "backwards", a: time.Date(2024, 5, 15, 0, 0, 0, 0, la), b: time.Date(2024, 5, 1, 0, 0, 0, 0, la), want: -14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2026-01-23")
	if err != nil {
		t.Fatalf("ParseDay() failed: %v", err)
	}
	if got.Location() != Location() || got.Hour() != 0 || got.Day() != 23 {
		t.Errorf("ParseDay() = %v, want local midnight of the 23rd", got)
	}
	if _, err := ParseDay("invalid"); err == nil {
		t.Error("ParseDay(invalid) error = nil, want error")
	}
}
