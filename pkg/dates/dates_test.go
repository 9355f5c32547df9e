package dates

import (
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestAge(t *testing.T) {
	now := date(2025, 6, 15)

	tests := []struct {
		dob  string
		want int
	}{
		{"1990-06-15", 35}, // birthday today
		{"1990-06-16", 34}, // birthday tomorrow
		{"1990-06-14", 35},
		{"1990-12-01", 34}, // later month
		{"1990-01-01", 35},
	}
	for _, tt := range tests {
		got := Age(tt.dob, now)
		if got == nil {
			t.Fatalf("Age(%q) = nil", tt.dob)
		}
		if *got != tt.want {
			t.Errorf("Age(%q) = %d, want %d", tt.dob, *got, tt.want)
		}
	}
}

func TestAgeMissingOrMalformed(t *testing.T) {
	now := date(2025, 6, 15)
	if got := Age("", now); got != nil {
		t.Errorf("Age(\"\") = %v, want nil", *got)
	}
	if got := Age("not-a-date", now); got != nil {
		t.Errorf("Age(malformed) = %v, want nil", *got)
	}
}

func TestMonthsSince(t *testing.T) {
	now := date(2025, 7, 1)

	tests := []struct {
		date string
		want int
	}{
		{"2025-07-31", 0},  // same month, day ignored
		{"2025-06-01", 1},
		{"2025-01-15", 6},
		{"2024-12-31", 7},
		{"2024-07-01", 12},
	}
	for _, tt := range tests {
		if got := MonthsSince(tt.date, now); got != tt.want {
			t.Errorf("MonthsSince(%q) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-01-06", "2025-01-06"}, // Monday maps to itself
		{"2025-01-07", "2025-01-06"}, // Tuesday
		{"2025-01-11", "2025-01-06"}, // Saturday
		{"2025-01-12", "2025-01-06"}, // Sunday belongs to the preceding Monday
		{"2025-01-01", "2024-12-30"}, // week spans a year boundary
	}
	for _, tt := range tests {
		if got := WeekStart(tt.date); got != tt.want {
			t.Errorf("WeekStart(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestMonth(t *testing.T) {
	if got := Month("2025-02-10"); got != "2025-02" {
		t.Errorf("Month = %q, want 2025-02", got)
	}
}

func TestOneYearBefore(t *testing.T) {
	if got := OneYearBefore(date(2025, 3, 1)); got != "2024-03-01" {
		t.Errorf("OneYearBefore = %q, want 2024-03-01", got)
	}
}
