package util

import (
	"testing"
	"time"
)

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		year      int
		month     int
		wantStart string
		wantEnd   string
	}{
		{2024, 3, "2024-03-01", "2024-03-31"},
		{2024, 2, "2024-02-01", "2024-02-29"}, // leap year
		{2023, 2, "2023-02-01", "2023-02-28"},
		{2024, 4, "2024-04-01", "2024-04-30"},
		{2024, 12, "2024-12-01", "2024-12-31"}, // year boundary
	}

	for _, tt := range tests {
		start, end := MonthBounds(tt.year, tt.month)
		if got := start.Format(DateLayout); got != tt.wantStart {
			t.Errorf("MonthBounds(%d, %d) start = %s, want %s", tt.year, tt.month, got, tt.wantStart)
		}
		if got := end.Format(DateLayout); got != tt.wantEnd {
			t.Errorf("MonthBounds(%d, %d) end = %s, want %s", tt.year, tt.month, got, tt.wantEnd)
		}
	}
}

func TestYearBounds(t *testing.T) {
	start, end := YearBounds(2024)
	if start.Format(DateLayout) != "2024-01-01" {
		t.Errorf("YearBounds start = %s, want 2024-01-01", start.Format(DateLayout))
	}
	if end.Format(DateLayout) != "2024-12-31" {
		t.Errorf("YearBounds end = %s, want 2024-12-31", end.Format(DateLayout))
	}
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	in := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	got := DateOf(in)
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf(%v) = %v, want %v", in, got, want)
	}
}

func TestCurrentPeriod(t *testing.T) {
	month, year := CurrentPeriod(time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC))
	if month != 11 || year != 2025 {
		t.Errorf("CurrentPeriod = (%d, %d), want (11, 2025)", month, year)
	}
}

func TestIsValidMonth(t *testing.T) {
	tests := []struct {
		month int
		want  bool
	}{
		{0, false},
		{1, true},
		{12, true},
		{13, false},
		{-1, false},
	}

	for _, tt := range tests {
		if got := IsValidMonth(tt.month); got != tt.want {
			t.Errorf("IsValidMonth(%d) = %v, want %v", tt.month, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("ParseDate returned %v", got)
	}

	if _, err := ParseDate("15/03/2024"); err == nil {
		t.Error("Expected error for non-ISO date, got nil")
	}
}
