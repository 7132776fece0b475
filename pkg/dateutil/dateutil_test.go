package dateutil

import (
	"testing"
	"time"
)

func TestMondayIndex(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected int
	}{
		{"Monday", time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC), 0},
		{"Wednesday", time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), 2},
		{"Sunday", time.Date(2025, 1, 19, 12, 0, 0, 0, time.UTC), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := MondayIndex(tt.input); result != tt.expected {
				t.Errorf("MondayIndex(%v) = %d, want %d",
					tt.input.Format("2006-01-02 Mon"), result, tt.expected)
			}
		})
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  bool
	}{
		{"Saturday is weekend", time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC), true},
		{"Sunday is weekend", time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC), true},
		{"Monday is not weekend", time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), false},
		{"Friday is not weekend", time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsWeekend(tt.input)

			if result != tt.want {
				t.Errorf("IsWeekend(%v) = %v, want %v",
					tt.input.Format("2006-01-02 Mon"), result, tt.want)
			}
		})
	}
}

func TestIsSameDay(t *testing.T) {
	tests := []struct {
		name  string
		date1 time.Time
		date2 time.Time
		want  bool
	}{
		{
			"Same date different time",
			time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC),
			true,
		},
		{
			"Different date",
			time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsSameDay(tt.date1, tt.date2)

			if result != tt.want {
				t.Errorf("IsSameDay(%v, %v) = %v, want %v",
					tt.date1, tt.date2, result, tt.want)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{"September 2017", 2017, time.September, 30},
		{"February leap year", 2024, time.February, 29},
		{"February common year", 2025, time.February, 28},
		{"December", 2025, time.December, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysInMonth(tt.year, tt.month); got != tt.want {
				t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestMonthGrid(t *testing.T) {
	// September 2017 starts on Friday and ends on Saturday
	grid := MonthGrid(2017, time.September)

	if len(grid) != 5 {
		t.Fatalf("MonthGrid(2017, September) rows = %d, want 5", len(grid))
	}

	first := [7]int{0, 0, 0, 0, 1, 2, 3}
	if grid[0] != first {
		t.Errorf("first row = %v, want %v", grid[0], first)
	}

	last := [7]int{25, 26, 27, 28, 29, 30, 0}
	if grid[4] != last {
		t.Errorf("last row = %v, want %v", grid[4], last)
	}

	// every day appears exactly once
	seen := map[int]int{}
	for _, row := range grid {
		for _, d := range row {
			if d > 0 {
				seen[d]++
			}
		}
	}
	for d := 1; d <= 30; d++ {
		if seen[d] != 1 {
			t.Errorf("day %d appears %d times, want 1", d, seen[d])
		}
	}
}

func TestMonthGrid_EndsOnSunday(t *testing.T) {
	// February 2021 runs Monday 1st to Sunday 28th: exactly four full rows
	grid := MonthGrid(2021, time.February)

	if len(grid) != 4 {
		t.Fatalf("MonthGrid(2021, February) rows = %d, want 4", len(grid))
	}
	if grid[3][6] != 28 {
		t.Errorf("last cell = %d, want 28", grid[3][6])
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			"ISO format YYYY-MM-DD",
			"2025-01-15",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"Slash format",
			"2017/9/18",
			time.Date(2017, 9, 18, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"Dotted format DD.MM.YYYY",
			"15.01.2025",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"Garbage",
			"tomorrow",
			time.Time{},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDate(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && !result.Equal(tt.want) {
				t.Errorf("ParseDate(%v) = %v, want %v", tt.input, result, tt.want)
			}
		})
	}
}
