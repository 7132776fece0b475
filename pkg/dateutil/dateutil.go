package dateutil

import (
	"fmt"
	"time"
)

// DateLayout is the canonical day format used in logs, files and keys
const DateLayout = "2006-01-02"

// Date returns the calendar date at midnight UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MondayIndex returns the weekday position counted from Monday (Monday=0 ... Sunday=6)
func MondayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// DaysInMonth returns the number of days of the month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthDates returns every date of the month in ascending order
func MonthDates(year int, month time.Month) []time.Time {
	n := DaysInMonth(year, month)
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = Date(year, month, i+1)
	}
	return dates
}

// MonthGrid returns the calendar rows of the month, Monday first.
// Each row holds the day of month per weekday position, 0 for positions outside the month.
func MonthGrid(year int, month time.Month) [][7]int {
	var grid [][7]int
	var week [7]int

	for _, date := range MonthDates(year, month) {
		pos := MondayIndex(date)
		week[pos] = date.Day()
		if pos == 6 {
			grid = append(grid, week)
			week = [7]int{}
		}
	}

	if week != [7]int{} {
		grid = append(grid, week)
	}

	return grid
}

// ParseDate parses date string in various formats
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		DateLayout,
		"2006/01/02",
		"2006/1/2",
		"02.01.2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %q", dateStr)
}
