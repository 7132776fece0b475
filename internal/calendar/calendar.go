package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUnavailable is returned when a provider cannot supply the holiday list
var ErrUnavailable = errors.New("holiday list unavailable")

// Holiday represents a single public holiday record
type Holiday struct {
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	Day           int    `json:"day"`
	Name          string `json:"name"`
	YearName      string `json:"year_name,omitempty"`
	YearCount     string `json:"year_count,omitempty"`
	Weekday       string `json:"weekday,omitempty"`
	WeekdayNumber int    `json:"weekday_number,omitempty"`
}

// Date returns the holiday date at midnight UTC
func (h Holiday) Date() time.Time {
	return time.Date(h.Year, time.Month(h.Month), h.Day, 0, 0, 0, 0, time.UTC)
}

func (h Holiday) String() string {
	return fmt.Sprintf("%d.%d.%d  %s", h.Year, h.Month, h.Day, h.Name)
}

// Provider supplies the holidays of a calendar year
type Provider interface {
	// Holidays returns the holidays of the year ordered by date
	Holidays(ctx context.Context, year int) ([]Holiday, error)
}

// FilterMonth returns the holidays falling into the given month, ordered by day
func FilterMonth(holidays []Holiday, year int, month time.Month) []Holiday {
	result := []Holiday{}
	for _, h := range holidays {
		if h.Year == year && h.Month == int(month) {
			result = append(result, h)
		}
	}
	SortHolidays(result)
	return result
}

// SortHolidays sorts holidays by date in place
func SortHolidays(holidays []Holiday) {
	sort.SliceStable(holidays, func(i, j int) bool {
		a, b := holidays[i], holidays[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Day < b.Day
	})
}
