package manhour

import (
	"fmt"
	"time"

	"github.com/wavky/ManHourCalendar/internal/calendar"
	"github.com/wavky/ManHourCalendar/pkg/dateutil"
)

// Month owns the days of one calendar month.
//
// Days is the single store of Day records, indexed by day of month minus one.
// Weeks is a view over that store: each row holds days of month per weekday
// position (Monday first), 0 marking padding outside the month.
type Month struct {
	Year     int                `json:"year"`
	Month    time.Month         `json:"month"`
	Days     []Day              `json:"days"`
	Holidays []calendar.Holiday `json:"holidays"`
	Weeks    [][7]int           `json:"weeks"`
}

// NewMonth builds the days of the month from the holidays of its year.
// A day is off when it is a holiday or falls on a weekend.
func NewMonth(year int, month time.Month, holidays []calendar.Holiday) (*Month, error) {
	if year < 1 || month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidMonth, year, int(month))
	}

	m := &Month{
		Year:     year,
		Month:    month,
		Holidays: calendar.FilterMonth(holidays, year, month),
	}
	m.initializeDays()
	m.Weeks = dateutil.MonthGrid(year, month)

	return m, nil
}

// initializeDays zips the dates of the month with its sorted holidays
func (m *Month) initializeDays() {
	dates := dateutil.MonthDates(m.Year, m.Month)
	m.Days = make([]Day, 0, len(dates))

	next := 0
	for _, date := range dates {
		var holiday *calendar.Holiday
		// skip entries that cannot match anymore (duplicates, bad days)
		for next < len(m.Holidays) && m.Holidays[next].Day < date.Day() {
			next++
		}
		if next < len(m.Holidays) && m.Holidays[next].Day == date.Day() {
			holiday = &m.Holidays[next]
			next++
		}

		dayoff := holiday != nil || dateutil.IsWeekend(date)
		m.Days = append(m.Days, NewDay(date, holiday, dayoff))
	}
}

// Len returns the number of days in the month
func (m *Month) Len() int {
	return len(m.Days)
}

// Day returns the day for the given day of month, or nil when out of range
func (m *Month) Day(dayOfMonth int) *Day {
	if dayOfMonth < 1 || dayOfMonth > len(m.Days) {
		return nil
	}
	return &m.Days[dayOfMonth-1]
}

// Dates returns every date of the month in ascending order
func (m *Month) Dates() []time.Time {
	dates := make([]time.Time, len(m.Days))
	for i := range m.Days {
		dates[i] = m.Days[i].Date
	}
	return dates
}

// On returns the day of the given date, or nil when the date is outside the month
func (m *Month) On(date time.Time) *Day {
	if date.Year() != m.Year || date.Month() != m.Month {
		return nil
	}
	return m.Day(date.Day())
}

// NextDay returns the first day not checked in yet, or nil when the month is completed
func (m *Month) NextDay() *Day {
	for i := range m.Days {
		if !m.Days[i].IsPast {
			return &m.Days[i]
		}
	}
	return nil
}

// Week returns the days of the i-th calendar row; padding positions are nil
func (m *Month) Week(i int) [7]*Day {
	var week [7]*Day
	if i < 0 || i >= len(m.Weeks) {
		return week
	}
	for pos, dayOfMonth := range m.Weeks[i] {
		week[pos] = m.Day(dayOfMonth)
	}
	return week
}

// RelinkHolidays points each holiday day back into the Holidays slice.
// Needed after decoding, which gives every Day its own copy.
func (m *Month) RelinkHolidays() {
	for i := range m.Days {
		day := &m.Days[i]
		if day.Holiday == nil {
			continue
		}
		for j := range m.Holidays {
			if m.Holidays[j].Day == day.Date.Day() {
				day.Holiday = &m.Holidays[j]
				break
			}
		}
	}
}

// Validate checks that the month is structurally sound
func (m *Month) Validate() error {
	if m.Year < 1 || m.Month < time.January || m.Month > time.December {
		return fmt.Errorf("%w: month %d-%d", ErrInvalidSchedule, m.Year, int(m.Month))
	}

	dates := dateutil.MonthDates(m.Year, m.Month)
	if len(m.Days) != len(dates) {
		return fmt.Errorf("%w: %d days, want %d", ErrInvalidSchedule, len(m.Days), len(dates))
	}

	for i, date := range dates {
		day := &m.Days[i]
		if !dateutil.IsSameDay(day.Date, date) {
			return fmt.Errorf("%w: day %d has date %s", ErrInvalidSchedule, i+1, day.Date.Format(dateutil.DateLayout))
		}
		if day.IsDayoff && !(day.ScheduledWorkHours.IsZero() && day.CheckinManhour.IsZero() && day.Overtime.IsZero()) {
			return fmt.Errorf("%w: day off %s carries hours", ErrInvalidSchedule, date.Format(dateutil.DateLayout))
		}
	}

	seen := make(map[int]bool, len(dates))
	for _, week := range m.Weeks {
		for _, dayOfMonth := range week {
			if dayOfMonth == 0 {
				continue
			}
			if dayOfMonth < 0 || dayOfMonth > len(dates) || seen[dayOfMonth] {
				return fmt.Errorf("%w: week grid references day %d", ErrInvalidSchedule, dayOfMonth)
			}
			seen[dayOfMonth] = true
		}
	}
	if len(seen) != len(dates) {
		return fmt.Errorf("%w: week grid covers %d days, want %d", ErrInvalidSchedule, len(seen), len(dates))
	}

	return nil
}

func (m *Month) String() string {
	return fmt.Sprintf("Month(%d, %d, %d days)", m.Year, int(m.Month), len(m.Days))
}
