package timemanager

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wavky/ManHourCalendar/internal/calendar"
	"github.com/wavky/ManHourCalendar/internal/manhour"
	"github.com/wavky/ManHourCalendar/internal/render"
	"github.com/wavky/ManHourCalendar/internal/store"
	"github.com/wavky/ManHourCalendar/pkg/dateutil"
	"go.uber.org/zap"
)

// Manager restores the schedule, runs one engine operation on it and persists the result
type Manager struct {
	store    store.Store
	holidays calendar.Provider
	drawer   *render.Drawer
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewManager creates a new time manager; holidays may be nil to build months from weekends only
func NewManager(
	st store.Store,
	holidays calendar.Provider,
	drawer *render.Drawer,
	location *time.Location,
	logger *zap.Logger,
) *Manager {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    st,
		holidays: holidays,
		drawer:   drawer,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// Today returns the current date in the configured timezone
func (m *Manager) Today() time.Time {
	now := m.now().In(m.location)
	return dateutil.Date(now.Year(), now.Month(), now.Day())
}

// SetJob replaces the job. A max daily overtime exceeding the day is clamped and reported.
func (m *Manager) SetJob(ctx context.Context, required, daily, pay, maxOver decimal.Decimal) (*manhour.Job, *manhour.PolicyViolation, error) {
	job, violation, err := manhour.NewJob(required, daily, pay, maxOver)
	if err != nil {
		return nil, nil, err
	}

	if violation != nil {
		m.logger.Warn("Max daily overhours clamped",
			zap.String("requested", violation.RequestedOverhours.String()),
			zap.String("clamped", violation.ClampedOverhours.String()))
	}

	err = m.update(ctx, func(s *manhour.Schedule) error {
		s.Job = job
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	m.logger.Info("Job saved", zap.Stringer("job", job))
	return job, violation, nil
}

// Job returns the saved job
func (m *Manager) Job(ctx context.Context) (*manhour.Job, error) {
	s, err := m.restore(ctx)
	if err != nil {
		return nil, err
	}
	if s.Job == nil {
		return nil, manhour.ErrJobNotSet
	}
	return s.Job, nil
}

// SetMonth starts a new month, dropping the days of the previous one.
// A zero year selects the current month.
func (m *Manager) SetMonth(ctx context.Context, year int, month time.Month) (*manhour.Month, error) {
	if year == 0 {
		today := m.Today()
		year, month = today.Year(), today.Month()
	}

	mo, err := m.buildMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	err = m.update(ctx, func(s *manhour.Schedule) error {
		s.Month = mo
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Month saved",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("holidays", len(mo.Holidays)))
	return mo, nil
}

// Month returns the month being scheduled
func (m *Manager) Month(ctx context.Context) (*manhour.Month, error) {
	s, err := m.restore(ctx)
	if err != nil {
		return nil, err
	}
	if s.Month == nil {
		return nil, manhour.ErrMonthNotSet
	}
	return s.Month, nil
}

// Calendar reschedules the remaining days with the given precision, draws the calendar and persists
func (m *Manager) Calendar(ctx context.Context, precision decimal.Decimal) (*manhour.Schedule, error) {
	var result *manhour.Schedule

	err := m.update(ctx, func(s *manhour.Schedule) error {
		if err := s.Ready(); err != nil {
			return err
		}
		if err := s.Schedule(precision); err != nil {
			return err
		}
		result = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	if m.drawer != nil {
		if err := m.drawer.Draw(result); err != nil {
			return nil, fmt.Errorf("failed to draw calendar: %w", err)
		}
	}

	return result, nil
}

// Checkin checks in the next day; zero hours means as scheduled
func (m *Manager) Checkin(ctx context.Context, hours decimal.Decimal) (*manhour.Day, error) {
	if hours.IsNegative() {
		return nil, fmt.Errorf("checkin hours must not be negative, got %s", hours)
	}

	var checked manhour.Day

	err := m.update(ctx, func(s *manhour.Schedule) error {
		day, err := nextDay(s)
		if err != nil {
			return err
		}

		day.Checkin(hours, true)
		checked = *day
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Checked in",
		zap.Time("date", checked.Date),
		zap.String("hours", checked.CheckinManhour.String()),
		zap.String("overtime", checked.Overtime.String()))
	return &checked, nil
}

// Pointer returns the next day to check in
func (m *Manager) Pointer(ctx context.Context) (*manhour.Day, error) {
	s, err := m.restore(ctx)
	if err != nil {
		return nil, err
	}
	return nextDay(s)
}

// DayOff adjusts days off (positive) and on duty (negative) by day of month.
// Without dates the next day is put on duty.
func (m *Manager) DayOff(ctx context.Context, dates []int) error {
	err := m.update(ctx, func(s *manhour.Schedule) error {
		day, err := nextDay(s)
		if err != nil {
			return err
		}

		if len(dates) == 0 {
			dates = []int{-day.Date.Day()}
		}

		return s.Adjust(dates)
	})
	if err != nil {
		return err
	}

	m.logger.Info("Days adjusted", zap.Ints("dates", dates))
	return nil
}

// Holidays returns the holidays of a year from the provider; a zero year is the current one
func (m *Manager) Holidays(ctx context.Context, year int) ([]calendar.Holiday, error) {
	if year == 0 {
		year = m.Today().Year()
	}
	if m.holidays == nil {
		return nil, fmt.Errorf("%w: no holiday provider configured", calendar.ErrUnavailable)
	}
	return m.holidays.Holidays(ctx, year)
}

// restore loads the saved schedule, or an empty one for the current month
func (m *Manager) restore(ctx context.Context) (*manhour.Schedule, error) {
	s, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if s != nil {
		s.SetLogger(m.logger)
		return s, nil
	}
	return m.newSchedule(ctx)
}

// update runs fn on the restored schedule inside the store's write section.
// The holiday provider may be cached in the same store, so a fresh schedule is
// built before the write section is entered.
func (m *Manager) update(ctx context.Context, fn func(s *manhour.Schedule) error) error {
	saved, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}

	var fresh *manhour.Schedule
	if saved == nil {
		if fresh, err = m.newSchedule(ctx); err != nil {
			return err
		}
	}

	return m.store.Update(ctx, func(s *manhour.Schedule) (*manhour.Schedule, error) {
		if s == nil {
			if fresh == nil {
				// removed by another process after the load above
				return nil, fmt.Errorf("%w: schedule changed while updating, try again", store.ErrLocked)
			}
			s = fresh
		}
		s.SetLogger(m.logger)

		if err := fn(s); err != nil {
			return nil, err
		}
		return s, nil
	})
}

func (m *Manager) newSchedule(ctx context.Context) (*manhour.Schedule, error) {
	today := m.Today()
	mo, err := m.buildMonth(ctx, today.Year(), today.Month())
	if err != nil {
		return nil, err
	}

	m.logger.Debug("No saved schedule, starting with the current month",
		zap.Int("year", today.Year()),
		zap.Int("month", int(today.Month())))

	s := manhour.NewSchedule(nil, mo)
	s.SetLogger(m.logger)
	return s, nil
}

// buildMonth creates a month from the provider's holidays.
// When the provider fails the month is built from weekends only.
func (m *Manager) buildMonth(ctx context.Context, year int, month time.Month) (*manhour.Month, error) {
	var holidays []calendar.Holiday

	if m.holidays != nil {
		var err error
		holidays, err = m.holidays.Holidays(ctx, year)
		if err != nil {
			m.logger.Warn("Holidays unavailable, only weekends are days off",
				zap.Int("year", year),
				zap.Int("month", int(month)),
				zap.Error(err))
			holidays = nil
		}
	}

	return manhour.NewMonth(year, month, holidays)
}

// nextDay applies the guards shared by checkin, pointer and dayoff
func nextDay(s *manhour.Schedule) (*manhour.Day, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}
	day := s.Month.NextDay()
	if day == nil {
		return nil, manhour.ErrMonthCompleted
	}
	return day, nil
}
