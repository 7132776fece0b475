package timemanager

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wavky/ManHourCalendar/internal/manhour"
	"github.com/wavky/ManHourCalendar/pkg/dateutil"
	"go.uber.org/zap"
)

// CatchUpResult contains the days checked in by CatchUp
type CatchUpResult struct {
	Days     []manhour.Day
	Hours    decimal.Decimal
	Duration time.Duration
}

// CatchUp reschedules the remaining days with precision, then checks in, as scheduled,
// every unchecked day dated before today. A zero today means the current date.
func (m *Manager) CatchUp(ctx context.Context, today time.Time, precision decimal.Decimal) (*CatchUpResult, error) {
	start := time.Now()
	if today.IsZero() {
		today = m.Today()
	}
	today = dateutil.Date(today.Year(), today.Month(), today.Day())

	result := &CatchUpResult{Hours: decimal.Zero}

	err := m.update(ctx, func(s *manhour.Schedule) error {
		// the saved plan may predate a job change
		if err := s.Schedule(precision); err != nil {
			return err
		}

		for {
			day := s.Month.NextDay()
			if day == nil || !day.Date.Before(today) {
				break
			}

			day.Checkin(decimal.Zero, true)
			result.Days = append(result.Days, *day)
			result.Hours = result.Hours.Add(day.CheckinManhour)

			m.logger.Debug("Caught up day",
				zap.Time("date", day.Date),
				zap.String("hours", day.CheckinManhour.String()))
		}

		return s.Schedule(precision)
	})
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)

	m.logger.Info("Catch up completed",
		zap.Int("days", len(result.Days)),
		zap.String("hours", result.Hours.String()),
		zap.Duration("duration", result.Duration))

	return result, nil
}
