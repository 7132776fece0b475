package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wavky/ManHourCalendar/internal/timemanager"
	"github.com/wavky/ManHourCalendar/pkg/dateutil"
	"go.uber.org/zap"
)

// CatchUpper checks in the days before a date as scheduled
type CatchUpper interface {
	CatchUp(ctx context.Context, today time.Time, precision decimal.Decimal) (*timemanager.CatchUpResult, error)
}

// Daemon checks in the day as scheduled every day at a fixed time
type Daemon struct {
	manager     CatchUpper
	dailyHour   int // Hour to run the daily check in (0-23)
	dailyMinute int // Minute to run the daily check in (0-59)
	location    *time.Location
	tick        time.Duration
	now         func() time.Time
	logger      *zap.Logger
	precision   decimal.Decimal
	lastRunDate string     // Track last successful run date to avoid duplicates
	lastRunTime time.Time  // Track last successful run time
	mu          sync.Mutex // Serializes runs
}

// NewScheduledDaemon creates a new daemon instance with daily schedule
func NewScheduledDaemon(
	manager CatchUpper,
	dailyHour, dailyMinute int,
	precision decimal.Decimal,
	location *time.Location,
	logger *zap.Logger,
) *Daemon {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Daemon{
		manager:     manager,
		dailyHour:   dailyHour,
		dailyMinute: dailyMinute,
		precision:   precision,
		location:    location,
		tick:        time.Minute,
		now:         time.Now,
		logger:      logger,
	}
}

// Run blocks until ctx is done or SIGINT/SIGTERM is received
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.logger.Info("Daemon started",
		zap.Int("daily_hour", d.dailyHour),
		zap.Int("daily_minute", d.dailyMinute),
		zap.String("timezone", d.location.String()))

	// Check if we should run immediately (if scheduled time already passed today)
	now := d.now().In(d.location)
	if !now.Before(d.scheduledOn(now)) {
		d.logger.Info("Scheduled time already passed today, checking in now",
			zap.Time("current_time", now))
		if err := d.RunOnce(ctx); err != nil {
			d.logger.Error("Initial check in failed", zap.Error(err))
		}
	}

	d.logger.Info("Next check in scheduled", zap.Time("next_run", d.calculateNextRun()))

	// Check every tick if it's time to run
	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Daemon stopped")
			return nil

		case <-ticker.C:
			if !d.shouldRunAt(d.now()) {
				continue
			}
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error("Check in failed", zap.Error(err))
				continue
			}
			d.logger.Info("Next check in scheduled", zap.Time("next_run", d.calculateNextRun()))
		}
	}
}

// RunOnce checks in every unchecked day up to and including today.
// It does nothing when it already succeeded today; concurrent calls wait for each other.
func (d *Daemon) RunOnce(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now().In(d.location)
	today := dateutil.Date(now.Year(), now.Month(), now.Day())
	todayStr := today.Format(dateutil.DateLayout)
	if d.lastRunDate == todayStr {
		d.logger.Info("Already checked in today, skipping",
			zap.String("last_run_date", d.lastRunDate),
			zap.Time("last_run_time", d.lastRunTime))
		return nil
	}

	result, err := d.manager.CatchUp(ctx, today.AddDate(0, 0, 1), d.precision)
	if err != nil {
		return fmt.Errorf("failed to check in: %w", err)
	}

	d.logger.Info("Daily check in completed",
		zap.Time("date", today),
		zap.Int("days", len(result.Days)),
		zap.String("hours", result.Hours.String()))

	d.lastRunDate = todayStr
	d.lastRunTime = d.now()
	return nil
}

func (d *Daemon) scheduledOn(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), d.dailyHour, d.dailyMinute, 0, 0, d.location)
}

// calculateNextRun calculates the next scheduled run time
func (d *Daemon) calculateNextRun() time.Time {
	now := d.now().In(d.location)
	today := d.scheduledOn(now)

	// If target time already passed today, schedule for tomorrow
	if !now.Before(today) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

// shouldRunAt reports whether t falls on the scheduled minute
func (d *Daemon) shouldRunAt(t time.Time) bool {
	local := t.In(d.location)
	return local.Hour() == d.dailyHour && local.Minute() == d.dailyMinute
}
