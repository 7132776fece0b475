// Package store persists the working schedule and the fetched holiday lists between runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wavky/ManHourCalendar/internal/calendar"
	"github.com/wavky/ManHourCalendar/internal/manhour"
	"go.uber.org/zap"
)

// SnapshotVersion is written into every saved snapshot
const SnapshotVersion = 1

// ErrLocked is returned when another process holds the store for writing
var ErrLocked = errors.New("store is locked by another process")

// UpdateFunc receives the restored schedule (nil when there is none) and returns the schedule to persist.
// Returning an error aborts the update and nothing is written.
// It runs while the store is held and must not call back into the store, holiday cache included.
type UpdateFunc func(s *manhour.Schedule) (*manhour.Schedule, error)

// Store persists a single schedule and the holiday cache
type Store interface {
	calendar.HolidayCache

	// Load restores the saved schedule; nil when nothing valid is saved
	Load(ctx context.Context) (*manhour.Schedule, error)
	// Save replaces the saved schedule
	Save(ctx context.Context, s *manhour.Schedule) error
	// Update runs a read-modify-write cycle that excludes other writers
	Update(ctx context.Context, fn UpdateFunc) error
	Close() error
}

// Snapshot is the persisted envelope around a schedule
type Snapshot struct {
	Version  int               `json:"version"`
	SavedAt  time.Time         `json:"saved_at"`
	Schedule *manhour.Schedule `json:"schedule"`
}

func encodeSnapshot(s *manhour.Schedule, savedAt time.Time) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil schedule")
	}
	data, err := json.MarshalIndent(Snapshot{
		Version:  SnapshotVersion,
		SavedAt:  savedAt.UTC(),
		Schedule: s,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// decodeSnapshot restores a schedule; an unreadable or inconsistent snapshot is reported and treated as missing
func decodeSnapshot(data []byte, logger *zap.Logger) *manhour.Schedule {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Warn("Ignoring unreadable snapshot", zap.Error(err))
		return nil
	}

	if snap.Version != SnapshotVersion {
		logger.Warn("Ignoring snapshot of unknown version",
			zap.Int("version", snap.Version),
			zap.Int("expected", SnapshotVersion))
		return nil
	}

	if snap.Schedule == nil {
		logger.Warn("Ignoring empty snapshot")
		return nil
	}

	if snap.Schedule.Month != nil {
		snap.Schedule.Month.RelinkHolidays()
	}

	if err := snap.Schedule.Validate(); err != nil {
		logger.Warn("Ignoring invalid snapshot", zap.Error(err))
		return nil
	}

	logger.Debug("Snapshot restored",
		zap.Time("saved_at", snap.SavedAt),
		zap.Bool("has_job", snap.Schedule.Job != nil),
		zap.Bool("has_month", snap.Schedule.Month != nil))

	return snap.Schedule
}
