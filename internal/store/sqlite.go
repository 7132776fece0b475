package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/wavky/ManHourCalendar/internal/calendar"
	"github.com/wavky/ManHourCalendar/internal/manhour"
	"go.uber.org/zap"
)

// scheduleID is the row holding the single working schedule
const scheduleID = 1

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore keeps the schedule and the holiday cache in a SQLite database
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewSQLiteStore opens the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// transactions take the write lock up front so Update excludes other processes
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schedules (
		id INTEGER PRIMARY KEY,
		version INTEGER NOT NULL,
		payload_json TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		day INTEGER NOT NULL,
		name TEXT NOT NULL,
		year_name TEXT NOT NULL DEFAULT '',
		year_count TEXT NOT NULL DEFAULT '',
		weekday TEXT NOT NULL DEFAULT '',
		weekday_number INTEGER NOT NULL DEFAULT 0,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (year, month, day)
	);

	-- a fetched year with no holidays still needs its fetch time
	CREATE TABLE IF NOT EXISTS holiday_years (
		year INTEGER PRIMARY KEY,
		fetched_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Load restores the saved schedule
func (s *SQLiteStore) Load(ctx context.Context) (*manhour.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(ctx, s.db)
}

func (s *SQLiteStore) load(ctx context.Context, q queryer) (*manhour.Schedule, error) {
	var payload string
	err := q.QueryRowContext(ctx,
		"SELECT payload_json FROM schedules WHERE id = ?",
		scheduleID,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	schedule := decodeSnapshot([]byte(payload), s.logger)
	if schedule != nil {
		schedule.SetLogger(s.logger)
	}
	return schedule, nil
}

// Save replaces the saved schedule
func (s *SQLiteStore) Save(ctx context.Context, schedule *manhour.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, s.db, schedule)
}

func (s *SQLiteStore) save(ctx context.Context, q queryer, schedule *manhour.Schedule) error {
	now := time.Now().UTC()
	payload, err := encodeSnapshot(schedule, now)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO schedules (id, version, payload_json, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			payload_json = excluded.payload_json,
			saved_at = excluded.saved_at
	`

	if _, err := q.ExecContext(ctx, query, scheduleID, SnapshotVersion, string(payload), now.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}

	s.logger.Debug("Schedule saved to database")
	return nil
}

// Update runs fn inside an immediate transaction
func (s *SQLiteStore) Update(ctx context.Context, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.load(ctx, tx)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	if err := s.save(ctx, tx, next); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadHolidays returns the cached holidays of a year
func (s *SQLiteStore) LoadHolidays(ctx context.Context, year int) ([]calendar.Holiday, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fetchedAtStr string
	err := s.db.QueryRowContext(ctx,
		"SELECT fetched_at FROM holiday_years WHERE year = ?",
		year,
	).Scan(&fetchedAtStr)

	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load holiday year: %w", err)
	}
	fetchedAt, _ := time.Parse(time.RFC3339, fetchedAtStr)

	rows, err := s.db.QueryContext(ctx,
		`SELECT year, month, day, name, year_name, year_count, weekday, weekday_number
		 FROM holidays WHERE year = ? ORDER BY month, day`,
		year,
	)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load holidays: %w", err)
	}
	defer rows.Close()

	holidays := []calendar.Holiday{}
	for rows.Next() {
		var h calendar.Holiday
		if err := rows.Scan(&h.Year, &h.Month, &h.Day, &h.Name, &h.YearName, &h.YearCount, &h.Weekday, &h.WeekdayNumber); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}

	return holidays, fetchedAt, nil
}

// SaveHolidays replaces the cached holidays of a year
func (s *SQLiteStore) SaveHolidays(ctx context.Context, year int, holidays []calendar.Holiday, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stamp := fetchedAt.UTC().Format(time.RFC3339)

	if _, err := tx.ExecContext(ctx, "DELETE FROM holidays WHERE year = ?", year); err != nil {
		return fmt.Errorf("failed to clear holidays: %w", err)
	}

	for _, h := range holidays {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO holidays (year, month, day, name, year_name, year_count, weekday, weekday_number, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(year, month, day) DO UPDATE SET
				name = excluded.name,
				fetched_at = excluded.fetched_at
		`, year, h.Month, h.Day, h.Name, h.YearName, h.YearCount, h.Weekday, h.WeekdayNumber, stamp)
		if err != nil {
			return fmt.Errorf("failed to save holiday %s: %w", h, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO holiday_years (year, fetched_at) VALUES (?, ?)
		ON CONFLICT(year) DO UPDATE SET fetched_at = excluded.fetched_at
	`, year, stamp)
	if err != nil {
		return fmt.Errorf("failed to save holiday year: %w", err)
	}

	return tx.Commit()
}

var _ Store = (*SQLiteStore)(nil)
