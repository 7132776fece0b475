package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wavky/ManHourCalendar/internal/calendar"
	"github.com/wavky/ManHourCalendar/internal/manhour"
	"go.uber.org/zap"
)

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryInterval  = 50 * time.Millisecond
	// a lock file older than this is left over from a crashed run
	staleLockAge = 10 * time.Minute
)

// FileStore keeps the schedule in a JSON file and the holiday cache in a sibling file
type FileStore struct {
	path         string
	holidaysPath string
	lockTimeout  time.Duration
	logger       *zap.Logger
	mu           sync.Mutex
}

// holidayFile is the on-disk holiday cache, keyed by year
type holidayFile struct {
	Years map[int]holidayYear `json:"years"`
}

type holidayYear struct {
	FetchedAt time.Time          `json:"fetched_at"`
	Holidays  []calendar.Holiday `json:"holidays"`
}

// NewFileStore creates a new FileStore; the directory of path is created when missing
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FileStore{
		path:         path,
		holidaysPath: path + ".holidays",
		lockTimeout:  defaultLockTimeout,
		logger:       logger,
	}, nil
}

// Load restores the saved schedule
func (fs *FileStore) Load(_ context.Context) (*manhour.Schedule, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.load()
}

func (fs *FileStore) load() (*manhour.Schedule, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			// created on first save
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}

	s := decodeSnapshot(data, fs.logger.With(zap.String("file", fs.path)))
	if s != nil {
		s.SetLogger(fs.logger)
	}
	return s, nil
}

// Save writes the schedule
func (fs *FileStore) Save(_ context.Context, s *manhour.Schedule) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.save(s)
}

func (fs *FileStore) save(s *manhour.Schedule) error {
	data, err := encodeSnapshot(s, time.Now())
	if err != nil {
		return err
	}

	if err := writeFileAtomic(fs.path, data); err != nil {
		return fmt.Errorf("failed to write schedule file: %w", err)
	}

	fs.logger.Debug("Schedule saved", zap.String("file", fs.path))
	return nil
}

// Update holds the lock file for the whole read-modify-write cycle
func (fs *FileStore) Update(ctx context.Context, fn UpdateFunc) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	unlock, err := fs.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := fs.load()
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

	return fs.save(next)
}

// lock creates <path>.lock exclusively, waiting for another holder until the timeout
func (fs *FileStore) lock(ctx context.Context) (func(), error) {
	lockPath := fs.path + ".lock"

	ctx, cancel := context.WithTimeout(ctx, fs.lockTimeout)
	defer cancel()

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() {
				if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
					fs.logger.Warn("Failed to remove lock file", zap.String("file", lockPath), zap.Error(err))
				}
			}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > staleLockAge {
			fs.logger.Warn("Removing stale lock file",
				zap.String("file", lockPath),
				zap.Time("modified", info.ModTime()))
			os.Remove(lockPath)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
		case <-time.After(lockRetryInterval):
		}
	}
}

// LoadHolidays returns the cached holidays of a year
func (fs *FileStore) LoadHolidays(_ context.Context, year int) ([]calendar.Holiday, time.Time, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, err := fs.readHolidays()
	if err != nil {
		return nil, time.Time{}, err
	}

	entry, ok := file.Years[year]
	if !ok {
		return nil, time.Time{}, nil
	}
	if entry.Holidays == nil {
		entry.Holidays = []calendar.Holiday{}
	}
	return entry.Holidays, entry.FetchedAt, nil
}

// SaveHolidays replaces the cached holidays of a year
func (fs *FileStore) SaveHolidays(_ context.Context, year int, holidays []calendar.Holiday, fetchedAt time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, err := fs.readHolidays()
	if err != nil {
		fs.logger.Warn("Discarding unreadable holiday cache", zap.Error(err))
		file = &holidayFile{Years: make(map[int]holidayYear)}
	}

	file.Years[year] = holidayYear{FetchedAt: fetchedAt.UTC(), Holidays: holidays}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal holidays: %w", err)
	}
	if err := writeFileAtomic(fs.holidaysPath, data); err != nil {
		return fmt.Errorf("failed to write holiday cache: %w", err)
	}
	return nil
}

func (fs *FileStore) readHolidays() (*holidayFile, error) {
	file := &holidayFile{Years: make(map[int]holidayYear)}

	data, err := os.ReadFile(fs.holidaysPath)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return nil, fmt.Errorf("failed to read holiday cache: %w", err)
	}

	if err := json.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse holiday cache: %w", err)
	}
	if file.Years == nil {
		file.Years = make(map[int]holidayYear)
	}
	return file, nil
}

// Close is a no-op for files
func (fs *FileStore) Close() error {
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it over path
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

var _ Store = (*FileStore)(nil)
