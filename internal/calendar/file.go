package calendar

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileProvider implements Provider using a local text file.
//
// Format, one holiday per line:
//
//	# comment
//	2017-09-18 Respect for the Aged Day
type FileProvider struct {
	filePath string
	logger   *zap.Logger

	mu     sync.Mutex
	loaded bool
	data   map[int][]Holiday // year → holidays
}

// NewFileProvider creates a new FileProvider instance
func NewFileProvider(filePath string, logger *zap.Logger) *FileProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileProvider{
		filePath: filePath,
		logger:   logger,
		data:     make(map[int][]Holiday),
	}
}

// load reads the holiday file; the caller holds fp.mu
func (fp *FileProvider) load() error {
	file, err := os.Open(fp.filePath)
	if err != nil {
		return fmt.Errorf("failed to open holiday file: %w", err)
	}
	defer file.Close()

	data := make(map[int][]Holiday)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		dateStr, name, _ := strings.Cut(line, " ")

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			fp.logger.Warn("Failed to parse date", zap.String("date", dateStr), zap.Error(err))
			continue
		}

		data[date.Year()] = append(data[date.Year()], newHoliday(date, strings.TrimSpace(name)))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading holiday file: %w", err)
	}

	for year := range data {
		SortHolidays(data[year])
	}

	fp.data = data
	fp.loaded = true

	fp.logger.Info("Holiday file loaded",
		zap.String("file", fp.filePath),
		zap.Int("years", len(data)))

	return nil
}

// Holidays returns the holidays of a year; the file is read on first use
func (fp *FileProvider) Holidays(_ context.Context, year int) ([]Holiday, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if !fp.loaded {
		if err := fp.load(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	holidays, ok := fp.data[year]
	if !ok {
		return nil, fmt.Errorf("%w: year %d not found in %s", ErrUnavailable, year, fp.filePath)
	}

	return append([]Holiday(nil), holidays...), nil
}
