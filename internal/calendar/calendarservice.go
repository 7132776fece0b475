package calendar

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/japanese"
)

const (
	// DefaultCalendarServiceURL serves one year of Japanese holidays as EUC-JP CSV
	DefaultCalendarServiceURL = "http://calendar-service.net/cal"
	defaultHTTPTimeout        = 10 * time.Second
)

// csvColumns is the number of columns in a calendar-service.net row:
// year,month,day,year_name,year_count,weekday,weekday_number,name
const csvColumns = 8

// CalendarServiceProvider implements Provider using the calendar-service.net CSV API
type CalendarServiceProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCalendarServiceProvider creates a new CalendarServiceProvider instance
func NewCalendarServiceProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *CalendarServiceProvider {
	if baseURL == "" {
		baseURL = DefaultCalendarServiceURL
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CalendarServiceProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Holidays fetches the holidays of a year
func (p *CalendarServiceProvider) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	url := fmt.Sprintf("%s?start_year=%d&start_mon=1&end_year=%d&end_mon=12"+
		"&year_style=normal&month_style=numeric&wday_style=en&format=csv&holiday_only=1",
		p.baseURL, year, year)

	p.logger.Debug("Fetching holidays from calendar-service.net",
		zap.String("url", url),
		zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch holidays: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d", ErrUnavailable, resp.StatusCode)
	}

	holidays, err := parseCalendarServiceCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrUnavailable, err)
	}

	SortHolidays(holidays)

	p.logger.Info("Holidays fetched from API",
		zap.Int("year", year),
		zap.Int("holidays", len(holidays)))

	return holidays, nil
}

// parseCalendarServiceCSV decodes the EUC-JP body and skips the header line
func parseCalendarServiceCSV(body io.Reader) ([]Holiday, error) {
	reader := csv.NewReader(japanese.EUCJP.NewDecoder().Reader(body))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty response")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	holidays := []Holiday{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < csvColumns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, csvColumns, len(record))
		}

		holiday, err := parseCalendarServiceRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		holidays = append(holidays, holiday)
	}

	return holidays, nil
}

func parseCalendarServiceRecord(record []string) (Holiday, error) {
	var ints [3]int
	for i := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(record[i]))
		if err != nil {
			return Holiday{}, fmt.Errorf("invalid date field %q: %w", record[i], err)
		}
		ints[i] = v
	}

	year, month, day := ints[0], ints[1], ints[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Holiday{}, fmt.Errorf("invalid date %d-%d-%d", year, month, day)
	}

	weekdayNumber, _ := strconv.Atoi(strings.TrimSpace(record[6]))

	return Holiday{
		Year:          year,
		Month:         month,
		Day:           day,
		YearName:      strings.TrimSpace(record[3]),
		YearCount:     strings.TrimSpace(record[4]),
		Weekday:       strings.TrimSpace(record[5]),
		WeekdayNumber: weekdayNumber,
		Name:          strings.TrimSpace(strings.Join(record[7:], ",")),
	}, nil
}
