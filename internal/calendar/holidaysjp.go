package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultHolidaysJPURL is the holidays-jp API, {year} is replaced by the requested year
const DefaultHolidaysJPURL = "https://holidays-jp.github.io/api/v1/{year}/date.json"

// HolidaysJPProvider implements Provider using the holidays-jp JSON API
type HolidaysJPProvider struct {
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHolidaysJPProvider creates a new HolidaysJPProvider instance
func NewHolidaysJPProvider(apiURL string, timeout time.Duration, logger *zap.Logger) *HolidaysJPProvider {
	if apiURL == "" {
		apiURL = DefaultHolidaysJPURL
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HolidaysJPProvider{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Holidays fetches the holidays of a year
func (p *HolidaysJPProvider) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	url := strings.ReplaceAll(p.apiURL, "{year}", fmt.Sprint(year))

	p.logger.Debug("Fetching holidays from holidays-jp",
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

	// {"2017-09-18": "敬老の日", ...}
	var dates map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&dates); err != nil {
		return nil, fmt.Errorf("%w: failed to parse API response: %v", ErrUnavailable, err)
	}

	holidays := make([]Holiday, 0, len(dates))
	for dateStr, name := range dates {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			p.logger.Warn("Failed to parse date",
				zap.String("date", dateStr),
				zap.Error(err))
			continue
		}
		if date.Year() != year {
			continue
		}
		holidays = append(holidays, newHoliday(date, name))
	}

	SortHolidays(holidays)

	p.logger.Info("Holidays fetched from API",
		zap.Int("year", year),
		zap.Int("holidays", len(holidays)))

	return holidays, nil
}

// newHoliday fills the weekday columns the CSV source carries
func newHoliday(date time.Time, name string) Holiday {
	return Holiday{
		Year:          date.Year(),
		Month:         int(date.Month()),
		Day:           date.Day(),
		Name:          name,
		Weekday:       date.Weekday().String()[:3],
		WeekdayNumber: int(date.Weekday()),
	}
}
