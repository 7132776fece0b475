package main

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavky/ManHourCalendar/internal/calendar"
	"github.com/wavky/ManHourCalendar/internal/config"
	"github.com/wavky/ManHourCalendar/internal/manhour"
	"github.com/wavky/ManHourCalendar/internal/store"
)

func TestParseInts(t *testing.T) {
	got, err := parseInts([]string{"6", "-9", "22"})
	require.NoError(t, err)
	assert.Equal(t, []int{6, -9, 22}, got)

	_, err = parseInts([]string{"6", "x"})
	assert.Error(t, err)
}

func TestParseDecimals(t *testing.T) {
	got, err := parseDecimals([]string{"140", "7.5"})
	require.NoError(t, err)
	assert.Equal(t, "7.5", got[1].String())

	_, err = parseDecimals([]string{"1,5"})
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	got := formatDate(time.Date(2017, 9, 1, 0, 0, 0, 0, time.UTC))
	if got != "2017.9.1 Friday" {
		t.Errorf("formatDate() = %q, want %q", got, "2017.9.1 Friday")
	}
}

func TestExplain(t *testing.T) {
	assert.NoError(t, explain(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, explain(plain))

	for _, err := range []error{manhour.ErrJobNotSet, manhour.ErrMonthCompleted, store.ErrLocked} {
		got := explain(err)
		assert.ErrorIs(t, got, err)
		assert.NotEqual(t, err.Error(), got.Error())
	}
}

func TestInitializeProvider(t *testing.T) {
	cache, err := store.NewFileStore(filepath.Join(t.TempDir(), "schedule.json"), nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     config.CalendarConfig
		check   func(t *testing.T, p calendar.Provider)
		wantErr bool
	}{
		{
			name:  "none",
			cfg:   config.CalendarConfig{Type: config.CalendarNone},
			check: func(t *testing.T, p calendar.Provider) { assert.Nil(t, p) },
		},
		{
			name: "file",
			cfg:  config.CalendarConfig{Type: config.CalendarFile, FallbackFile: "holidays.txt"},
			check: func(t *testing.T, p calendar.Provider) {
				assert.IsType(t, &calendar.FileProvider{}, p)
			},
		},
		{
			name: "api with fallback",
			cfg:  config.CalendarConfig{Type: config.HolidaysJP, FallbackFile: "holidays.txt"},
			check: func(t *testing.T, p calendar.Provider) {
				assert.IsType(t, &calendar.CachedProvider{}, p)
			},
		},
		{
			name:    "unknown",
			cfg:     config.CalendarConfig{Type: "google"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := initializeProvider(&config.Config{Calendar: tt.cfg}, cache)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}
