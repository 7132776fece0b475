package manhour

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plannedDay(scheduled, overtime string) *Day {
	day := NewDay(time.Date(2017, 9, 4, 0, 0, 0, 0, time.UTC), nil, false)
	day.ScheduledWorkHours = hours(scheduled)
	day.Overtime = hours(overtime)
	return &day
}

func TestDay_Checkin(t *testing.T) {
	tests := []struct {
		name         string
		scheduled    string
		overtime     string
		checkin      string
		past         bool
		wantCheckin  string
		wantOvertime string
	}{
		{"as scheduled", "8", "0.5", "0", true, "8", "0.5"},
		{"more than planned", "8", "0.5", "10", true, "10", "2.5"},
		{"less than planned", "8", "0.5", "6", true, "6", "-1.5"},
		{"not past keeps overtime", "8", "0.5", "10", false, "10", "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := plannedDay(tt.scheduled, tt.overtime)

			day.Checkin(hours(tt.checkin), tt.past)

			assert.True(t, day.CheckinManhour.Equal(hours(tt.wantCheckin)),
				"CheckinManhour = %s, want %s", day.CheckinManhour, tt.wantCheckin)
			assert.True(t, day.Overtime.Equal(hours(tt.wantOvertime)),
				"Overtime = %s, want %s", day.Overtime, tt.wantOvertime)
			assert.Equal(t, tt.past, day.IsPast)
		})
	}
}

func TestDay_CheckinOnDayoff(t *testing.T) {
	day := NewDay(time.Date(2017, 9, 9, 0, 0, 0, 0, time.UTC), nil, true)

	day.Checkin(decimal.Zero, true)
	assert.True(t, day.IsDayoff, "checking in nothing keeps the day off")
	assert.True(t, day.CheckinManhour.IsZero())
	assert.True(t, day.Overtime.IsZero())

	worked := NewDay(time.Date(2017, 9, 10, 0, 0, 0, 0, time.UTC), nil, true)
	worked.Checkin(hours("4"), true)
	assert.False(t, worked.IsDayoff, "hours on a day off put it on duty")
	assert.True(t, worked.Overtime.Equal(hours("4")))
}

func TestDay_Dayoff(t *testing.T) {
	day := plannedDay("9.5", "2")
	day.CheckinManhour = hours("3")

	require.NoError(t, day.Dayoff())

	assert.True(t, day.IsDayoff)
	assert.True(t, day.ScheduledWorkHours.IsZero())
	assert.True(t, day.CheckinManhour.IsZero())
	assert.True(t, day.Overtime.IsZero())
}

func TestDay_PastDayIsFrozen(t *testing.T) {
	day := plannedDay("8", "0")
	day.Checkin(decimal.Zero, true)

	if err := day.Dayoff(); !errors.Is(err, ErrPastDay) {
		t.Errorf("Dayoff() error = %v, want ErrPastDay", err)
	}
	if err := day.Schedule(hours("5")); !errors.Is(err, ErrPastDay) {
		t.Errorf("Schedule() error = %v, want ErrPastDay", err)
	}
	if err := day.OnDuty(); !errors.Is(err, ErrPastDay) {
		t.Errorf("OnDuty() error = %v, want ErrPastDay", err)
	}

	assert.False(t, day.IsDayoff)
	assert.True(t, day.ScheduledWorkHours.Equal(hours("8")))
}
