package manhour

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSeptember builds September 2017 without holidays: 21 workdays
func newSeptember(t *testing.T, required, daily, maxOver string) *Schedule {
	t.Helper()

	job, _, err := NewJob(hours(required), hours(daily), hours("2000"), hours(maxOver))
	require.NoError(t, err)

	month, err := NewMonth(2017, time.September, nil)
	require.NoError(t, err)

	return NewSchedule(job, month)
}

func snapshotDays(m *Month) []Day {
	return append([]Day(nil), m.Days...)
}

func checkDayoffInvariant(t *testing.T, s *Schedule) {
	t.Helper()
	for _, day := range s.DayoffList() {
		assert.True(t, day.ScheduledWorkHours.IsZero(), "%s scheduled on a day off", day.Date)
		assert.True(t, day.CheckinManhour.IsZero(), "%s checked in on a day off", day.Date)
		assert.True(t, day.Overtime.IsZero(), "%s overtime on a day off", day.Date)
	}
}

func TestSchedule_FirstWorkday(t *testing.T) {
	s := newSeptember(t, "120", "7.5", "2")
	require.Equal(t, 21, s.Workdays())

	require.NoError(t, s.Schedule(hours("0.5")))

	// round(120/21, 2) = 5.71, ceiled to the next half hour
	first := s.Month.Day(1)
	assert.True(t, first.ScheduledWorkHours.Equal(hours("6")), "first workday = %s, want 6", first.ScheduledWorkHours)
	assert.True(t, first.Overtime.IsZero())

	assert.True(t, s.ManhourRemain.Equal(hours("120")))
	assert.True(t, s.CheckinManhour.IsZero())
	assert.True(t, s.Overhours.IsZero())
	assert.True(t, s.ManhourAbsence.IsZero())

	ceiling := s.Job.MaxDailyWorkHours()
	total := decimal.Zero
	for i := range s.Month.Days {
		day := &s.Month.Days[i]
		assert.False(t, day.ScheduledWorkHours.GreaterThan(ceiling), "%s scheduled %s", day.Date, day.ScheduledWorkHours)
		total = total.Add(day.ScheduledWorkHours)
	}
	assert.False(t, total.LessThan(hours("120")), "planned %s, want at least 120", total)

	checkDayoffInvariant(t, s)
}

func TestSchedule_CappedAtMaxDailyHours(t *testing.T) {
	s := newSeptember(t, "300", "7.5", "2")

	require.NoError(t, s.Schedule(hours("0.5")))

	for i := range s.Month.Days {
		day := &s.Month.Days[i]
		if day.IsDayoff {
			continue
		}
		assert.True(t, day.ScheduledWorkHours.Equal(hours("9.5")), "%s scheduled %s", day.Date, day.ScheduledWorkHours)
		assert.True(t, day.Overtime.Equal(hours("2")), "%s overtime %s", day.Date, day.Overtime)
	}

	// 300 - 21 * 9.5
	assert.True(t, s.ManhourAbsence.Equal(hours("100.5")), "absence = %s", s.ManhourAbsence)
}

func TestSchedule_Precision(t *testing.T) {
	tests := []struct {
		name      string
		precision string
		want      string
	}{
		{"one hour", "1", "6"},
		{"half hour", "0.5", "6"},
		{"quarter hour", "0.25", "5.75"},
		{"no rounding", "0", "5.71"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeptember(t, "120", "7.5", "2")

			require.NoError(t, s.Schedule(hours(tt.precision)))

			got := s.Month.Day(1).ScheduledWorkHours
			assert.True(t, got.Equal(hours(tt.want)), "first workday = %s, want %s", got, tt.want)
		})
	}
}

func TestSchedule_NegativePrecision(t *testing.T) {
	s := newSeptember(t, "120", "7.5", "2")

	err := s.Schedule(hours("-0.5"))
	assert.ErrorIs(t, err, ErrNegativePrecision)
	assert.True(t, s.Month.Day(1).ScheduledWorkHours.IsZero())
}

func TestSchedule_Underspecified(t *testing.T) {
	month, err := NewMonth(2017, time.September, nil)
	require.NoError(t, err)
	job, _, err := NewJobFromFloat(120, 7.5, 2000, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, NewSchedule(nil, month).Schedule(hours("1")), ErrJobNotSet)
	assert.ErrorIs(t, NewSchedule(job, nil).Schedule(hours("1")), ErrMonthNotSet)
	assert.ErrorIs(t, NewSchedule(job, nil).Adjust([]int{1}), ErrMonthNotSet)
}

func TestSchedule_CheckinReducesRemain(t *testing.T) {
	s := newSeptember(t, "120", "7.5", "2")
	require.NoError(t, s.Schedule(hours("0.5")))

	checkedIn := decimal.Zero
	for i := 0; i < 4; i++ {
		day := s.Month.NextDay()
		require.NotNil(t, day)
		day.Checkin(decimal.Zero, true)
		checkedIn = checkedIn.Add(day.CheckinManhour)
	}

	// Sep 1 and Sep 4 are workdays, the weekend in between is off
	assert.True(t, checkedIn.Equal(hours("12")), "checked in %s", checkedIn)
	assert.Same(t, s.Month.Day(5), s.Month.NextDay())

	require.NoError(t, s.Schedule(hours("0.5")))

	assert.True(t, s.CheckinManhour.Equal(checkedIn))
	assert.True(t, s.ManhourRemain.Equal(hours("120").Sub(checkedIn)), "remain = %s", s.ManhourRemain)
	assert.True(t, s.Overhours.IsZero())
	checkDayoffInvariant(t, s)
}

func TestSchedule_OvertimeFromCheckin(t *testing.T) {
	s := newSeptember(t, "120", "7.5", "2")
	require.NoError(t, s.Schedule(hours("0.5")))

	// 7.5 checked in against 6 planned
	s.Month.NextDay().Checkin(hours("7.5"), true)
	require.NoError(t, s.Schedule(hours("0.5")))

	assert.True(t, s.CheckinManhour.Equal(hours("7.5")))
	assert.True(t, s.Overhours.Equal(hours("1.5")), "overhours = %s", s.Overhours)
	assert.True(t, s.ManhourRemain.Equal(hours("112.5")))
}

func TestSchedule_AdjustAndReschedule(t *testing.T) {
	s := newSeptember(t, "120", "7.5", "2")
	require.NoError(t, s.Schedule(hours("0.5")))
	for i := 0; i < 4; i++ {
		s.Month.NextDay().Checkin(decimal.Zero, true)
	}

	require.NoError(t, s.Adjust([]int{6, 12, -9, -17}))

	for _, d := range []int{6, 12} {
		day := s.Month.Day(d)
		assert.True(t, day.IsDayoff, "day %d should be off", d)
		assert.True(t, day.ScheduledWorkHours.IsZero())
		assert.True(t, day.Overtime.IsZero())
	}
	for _, d := range []int{9, 17} {
		assert.False(t, s.Month.Day(d).IsDayoff, "day %d should be on duty", d)
	}

	require.NoError(t, s.Schedule(hours("0.5")))

	assert.True(t, s.Month.Day(9).ScheduledWorkHours.IsPositive())
	assert.True(t, s.Month.Day(17).ScheduledWorkHours.IsPositive())
	assert.True(t, s.Month.Day(6).ScheduledWorkHours.IsZero())

	planned := decimal.Zero
	for i := range s.Month.Days {
		if day := &s.Month.Days[i]; !day.IsPast {
			planned = planned.Add(day.ScheduledWorkHours)
		}
	}
	assert.False(t, planned.LessThan(s.ManhourRemain), "planned %s for %s remaining", planned, s.ManhourRemain)
	assert.Equal(t, 21, s.Workdays())
	checkDayoffInvariant(t, s)
}

func TestSchedule_AdjustRejected(t *testing.T) {
	tests := []struct {
		name          string
		dayOff        []int
		wantStage     AdjustStage
		wantSentinel  error
		wantDates     []int
		wantConflicts [][2]int
	}{
		{"zero", []int{3, 0}, StageRange, ErrDateOutOfRange, []int{0}, nil},
		{"beyond month end", []int{31, -32, 5}, StageRange, ErrDateOutOfRange, []int{-32, 31}, nil},
		{"both off and on duty", []int{5, -5, 7, -8, 8}, StageConflict, ErrDateConflict, nil, [][2]int{{5, -5}, {8, -8}}},
		{"past day off", []int{1, 6}, StagePast, ErrPastDate, []int{1}, nil},
		{"past day on duty", []int{-2, -9}, StagePast, ErrPastDate, []int{2}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeptember(t, "120", "7.5", "2")
			require.NoError(t, s.Schedule(hours("0.5")))
			s.Month.Day(1).Checkin(decimal.Zero, true)
			s.Month.Day(2).Checkin(decimal.Zero, true)

			before := snapshotDays(s.Month)

			err := s.Adjust(tt.dayOff)

			var adjErr *AdjustmentError
			require.True(t, errors.As(err, &adjErr), "Adjust(%v) error = %v, want *AdjustmentError", tt.dayOff, err)
			assert.Equal(t, tt.wantStage, adjErr.Stage)
			assert.ErrorIs(t, err, tt.wantSentinel)
			assert.Equal(t, tt.wantDates, adjErr.Dates)
			assert.Equal(t, tt.wantConflicts, adjErr.Conflicts)

			assert.Equal(t, before, s.Month.Days, "days changed by a rejected adjustment")
		})
	}
}

func TestSchedule_AdjustEmpty(t *testing.T) {
	s := newSeptember(t, "120", "7.5", "2")
	before := snapshotDays(s.Month)

	assert.NoError(t, s.Adjust(nil))
	assert.Equal(t, before, s.Month.Days)
}

func TestSchedule_NoWorkdaysLeft(t *testing.T) {
	s := newSeptember(t, "120", "7.5", "2")

	for i := range s.Month.Days {
		s.Month.Days[i].Checkin(decimal.Zero, true)
	}

	require.NoError(t, s.Schedule(hours("0.5")))

	assert.True(t, s.ManhourRemain.Equal(hours("120")))
	assert.True(t, s.ManhourAbsence.Equal(s.ManhourRemain), "absence = %s, remain = %s", s.ManhourAbsence, s.ManhourRemain)
}

func TestSchedule_AllRemainingDaysOff(t *testing.T) {
	s := newSeptember(t, "120", "7.5", "2")

	var workdays []int
	for i := range s.Month.Days {
		if !s.Month.Days[i].IsDayoff {
			workdays = append(workdays, i+1)
		}
	}
	require.NoError(t, s.Adjust(workdays))

	require.NoError(t, s.Schedule(hours("1")))

	assert.Equal(t, 0, s.Workdays())
	assert.True(t, s.ManhourAbsence.Equal(hours("120")))
	checkDayoffInvariant(t, s)
}

func TestSchedule_RemainBelowDailyHours(t *testing.T) {
	s := newSeptember(t, "5", "7.5", "2")

	require.NoError(t, s.Schedule(hours("1")))

	// less than a standard day left: every workday gets the standard hours
	assert.True(t, s.Month.Day(1).ScheduledWorkHours.Equal(hours("7.5")))
	assert.True(t, s.Month.Day(29).ScheduledWorkHours.Equal(hours("7.5")))
	assert.True(t, s.ManhourAbsence.IsZero())
}

func TestSchedule_Validate(t *testing.T) {
	s := newSeptember(t, "120", "7.5", "2")
	require.NoError(t, s.Validate())

	s.Job.DailyWorkHours = hours("-1")
	assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)

	assert.NoError(t, NewSchedule(nil, nil).Validate())
}
