package manhour

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidJob is returned when a job is built from negative or impossible values
	ErrInvalidJob = errors.New("invalid job")

	// ErrInvalidMonth is returned for a year/month pair outside the calendar
	ErrInvalidMonth = errors.New("invalid month")

	// ErrNegativePrecision is returned when scheduling with a negative rounding unit
	ErrNegativePrecision = errors.New("precision must not be negative")

	// ErrJobNotSet is returned when the schedule has no job bound yet
	ErrJobNotSet = errors.New("job is not set")

	// ErrMonthNotSet is returned when the schedule has no month bound yet
	ErrMonthNotSet = errors.New("month is not set")

	// ErrMonthCompleted is returned when every day of the month is already checked in
	ErrMonthCompleted = errors.New("month schedule is completed")

	// ErrPastDay is returned when a past day is planned or taken off
	ErrPastDay = errors.New("day is already past")

	// ErrDateOutOfRange marks the range stage of an adjustment
	ErrDateOutOfRange = errors.New("date out of range of month")

	// ErrDateConflict marks the conflict stage of an adjustment
	ErrDateConflict = errors.New("date is both day off and on duty")

	// ErrPastDate marks the past-day stage of an adjustment
	ErrPastDate = errors.New("date is already past")

	// ErrInvalidSchedule is returned when a restored schedule is structurally broken
	ErrInvalidSchedule = errors.New("invalid schedule")
)

// PolicyViolation reports that a job asked for more than 24 hours a day and was clamped
type PolicyViolation struct {
	DailyWorkHours     decimal.Decimal
	RequestedOverhours decimal.Decimal
	ClampedOverhours   decimal.Decimal
}

func (v *PolicyViolation) Error() string {
	return fmt.Sprintf("daily_work_hours + max_daily_overhours > 24 (%s + %s), max_daily_overhours has been set to %s",
		v.DailyWorkHours, v.RequestedOverhours, v.ClampedOverhours)
}

// AdjustStage identifies the validation stage that rejected an adjustment
type AdjustStage int

const (
	StageRange AdjustStage = iota + 1
	StageConflict
	StagePast
)

func (s AdjustStage) String() string {
	switch s {
	case StageRange:
		return "range"
	case StageConflict:
		return "conflict"
	case StagePast:
		return "past"
	default:
		return "unknown"
	}
}

// AdjustmentError is returned when Adjust rejects its input; nothing was changed
type AdjustmentError struct {
	Stage AdjustStage
	// Dates holds the offending day-of-month values as given (range) or as absolute days (past)
	Dates []int
	// Conflicts holds (d, -d) pairs for the conflict stage
	Conflicts [][2]int
}

func (e *AdjustmentError) Error() string {
	switch e.Stage {
	case StageRange:
		return fmt.Sprintf("parameter out of range of month: %v", e.Dates)
	case StageConflict:
		pairs := make([]string, len(e.Conflicts))
		for i, c := range e.Conflicts {
			pairs[i] = fmt.Sprintf("(%d, %d)", c[0], c[1])
		}
		return fmt.Sprintf("parameter conflicts at: [%s]", strings.Join(pairs, ", "))
	case StagePast:
		return fmt.Sprintf("illegal past dates: %v", e.Dates)
	default:
		return "adjustment rejected"
	}
}

func (e *AdjustmentError) Unwrap() error {
	switch e.Stage {
	case StageRange:
		return ErrDateOutOfRange
	case StageConflict:
		return ErrDateConflict
	case StagePast:
		return ErrPastDate
	default:
		return nil
	}
}
