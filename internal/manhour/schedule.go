package manhour

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// averageDecimals is the number of decimals kept when averaging the remaining hours
const averageDecimals = 2

// Schedule distributes the required hours of a Job over the remaining workdays of a Month.
//
// The four totals are derived state: every call to Schedule recomputes them from the days.
type Schedule struct {
	Job   *Job   `json:"job"`
	Month *Month `json:"month"`

	// CheckinManhour is the hours checked in so far this month
	CheckinManhour decimal.Decimal `json:"checkin_manhour"`
	// ManhourRemain is the hours still to work this month
	ManhourRemain decimal.Decimal `json:"manhour_remain"`
	// Overhours is the overtime done so far
	Overhours decimal.Decimal `json:"overhours"`
	// ManhourAbsence is the hours that cannot be placed on the remaining days
	ManhourAbsence decimal.Decimal `json:"manhour_absence"`

	logger *zap.Logger
}

// NewSchedule binds a job and a month; either may be nil until set by the caller
func NewSchedule(job *Job, month *Month) *Schedule {
	return &Schedule{
		Job:    job,
		Month:  month,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger used to trace the distribution
func (s *Schedule) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

func (s *Schedule) log() *zap.Logger {
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s.logger
}

// Ready reports whether both a job and a month are bound
func (s *Schedule) Ready() error {
	if s.Job == nil {
		return ErrJobNotSet
	}
	if s.Month == nil {
		return ErrMonthNotSet
	}
	return nil
}

// DayoffList returns every day currently off
func (s *Schedule) DayoffList() []*Day {
	if s.Month == nil {
		return nil
	}
	var days []*Day
	for i := range s.Month.Days {
		if s.Month.Days[i].IsDayoff {
			days = append(days, &s.Month.Days[i])
		}
	}
	return days
}

// Workdays returns the number of days of the month that are not off
func (s *Schedule) Workdays() int {
	if s.Month == nil {
		return 0
	}
	return s.Month.Len() - len(s.DayoffList())
}

// Schedule recomputes the plan of every remaining day.
// precision is the rounding unit in hours (0.25 means 15 minutes); 0 disables rounding.
func (s *Schedule) Schedule(precision decimal.Decimal) error {
	if err := s.Ready(); err != nil {
		return err
	}
	if precision.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativePrecision, precision)
	}

	// 1. Split days into past, remaining workdays and remaining days off
	workdaysRemain, dayoffRemain := s.calculateManhourRemain()

	daily := s.Job.DailyWorkHours
	manhourRemain := s.ManhourRemain
	workdaysCount := int64(len(workdaysRemain))

	s.log().Debug("Scheduling remaining workdays",
		zap.Int64("workdays_remain", workdaysCount),
		zap.String("manhour_remain", manhourRemain.String()),
		zap.String("precision", precision.String()))

	// 2. Spread the remainder over the remaining workdays, re-averaging after each day
	for _, day := range workdaysRemain {
		var scheduleHours decimal.Decimal

		if manhourRemain.GreaterThan(daily) {
			avg := manhourRemain.Div(decimal.NewFromInt(workdaysCount)).RoundBank(averageDecimals)
			workdaysCount--
			scheduleHours = s.ceilByPrecision(avg, precision)

			s.log().Debug("Daily average of remaining manhour",
				zap.Time("date", day.Date),
				zap.String("average", avg.String()))
		} else {
			scheduleHours = daily
		}

		if err := day.Schedule(scheduleHours); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", day.Date.Format("2006-01-02"), err)
		}
		if scheduleHours.GreaterThan(daily) {
			day.Overtime = scheduleHours.Sub(daily)
		} else {
			day.Overtime = decimal.Zero
		}

		manhourRemain = manhourRemain.Sub(scheduleHours)

		s.log().Debug("Day scheduled",
			zap.Time("date", day.Date),
			zap.String("schedule_hours", scheduleHours.String()),
			zap.String("manhour_remain", manhourRemain.String()))
	}

	// 3. Days off carry no hours
	for _, day := range dayoffRemain {
		if err := day.Schedule(decimal.Zero); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", day.Date.Format("2006-01-02"), err)
		}
		day.Overtime = decimal.Zero
	}

	// 4. Whatever is left could not be placed this month
	if manhourRemain.IsPositive() {
		s.ManhourAbsence = manhourRemain
	} else {
		s.ManhourAbsence = decimal.Zero
	}

	s.log().Debug("Schedule completed",
		zap.String("checkin_manhour", s.CheckinManhour.String()),
		zap.String("manhour_remain", s.ManhourRemain.String()),
		zap.String("overhours", s.Overhours.String()),
		zap.String("manhour_absence", s.ManhourAbsence.String()))

	return nil
}

// calculateManhourRemain refreshes the checked-in totals and returns the remaining
// workdays and days off in date order
func (s *Schedule) calculateManhourRemain() (workdaysRemain, dayoffRemain []*Day) {
	checkin := decimal.Zero
	overhours := decimal.Zero

	for i := range s.Month.Days {
		day := &s.Month.Days[i]
		switch {
		case day.IsPast:
			checkin = checkin.Add(day.CheckinManhour)
			overhours = overhours.Add(day.Overtime)
		case day.IsDayoff:
			dayoffRemain = append(dayoffRemain, day)
		default:
			workdaysRemain = append(workdaysRemain, day)
		}
	}

	s.CheckinManhour = checkin
	s.Overhours = overhours

	remain := s.Job.RequiredManhour.Sub(checkin)
	if remain.IsPositive() {
		s.ManhourRemain = remain
	} else {
		s.ManhourRemain = decimal.Zero
	}

	sortDays(workdaysRemain)
	sortDays(dayoffRemain)

	return workdaysRemain, dayoffRemain
}

// ceilByPrecision rounds hours up to the next multiple of precision, capped at the daily maximum
func (s *Schedule) ceilByPrecision(hours, precision decimal.Decimal) decimal.Decimal {
	result := hours
	if precision.IsPositive() && !hours.Mod(precision).IsZero() {
		result = hours.Div(precision).Floor().Add(decimal.NewFromInt(1)).Mul(precision)
	}

	if ceiling := s.Job.MaxDailyWorkHours(); result.GreaterThan(ceiling) {
		result = ceiling
	}

	return result
}

// Adjust takes days off (positive day of month) or puts them on duty (negative day of month).
// Input is validated as a whole; on any error no day is changed and an *AdjustmentError is returned.
// The plan itself is not recomputed: call Schedule afterwards.
func (s *Schedule) Adjust(dayOff []int) error {
	if s.Month == nil {
		return ErrMonthNotSet
	}
	if len(dayOff) == 0 {
		return nil
	}

	// 1. Range
	var invalid []int
	for _, d := range dayOff {
		if d == 0 || abs(d) > s.Month.Len() {
			invalid = append(invalid, d)
		}
	}
	if len(invalid) > 0 {
		return &AdjustmentError{Stage: StageRange, Dates: uniqueSorted(invalid)}
	}

	var offs, duties []int
	for _, d := range dayOff {
		if d > 0 {
			offs = append(offs, d)
		} else {
			duties = append(duties, -d)
		}
	}
	offs = uniqueSorted(offs)
	duties = uniqueSorted(duties)

	// 2. Conflict
	onDuty := make(map[int]bool, len(duties))
	for _, d := range duties {
		onDuty[d] = true
	}
	var conflicts [][2]int
	for _, d := range offs {
		if onDuty[d] {
			conflicts = append(conflicts, [2]int{d, -d})
		}
	}
	if len(conflicts) > 0 {
		return &AdjustmentError{Stage: StageConflict, Conflicts: conflicts}
	}

	// 3. Past days
	var past []int
	for _, d := range append(append([]int{}, offs...), duties...) {
		if s.Month.Day(d).IsPast {
			past = append(past, d)
		}
	}
	if len(past) > 0 {
		return &AdjustmentError{Stage: StagePast, Dates: uniqueSorted(past)}
	}

	for _, d := range offs {
		if err := s.Month.Day(d).Dayoff(); err != nil {
			return err
		}
	}
	for _, d := range duties {
		if err := s.Month.Day(d).OnDuty(); err != nil {
			return err
		}
	}

	s.log().Debug("Schedule adjusted",
		zap.Ints("day_off", offs),
		zap.Ints("on_duty", duties))

	return nil
}

// Validate checks a restored schedule before it is used
func (s *Schedule) Validate() error {
	if s.Job != nil {
		if s.Job.RequiredManhour.IsNegative() || s.Job.DailyWorkHours.IsNegative() ||
			s.Job.HourlyPay.IsNegative() || s.Job.MaxDailyWorkHours().GreaterThan(HoursPerDay) {
			return fmt.Errorf("%w: job %s", ErrInvalidSchedule, s.Job)
		}
	}
	if s.Month != nil {
		if err := s.Month.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func sortDays(days []*Day) {
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
}

func uniqueSorted(values []int) []int {
	seen := make(map[int]bool, len(values))
	result := make([]int, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	sort.Ints(result)
	return result
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
