package manhour

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// HoursPerDay is the physical ceiling of daily work
var HoursPerDay = decimal.NewFromInt(24)

// Job is the monthly work policy agreed with the company
type Job struct {
	RequiredManhour   decimal.Decimal `json:"required_manhour"`
	DailyWorkHours    decimal.Decimal `json:"daily_work_hours"`
	HourlyPay         decimal.Decimal `json:"hourly_pay"`
	MaxDailyOverhours decimal.Decimal `json:"max_daily_overhours"`
}

// NewJob builds a job. A negative maxDailyOverhours means unlimited, i.e. up to 24h a day.
// When daily hours plus overhours exceed 24 the overhours are clamped and a PolicyViolation is returned
// alongside the usable job.
func NewJob(requiredManhour, dailyWorkHours, hourlyPay, maxDailyOverhours decimal.Decimal) (*Job, *PolicyViolation, error) {
	if requiredManhour.IsNegative() || dailyWorkHours.IsNegative() || hourlyPay.IsNegative() {
		return nil, nil, fmt.Errorf("%w: required manhour, daily work hours and hourly pay must not be negative", ErrInvalidJob)
	}
	if dailyWorkHours.GreaterThan(HoursPerDay) {
		return nil, nil, fmt.Errorf("%w: daily work hours %s exceed 24", ErrInvalidJob, dailyWorkHours)
	}

	job := &Job{
		RequiredManhour:   requiredManhour,
		DailyWorkHours:    dailyWorkHours,
		HourlyPay:         hourlyPay,
		MaxDailyOverhours: maxDailyOverhours,
	}

	limit := HoursPerDay.Sub(dailyWorkHours)
	if maxDailyOverhours.IsNegative() {
		job.MaxDailyOverhours = limit
		return job, nil, nil
	}

	if dailyWorkHours.Add(maxDailyOverhours).GreaterThan(HoursPerDay) {
		job.MaxDailyOverhours = limit
		return job, &PolicyViolation{
			DailyWorkHours:     dailyWorkHours,
			RequestedOverhours: maxDailyOverhours,
			ClampedOverhours:   limit,
		}, nil
	}

	return job, nil, nil
}

// NewJobFromFloat is NewJob for plain float inputs (command line, config)
func NewJobFromFloat(requiredManhour, dailyWorkHours, hourlyPay, maxDailyOverhours float64) (*Job, *PolicyViolation, error) {
	return NewJob(
		decimal.NewFromFloat(requiredManhour),
		decimal.NewFromFloat(dailyWorkHours),
		decimal.NewFromFloat(hourlyPay),
		decimal.NewFromFloat(maxDailyOverhours),
	)
}

// MaxDailyWorkHours returns the most hours that can be planned on one day
func (j *Job) MaxDailyWorkHours() decimal.Decimal {
	return j.DailyWorkHours.Add(j.MaxDailyOverhours)
}

// Salary returns the pay for the given hours
func (j *Job) Salary(hours decimal.Decimal) decimal.Decimal {
	return hours.Mul(j.HourlyPay)
}

func (j *Job) String() string {
	return fmt.Sprintf("Job(required_manhour=%s, daily_work_hours=%s, hourly_pay=%s, max_daily_overhours=%s)",
		j.RequiredManhour, j.DailyWorkHours, j.HourlyPay, j.MaxDailyOverhours)
}
