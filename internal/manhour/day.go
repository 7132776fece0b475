package manhour

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wavky/ManHourCalendar/internal/calendar"
)

// Day is the scheduling state of one calendar date
type Day struct {
	Date    time.Time         `json:"date"`
	Holiday *calendar.Holiday `json:"holiday,omitempty"`

	IsDayoff           bool            `json:"is_dayoff"`
	ScheduledWorkHours decimal.Decimal `json:"scheduled_work_hours"`
	CheckinManhour     decimal.Decimal `json:"checkin_manhour"`
	// Overtime on a past day is the overtime actually done, otherwise the planned overtime
	Overtime decimal.Decimal `json:"overtime"`
	IsPast   bool            `json:"is_past"`
}

// NewDay creates a planned (or day-off) day without hours
func NewDay(date time.Time, holiday *calendar.Holiday, dayoff bool) Day {
	return Day{
		Date:     date,
		Holiday:  holiday,
		IsDayoff: dayoff,
	}
}

// Checkin records the hours worked on the day. Zero hours means "as scheduled".
// With past set the difference against the plan is booked into overtime and the day becomes past.
func (d *Day) Checkin(hours decimal.Decimal, past bool) {
	if hours.IsPositive() {
		d.CheckinManhour = hours
		if d.IsDayoff {
			// worked on a day off: the day is on duty now
			d.IsDayoff = false
		}
	} else {
		d.CheckinManhour = d.ScheduledWorkHours
	}

	if past {
		d.Overtime = d.Overtime.Sub(d.ScheduledWorkHours.Sub(d.CheckinManhour))
	}
	d.IsPast = past
}

// Dayoff takes the day off and clears its hours
func (d *Day) Dayoff() error {
	if d.IsPast {
		return fmt.Errorf("%w: %s", ErrPastDay, d.Date.Format("2006-01-02"))
	}
	d.IsDayoff = true
	d.CheckinManhour = decimal.Zero
	d.ScheduledWorkHours = decimal.Zero
	d.Overtime = decimal.Zero
	return nil
}

// OnDuty puts a day off back to work; its hours are planned by the next Schedule call
func (d *Day) OnDuty() error {
	if d.IsPast {
		return fmt.Errorf("%w: %s", ErrPastDay, d.Date.Format("2006-01-02"))
	}
	d.IsDayoff = false
	return nil
}

// Schedule plans the hours of the day
func (d *Day) Schedule(hours decimal.Decimal) error {
	if d.IsPast {
		return fmt.Errorf("%w: %s", ErrPastDay, d.Date.Format("2006-01-02"))
	}
	d.ScheduledWorkHours = hours
	return nil
}

func (d *Day) String() string {
	holiday := "None"
	if d.Holiday != nil {
		holiday = d.Holiday.Name
	}
	return fmt.Sprintf("Day(%s, holiday=%s, dayoff=%t, scheduled=%s, checkin=%s, overtime=%s, past=%t)",
		d.Date.Format("2006-01-02"), holiday, d.IsDayoff,
		d.ScheduledWorkHours, d.CheckinManhour, d.Overtime, d.IsPast)
}
