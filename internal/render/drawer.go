// Package render draws a schedule as a monthly text calendar.
package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wavky/ManHourCalendar/internal/manhour"
	"github.com/wavky/ManHourCalendar/pkg/dateutil"
)

const (
	// MinWidth is the narrowest cell that fits "Checkin: 10.25"
	MinWidth     = 12
	DefaultWidth = 14
)

var weekdayNames = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Drawer renders schedules into Out
type Drawer struct {
	// Width is the inner width of a day cell; raised to MinWidth and rounded up to even
	Width int
	Out   io.Writer
	// Now supplies the current time; time.Now when nil
	Now func() time.Time
	// Location decides which date is today; the clock's own zone when nil
	Location *time.Location
}

// NewDrawer creates a Drawer writing to stdout
func NewDrawer(width int, location *time.Location) *Drawer {
	return &Drawer{Width: width, Out: os.Stdout, Now: time.Now, Location: location}
}

func (d *Drawer) cellWidth() int {
	w := d.Width
	if w < MinWidth {
		w = MinWidth
	}
	if w%2 != 0 {
		w++
	}
	return w
}

// today returns the current date in Location as a UTC midnight date
func (d *Drawer) today() time.Time {
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}
	if d.Location != nil {
		now = now.In(d.Location)
	}
	return dateutil.Date(now.Year(), now.Month(), now.Day())
}

// Draw writes the calendar grid followed by the month summary
func (d *Drawer) Draw(s *manhour.Schedule) error {
	if err := s.Ready(); err != nil {
		return err
	}

	out := d.Out
	if out == nil {
		out = os.Stdout
	}

	var b strings.Builder
	d.drawGrid(&b, s)
	d.drawSummary(&b, s)

	_, err := io.WriteString(out, b.String())
	return err
}

func (d *Drawer) drawGrid(b *strings.Builder, s *manhour.Schedule) {
	w := d.cellWidth()
	month := s.Month
	hr := strings.Repeat("-", 7*(w+1)+1)

	title := fmt.Sprintf("%s %d", month.Month, month.Year)
	b.WriteString("\n")
	b.WriteString(center(title, len(hr)))
	b.WriteString("\n")
	b.WriteString(hr + "\n")

	header := make([]string, 7)
	for i, name := range weekdayNames {
		header[i] = center(name, w)
	}
	b.WriteString(row(header, w))
	b.WriteString(hr + "\n")

	today := d.today()
	todayDay := month.On(today)

	for i := range month.Weeks {
		week := month.Week(i)

		numbers := make([]string, 7)
		holidays := make([]string, 7)
		sched := make([]string, 7)
		overtime := make([]string, 7)
		checkin := make([]string, 7)
		dayoff := make([]string, 7)
		done := make([]string, 7)

		for pos, day := range week {
			if day == nil {
				continue
			}

			number := strconv.Itoa(day.Date.Day())
			if day == todayDay {
				number = "[" + number + "]"
			}
			numbers[pos] = center(number, w)

			if day.Holiday != nil {
				holidays[pos] = center("* Holiday *", w)
			}

			if day.IsDayoff {
				sched[pos], overtime[pos], checkin[pos] = "-", "-", "-"
			} else {
				sched[pos] = "Sched: " + day.ScheduledWorkHours.String()
				overtime[pos] = "OT: " + day.Overtime.String()
				checkin[pos] = "Checkin: " + day.CheckinManhour.String()
			}
			dayoff[pos] = "Dayoff: " + yesNo(day.IsDayoff)
			done[pos] = "Done: " + yesNo(day.IsPast)
		}

		b.WriteString(row(numbers, w))
		for _, cells := range [][]string{holidays, sched, overtime, checkin, dayoff, done} {
			b.WriteString(row(cells, w))
		}
		b.WriteString(hr + "\n")
	}
}

func (d *Drawer) drawSummary(b *strings.Builder, s *manhour.Schedule) {
	b.WriteString("(Sched = Schedule, OT = Overtime)\n")
	for _, h := range s.Month.Holidays {
		b.WriteString(h.String() + "\n")
	}
	b.WriteString("\n")

	today := d.today()
	if day := s.Month.On(today); day != nil {
		line := fmt.Sprintf("Today: %s %s", day.Date.Format(dateutil.DateLayout), today.Weekday())
		if day.Holiday != nil {
			line += fmt.Sprintf(" ** %s **", day.Holiday.Name)
		}
		line += fmt.Sprintf("\t Schedule(OT): %s (%s)", day.ScheduledWorkHours, day.Overtime)
		if day.IsDayoff {
			line += "\t Day off"
		} else {
			line += fmt.Sprintf("\t Checkin: %s", day.CheckinManhour)
		}
		b.WriteString(line + "\n")
	} else {
		fmt.Fprintf(b, "Today: %s %s\n", today.Format(dateutil.DateLayout), today.Weekday())
	}

	job := s.Job
	fmt.Fprintf(b, "Expecting: Manhour/Workdays = %s/%d\t Salary = %s\n",
		job.RequiredManhour, s.Workdays(), job.Salary(job.RequiredManhour))
	fmt.Fprintf(b, "For now:   Checkin manhour = %s\t Remaining manhour = %s\t Overtime = %s\t Salary = %s\n",
		s.CheckinManhour, s.ManhourRemain, s.Overhours, job.Salary(s.CheckinManhour))

	if s.ManhourAbsence.IsPositive() {
		fmt.Fprintf(b, "These manhour can not be scheduled on this month: %s\n", s.ManhourAbsence)
	}
}

// row joins seven cells, each padded or cut to width w, between pipes
func row(cells []string, w int) string {
	var b strings.Builder
	b.WriteString("|")
	for _, cell := range cells {
		if len(cell) > w {
			cell = cell[:w]
		}
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", w-len(cell)))
		b.WriteString("|")
	}
	b.WriteString("\n")
	return b.String()
}

func center(text string, w int) string {
	if len(text) >= w {
		return text
	}
	left := (w - len(text)) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", w-len(text)-left)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
