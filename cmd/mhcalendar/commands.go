package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/wavky/ManHourCalendar/internal/config"
	"github.com/wavky/ManHourCalendar/internal/daemon"
	"github.com/wavky/ManHourCalendar/internal/timemanager"
	"github.com/wavky/ManHourCalendar/pkg/dateutil"
)

var (
	precisionFlag string
	catchupDate   string
	holidaysYear  int
)

func jobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Show your job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(_ *config.Config, m *timemanager.Manager) error {
				job, err := m.Job(cmd.Context())
				if err != nil {
					return explain(err)
				}
				fmt.Println(job)
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "set <required_manhour> <daily_work_hours> <hourly_pay> <max_daily_overhours>",
		Short:   "Create or replace your job",
		Example: "  mhcalendar job set 140 8 2000 2",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseDecimals(args)
			if err != nil {
				return err
			}

			return withManager(func(_ *config.Config, m *timemanager.Manager) error {
				job, violation, err := m.SetJob(cmd.Context(), values[0], values[1], values[2], values[3])
				if err != nil {
					return err
				}
				if violation != nil {
					fmt.Fprintf(os.Stderr, "Warning: %v\n", violation)
				}
				fmt.Println(job)
				return nil
			})
		},
	})

	return cmd
}

func monthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show the month being scheduled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(_ *config.Config, m *timemanager.Manager) error {
				month, err := m.Month(cmd.Context())
				if err != nil {
					return explain(err)
				}
				fmt.Println(month)
				for _, h := range month.Holidays {
					fmt.Println(h)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [year month]",
		Short: "Start scheduling a month, the current one by default",
		Long:  "Start scheduling a month. The days of the previous month are dropped, the job is kept.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts no args or <year> <month>, received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var year, month int
			if len(args) == 2 {
				values, err := parseInts(args)
				if err != nil {
					return err
				}
				year, month = values[0], values[1]
			}

			return withManager(func(_ *config.Config, m *timemanager.Manager) error {
				mo, err := m.SetMonth(cmd.Context(), year, time.Month(month))
				if err != nil {
					return err
				}
				fmt.Println(mo)
				return nil
			})
		},
	})

	return cmd
}

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Reschedule the remaining days and show the calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(cfg *config.Config, m *timemanager.Manager) error {
				precision, err := cfg.Schedule.GetPrecision()
				if err != nil {
					return err
				}
				if precisionFlag != "" {
					precision, err = decimal.NewFromString(precisionFlag)
					if err != nil {
						return fmt.Errorf("invalid precision %q: %w", precisionFlag, err)
					}
				}

				_, err = m.Calendar(cmd.Context(), precision)
				return explain(err)
			})
		},
	}

	cmd.Flags().StringVar(&precisionFlag, "pre", "", "Rounding unit of the schedule in hours, e.g. 0.25 (default from config)")
	return cmd
}

func checkinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin [hours]",
		Short: "Check in the next day, as scheduled when no hours are given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours := decimal.Zero
			if len(args) == 1 {
				var err error
				hours, err = decimal.NewFromString(args[0])
				if err != nil {
					return fmt.Errorf("invalid hours %q: %w", args[0], err)
				}
			}

			return withManager(func(_ *config.Config, m *timemanager.Manager) error {
				day, err := m.Checkin(cmd.Context(), hours)
				if err != nil {
					return explain(err)
				}
				fmt.Printf("Date: %s \t Check in hours: %s\n", formatDate(day.Date), day.CheckinManhour)
				return nil
			})
		},
	}
}

func pointerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pointer",
		Short: "Show the next day to check in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(_ *config.Config, m *timemanager.Manager) error {
				day, err := m.Pointer(cmd.Context())
				if err != nil {
					return explain(err)
				}
				fmt.Printf("Next check in: %s \t Schedule: %s\n", formatDate(day.Date), day.ScheduledWorkHours)
				return nil
			})
		},
	}
}

func dayoffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dayoff [-- dates...]",
		Short: "Take days off (positive dates) or put days on duty (negative dates)",
		Long: "Take days off or put days on duty by day of month. A negative date puts the day on duty.\n" +
			"Without dates the next day is put on duty. Negative dates must follow --.",
		Example: "  mhcalendar dayoff 8 22\n  mhcalendar dayoff -- 9 -16",
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := parseInts(args)
			if err != nil {
				return err
			}

			return withManager(func(_ *config.Config, m *timemanager.Manager) error {
				if err := m.DayOff(cmd.Context(), dates); err != nil {
					return explain(err)
				}
				fmt.Println("Days adjusted, run calendar to see the new schedule")
				return nil
			})
		},
	}
}

func catchupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catchup",
		Short: "Check in, as scheduled, every day before today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var today time.Time
			if catchupDate != "" {
				var err error
				today, err = dateutil.ParseDate(catchupDate)
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", catchupDate, err)
				}
			}

			return withManager(func(cfg *config.Config, m *timemanager.Manager) error {
				precision, err := cfg.Schedule.GetPrecision()
				if err != nil {
					return err
				}

				result, err := m.CatchUp(cmd.Context(), today, precision)
				if err != nil {
					return explain(err)
				}
				for _, day := range result.Days {
					fmt.Printf("Date: %s \t Check in hours: %s\n", formatDate(day.Date), day.CheckinManhour)
				}
				fmt.Printf("Caught up %d days, %s hours\n", len(result.Days), result.Hours)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&catchupDate, "until", "", "Check in the days before this date (YYYY-MM-DD) instead of today")
	return cmd
}

func holidaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List the public holidays of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(_ *config.Config, m *timemanager.Manager) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
				defer cancel()

				holidays, err := m.Holidays(ctx, holidaysYear)
				if err != nil {
					return err
				}
				for _, h := range holidays {
					fmt.Println(h)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&holidaysYear, "year", 0, "Year to list (default current year)")
	return cmd
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Check in the day as scheduled every day at daemon.daily_time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(cfg *config.Config, m *timemanager.Manager) error {
				hour, minute, err := cfg.Daemon.GetDailyTime()
				if err != nil {
					return err
				}
				precision, err := cfg.Schedule.GetPrecision()
				if err != nil {
					return err
				}
				loc, err := cfg.Locale.Location()
				if err != nil {
					return err
				}

				d := daemon.NewScheduledDaemon(m, hour, minute, precision, loc, logger)
				return d.Run(cmd.Context())
			})
		},
	}
}

func parseDecimals(args []string) ([]decimal.Decimal, error) {
	values := make([]decimal.Decimal, len(args))
	for i, arg := range args {
		v, err := decimal.NewFromString(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", arg, err)
		}
		values[i] = v
	}
	return values, nil
}

func parseInts(args []string) ([]int, error) {
	values := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", arg, err)
		}
		values[i] = v
	}
	return values, nil
}

// formatDate prints e.g. 2017.9.1 Friday
func formatDate(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d %s", t.Year(), int(t.Month()), t.Day(), t.Weekday())
}
