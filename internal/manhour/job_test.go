package manhour

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewJob(t *testing.T) {
	tests := []struct {
		name          string
		daily         string
		maxOver       string
		wantMaxOver   string
		wantViolation bool
	}{
		{"within 24 hours", "7.5", "2", "2", false},
		{"exactly 24 hours", "8", "16", "16", false},
		{"negative means unlimited", "7.5", "-1", "16.5", false},
		{"clamped when above 24", "8", "20", "16", true},
		{"zero daily hours", "0", "30", "24", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, violation, err := NewJob(hours("120"), hours(tt.daily), hours("2000"), hours(tt.maxOver))
			if err != nil {
				t.Fatalf("NewJob() error = %v", err)
			}

			if !job.MaxDailyOverhours.Equal(hours(tt.wantMaxOver)) {
				t.Errorf("MaxDailyOverhours = %s, want %s", job.MaxDailyOverhours, tt.wantMaxOver)
			}

			if (violation != nil) != tt.wantViolation {
				t.Errorf("violation = %v, want violation %v", violation, tt.wantViolation)
			}

			if job.MaxDailyWorkHours().GreaterThan(HoursPerDay) {
				t.Errorf("MaxDailyWorkHours = %s, want <= 24", job.MaxDailyWorkHours())
			}
		})
	}
}

func TestNewJob_ViolationDetails(t *testing.T) {
	_, violation, err := NewJob(hours("160"), hours("10"), hours("1500"), hours("20"))
	if err != nil {
		t.Fatalf("NewJob() error = %v", err)
	}
	if violation == nil {
		t.Fatal("NewJob() violation = nil, want clamp report")
	}

	if !violation.RequestedOverhours.Equal(hours("20")) {
		t.Errorf("RequestedOverhours = %s, want 20", violation.RequestedOverhours)
	}
	if !violation.ClampedOverhours.Equal(hours("14")) {
		t.Errorf("ClampedOverhours = %s, want 14", violation.ClampedOverhours)
	}
}

func TestNewJob_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		required string
		daily    string
		pay      string
	}{
		{"negative required manhour", "-1", "8", "1000"},
		{"negative daily hours", "120", "-8", "1000"},
		{"negative pay", "120", "8", "-1"},
		{"daily hours above 24", "120", "25", "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewJob(hours(tt.required), hours(tt.daily), hours(tt.pay), hours("0"))
			if !errors.Is(err, ErrInvalidJob) {
				t.Errorf("NewJob() error = %v, want ErrInvalidJob", err)
			}
		})
	}
}

func TestJob_Salary(t *testing.T) {
	job, _, err := NewJobFromFloat(120, 7.5, 2000, 2)
	if err != nil {
		t.Fatalf("NewJobFromFloat() error = %v", err)
	}

	if got := job.Salary(job.RequiredManhour); !got.Equal(hours("240000")) {
		t.Errorf("Salary(120) = %s, want 240000", got)
	}
	if got := job.MaxDailyWorkHours(); !got.Equal(hours("9.5")) {
		t.Errorf("MaxDailyWorkHours() = %s, want 9.5", got)
	}
}
