package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tokyo on hosts without a zoneinfo database

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Calendar provider types
const (
	CalendarService = "calendar-service"
	HolidaysJP      = "holidays-jp"
	CalendarFile    = "file"
	CalendarNone    = "none"
)

// Store types
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// EnvPrefix prefixes the environment overrides, e.g. MHCALENDAR_STORE_TYPE
const EnvPrefix = "MHCALENDAR"

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Locale   LocaleConfig   `mapstructure:"locale"`
	Store    StoreConfig    `mapstructure:"store"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Render   RenderConfig   `mapstructure:"render"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Log      LogConfig      `mapstructure:"log"`
}

// CalendarConfig represents holiday provider configuration
type CalendarConfig struct {
	Type         string `mapstructure:"type"`          // calendar-service, holidays-jp, file or none
	APIURL       string `mapstructure:"api_url"`       // empty means the provider's public endpoint
	FallbackFile string `mapstructure:"fallback_file"` // used when the API fails, or as the source for type file
	CacheTTL     string `mapstructure:"cache_ttl"`
	Timeout      string `mapstructure:"timeout"`
}

// LocaleConfig decides which date is "today"
type LocaleConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// StoreConfig represents schedule persistence configuration
type StoreConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

// ScheduleConfig represents scheduling defaults
type ScheduleConfig struct {
	// Precision is the rounding unit in hours, e.g. "0.25"
	Precision string `mapstructure:"precision"`
}

// RenderConfig represents calendar output configuration
type RenderConfig struct {
	Width int `mapstructure:"width"`
}

// DaemonConfig represents the daily automatic check in
type DaemonConfig struct {
	DailyTime string `mapstructure:"daily_time"` // HH:MM in the locale timezone
}

// LogConfig represents logging configuration; an empty file logs to the console
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DataDir is where the schedule and logs are kept by default
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mhcalendar"
	}
	return filepath.Join(home, ".mhcalendar")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.type", CalendarService)
	v.SetDefault("calendar.api_url", "")
	v.SetDefault("calendar.fallback_file", "")
	v.SetDefault("calendar.cache_ttl", "720h")
	v.SetDefault("calendar.timeout", "10s")
	v.SetDefault("locale.timezone", "Asia/Tokyo")
	v.SetDefault("store.type", StoreFile)
	v.SetDefault("store.path", "")
	v.SetDefault("schedule.precision", "1")
	v.SetDefault("render.width", 14)
	v.SetDefault("daemon.daily_time", "20:00")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file; a missing file leaves the defaults in place
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	explicit := false
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			explicit = true
		}
	}
	if !explicit {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mhcalendar")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()
	if config.Store.Path == "" {
		config.Store.Path = config.defaultStorePath()
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) defaultStorePath() string {
	if c.Store.Type == StoreSQLite {
		return filepath.Join(DataDir(), "mhcalendar.db")
	}
	return filepath.Join(DataDir(), "schedule.json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Calendar config
	switch c.Calendar.Type {
	case CalendarService, HolidaysJP, CalendarNone:
	case CalendarFile:
		if c.Calendar.FallbackFile == "" {
			return fmt.Errorf("calendar.fallback_file is required for file type")
		}
	default:
		return fmt.Errorf("calendar.type must be one of %q, %q, %q, %q, got '%s'",
			CalendarService, HolidaysJP, CalendarFile, CalendarNone, c.Calendar.Type)
	}
	if _, err := time.ParseDuration(c.Calendar.CacheTTL); c.Calendar.CacheTTL != "" && err != nil {
		return fmt.Errorf("calendar.cache_ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.Calendar.Timeout); c.Calendar.Timeout != "" && err != nil {
		return fmt.Errorf("calendar.timeout: %w", err)
	}

	if _, err := c.Locale.Location(); err != nil {
		return err
	}

	// Validate Store config
	switch c.Store.Type {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("store.type must be %q or %q, got '%s'", StoreFile, StoreSQLite, c.Store.Type)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}

	if _, err := c.Schedule.GetPrecision(); err != nil {
		return err
	}

	if c.Render.Width < 0 {
		return fmt.Errorf("render.width must not be negative")
	}

	if _, _, err := c.Daemon.GetDailyTime(); err != nil {
		return err
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}

// GetCacheTTL returns how long fetched holidays stay fresh
func (c *CalendarConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 30 * 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return duration
}

// GetTimeout returns the HTTP timeout of the holiday provider
func (c *CalendarConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 10 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return duration
}

// Location returns the configured timezone
func (c *LocaleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("locale.timezone: %w", err)
	}
	return loc, nil
}

// GetPrecision returns the rounding unit in hours
func (c *ScheduleConfig) GetPrecision() (decimal.Decimal, error) {
	if c.Precision == "" {
		return decimal.NewFromInt(1), nil
	}
	precision, err := decimal.NewFromString(c.Precision)
	if err != nil {
		return decimal.Zero, fmt.Errorf("schedule.precision: %w", err)
	}
	if precision.IsNegative() {
		return decimal.Zero, fmt.Errorf("schedule.precision must not be negative, got %s", precision)
	}
	return precision, nil
}

// GetDailyTime returns the hour and minute of the daily check in
func (c *DaemonConfig) GetDailyTime() (int, int, error) {
	if c.DailyTime == "" {
		return 20, 0, nil
	}
	t, err := time.Parse("15:04", c.DailyTime)
	if err != nil {
		return 0, 0, fmt.Errorf("daemon.daily_time must be HH:MM, got '%s'", c.DailyTime)
	}
	return t.Hour(), t.Minute(), nil
}

// ExpandEnvVars expands environment variables in config paths
func (c *Config) ExpandEnvVars() {
	c.Calendar.FallbackFile = os.ExpandEnv(c.Calendar.FallbackFile)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
