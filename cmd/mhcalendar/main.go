package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wavky/ManHourCalendar/internal/calendar"
	"github.com/wavky/ManHourCalendar/internal/config"
	"github.com/wavky/ManHourCalendar/internal/manhour"
	"github.com/wavky/ManHourCalendar/internal/render"
	"github.com/wavky/ManHourCalendar/internal/store"
	"github.com/wavky/ManHourCalendar/internal/timemanager"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string
	verbose    bool
	logger     *zap.Logger = zap.NewNop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mhcalendar",
		Short:   "Calendar to manage your man-hour",
		Long:    "Spread the man-hours required this month over the remaining workdays, check in what you worked and plan days off",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err != nil {
				initLogger("info")
				return err
			}

			level := cfg.Log.Level
			if verbose {
				level = "debug"
			}

			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, level)
				if err != nil {
					initLogger(level) // Fallback to console
				}
			} else {
				initLogger(level)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show how the schedule is processed")

	// the calendar is shown when no command is given
	calCmd := calendarCmd()
	rootCmd.Flags().AddFlagSet(calCmd.Flags())
	rootCmd.RunE = calCmd.RunE

	rootCmd.AddCommand(jobCmd())
	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(calCmd)
	rootCmd.AddCommand(checkinCmd())
	rootCmd.AddCommand(pointerCmd())
	rootCmd.AddCommand(dayoffCmd())
	rootCmd.AddCommand(catchupCmd())
	rootCmd.AddCommand(holidaysCmd())
	rootCmd.AddCommand(daemonCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Encoding = "console"

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}

// initializeManager wires the store, the holiday provider and the drawer.
// The returned func closes the store.
func initializeManager(cfg *config.Config) (*timemanager.Manager, func(), error) {
	// Initialize store based on type
	var st store.Store
	var err error

	switch cfg.Store.Type {
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		st, err = store.NewSQLiteStore(cfg.Store.Path, logger)
	default:
		st, err = store.NewFileStore(cfg.Store.Path, logger)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	closeStore := func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}

	provider, err := initializeProvider(cfg, st)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	loc, err := cfg.Locale.Location()
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	drawer := render.NewDrawer(cfg.Render.Width, loc)
	manager := timemanager.NewManager(st, provider, drawer, loc, logger)

	return manager, closeStore, nil
}

// initializeProvider builds the holiday provider chain: API, then local file, behind the store's cache
func initializeProvider(cfg *config.Config, cache calendar.HolidayCache) (calendar.Provider, error) {
	var provider calendar.Provider

	switch cfg.Calendar.Type {
	case config.CalendarService:
		logger.Debug("Using calendar-service.net holidays")
		provider = calendar.NewCalendarServiceProvider(cfg.Calendar.APIURL, cfg.Calendar.GetTimeout(), logger)
	case config.HolidaysJP:
		logger.Debug("Using holidays-jp holidays")
		provider = calendar.NewHolidaysJPProvider(cfg.Calendar.APIURL, cfg.Calendar.GetTimeout(), logger)
	case config.CalendarFile:
		logger.Debug("Using holiday file", zap.String("file", cfg.Calendar.FallbackFile))
		return calendar.NewFileProvider(cfg.Calendar.FallbackFile, logger), nil
	case config.CalendarNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown calendar type: %s", cfg.Calendar.Type)
	}

	if cfg.Calendar.FallbackFile != "" {
		fallback := calendar.NewFileProvider(cfg.Calendar.FallbackFile, logger)
		provider = calendar.NewCompositeProvider(provider, fallback, logger)
	}

	return calendar.NewCachedProvider(provider, cache, cfg.Calendar.GetCacheTTL(), logger), nil
}

// withManager loads the config, runs fn with a manager and closes the store afterwards
func withManager(fn func(cfg *config.Config, m *timemanager.Manager) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	manager, closeStore, err := initializeManager(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(cfg, manager)
}

// explain adds a hint to the errors a user can act on
func explain(err error) error {
	var hint string
	switch {
	case err == nil:
		return nil
	case errors.Is(err, manhour.ErrJobNotSet):
		hint = "create your job first: mhcalendar job set <required_manhour> <daily_work_hours> <hourly_pay> <max_daily_overhours>"
	case errors.Is(err, manhour.ErrMonthNotSet), errors.Is(err, manhour.ErrMonthCompleted):
		hint = "start a new month with: mhcalendar month set [year month]"
	case errors.Is(err, store.ErrLocked):
		hint = "another mhcalendar is running, try again"
	default:
		return err
	}
	return fmt.Errorf("%w\n%s", err, hint)
}
