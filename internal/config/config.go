package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Limits      LimitsConfig
	Calibration CalibrationConfig
	Chart       ChartConfig
	Reporting   ReportingConfig
	Notify      NotifyConfig
	Log         LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Host string
	Port string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// StorageConfig points at the local record database.
type StorageConfig struct {
	Path string
}

// LimitsConfig holds the acceptable slump range in inches.
type LimitsConfig struct {
	SlumpMin float64
	SlumpMax float64
}

// Contains reports whether a slump value is within the acceptable range.
func (l LimitsConfig) Contains(v float64) bool {
	return v >= l.SlumpMin && v <= l.SlumpMax
}

// ChartConfig sets the raster size of report charts.
type ChartConfig struct {
	Width  int
	Height int
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	OutputDir    string
}

// NotifyConfig configures optional delivery of scheduled report summaries.
type NotifyConfig struct {
	WebhookURL string
}

// Enabled reports whether a delivery target is configured.
func (n NotifyConfig) Enabled() bool { return n.WebhookURL != "" }

// LogConfig tunes the structured logger.
type LogConfig struct {
	Debug bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	slumpMin, err := getenvFloat("SLUMP_MIN", 8)
	if err != nil {
		return nil, err
	}
	slumpMax, err := getenvFloat("SLUMP_MAX", 11)
	if err != nil {
		return nil, err
	}
	width, err := getenvInt("CHART_WIDTH", 900)
	if err != nil {
		return nil, err
	}
	height, err := getenvInt("CHART_HEIGHT", 360)
	if err != nil {
		return nil, err
	}

	calibration, err := LoadCalibration(os.Getenv("CALIBRATION_FILE"))
	if err != nil {
		return nil, err
	}
	if calibration.ReadingsA, err = getenvInt("RESIST_A_READINGS", calibration.ReadingsA); err != nil {
		return nil, err
	}
	if calibration.ReadingsB, err = getenvInt("RESIST_B_READINGS", calibration.ReadingsB); err != nil {
		return nil, err
	}

	debug, err := getenvBool("LOG_DEBUG", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getenvWithDefault("APP_HOST", "127.0.0.1"),
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Storage: StorageConfig{
			Path: getenvWithDefault("DB_PATH", "data/ceqc.db"),
		},
		Limits: LimitsConfig{
			SlumpMin: slumpMin,
			SlumpMax: slumpMax,
		},
		Calibration: calibration,
		Chart: ChartConfig{
			Width:  width,
			Height: height,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvSchedule("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Lima"),
			OutputDir:    getenvWithDefault("REPORT_OUTPUT_DIR", "reports"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		Log: LogConfig{
			Debug: debug,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Storage.Path == "" {
		return errors.New("DB_PATH must not be empty")
	}

	if c.Limits.SlumpMin > c.Limits.SlumpMax {
		return fmt.Errorf("SLUMP_MIN (%g) must not exceed SLUMP_MAX (%g)", c.Limits.SlumpMin, c.Limits.SlumpMax)
	}

	switch {
	case c.Chart.Width < 320:
		return errors.New("CHART_WIDTH must be at least 320")
	case c.Chart.Height < 160:
		return errors.New("CHART_HEIGHT must be at least 160")
	}

	if err := c.Calibration.Validate(); err != nil {
		return err
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Reporting.OutputDir == "" {
		return errors.New("REPORT_OUTPUT_DIR must not be empty")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getenvSchedule keeps an explicitly empty value, and "off", so the daily
// report can be disabled. Only an unset key falls back.
func getenvSchedule(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "off") {
		return ""
	}
	return value
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}
