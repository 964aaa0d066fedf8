// Package config loads studytrack settings from defaults, an optional config
// file, a local .env file and STUDYTRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/balkashynov/studytrack/internal/tracking"
)

// EnvPrefix prefixes every environment override, e.g. STUDYTRACK_SERVER_PORT
const EnvPrefix = "STUDYTRACK"

// Store backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	CLI      CLIConfig      `mapstructure:"cli"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr is the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	// Path of the sqlite database file; empty means ~/.studytrack/studytrack.db
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

type TrackingConfig struct {
	MinSessionMinutes     int           `mapstructure:"min_session_minutes"`
	MaxSessionMinutes     int           `mapstructure:"max_session_minutes"`
	MinManualMinutes      int           `mapstructure:"min_manual_minutes"`
	MaxPauseMinutes       int           `mapstructure:"max_pause_minutes"`
	DailyCapMinutes       int           `mapstructure:"daily_cap_minutes"`
	ManualEditWindow      time.Duration `mapstructure:"manual_edit_window"`
	SessionEditWindow     time.Duration `mapstructure:"session_edit_window"`
	MaxStatisticsSpanDays int           `mapstructure:"max_statistics_span_days"`
	ManualLookbackYears   int           `mapstructure:"manual_lookback_years"`
	MaxDescriptionLength  int           `mapstructure:"max_description_length"`
	// Timezone is an IANA name; empty uses the machine's local zone
	Timezone string `mapstructure:"timezone"`
}

// Limits converts the tracking section into service limits
func (t TrackingConfig) Limits() tracking.Limits {
	return tracking.Limits{
		MinSessionMinutes:     t.MinSessionMinutes,
		MaxSessionMinutes:     t.MaxSessionMinutes,
		MinManualMinutes:      t.MinManualMinutes,
		MaxPauseMinutes:       t.MaxPauseMinutes,
		DailyCapMinutes:       t.DailyCapMinutes,
		ManualEditWindow:      t.ManualEditWindow,
		SessionEditWindow:     t.SessionEditWindow,
		MaxStatisticsSpanDays: t.MaxStatisticsSpanDays,
		ManualLookbackYears:   t.ManualLookbackYears,
		MaxDescriptionLength:  t.MaxDescriptionLength,
	}
}

// Location resolves Timezone
func (t TrackingConfig) Location() (*time.Location, error) {
	if t.Timezone == "" || strings.EqualFold(t.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return nil, fmt.Errorf("tracking.timezone: %w", err)
	}
	return loc, nil
}

type CLIConfig struct {
	UserID uint `mapstructure:"user_id"`
}

func setDefaults(v *viper.Viper) {
	limits := tracking.DefaultLimits()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})

	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.path", "")

	v.SetDefault("log.mode", "production")
	v.SetDefault("log.level", "info")

	v.SetDefault("tracking.min_session_minutes", limits.MinSessionMinutes)
	v.SetDefault("tracking.max_session_minutes", limits.MaxSessionMinutes)
	v.SetDefault("tracking.min_manual_minutes", limits.MinManualMinutes)
	v.SetDefault("tracking.max_pause_minutes", limits.MaxPauseMinutes)
	v.SetDefault("tracking.daily_cap_minutes", limits.DailyCapMinutes)
	v.SetDefault("tracking.manual_edit_window", limits.ManualEditWindow)
	v.SetDefault("tracking.session_edit_window", limits.SessionEditWindow)
	v.SetDefault("tracking.max_statistics_span_days", limits.MaxStatisticsSpanDays)
	v.SetDefault("tracking.manual_lookback_years", limits.ManualLookbackYears)
	v.SetDefault("tracking.max_description_length", limits.MaxDescriptionLength)
	v.SetDefault("tracking.timezone", "")

	v.SetDefault("cli.user_id", 1)
}

// Load reads the configuration. An explicit path must exist; otherwise a
// file named config.{toml,yaml,json} is looked up in ~/.studytrack and the
// working directory, and its absence is not an error.
func Load(path string) (*Config, error) {
	// a missing .env is the common case
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".studytrack"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendMemory, BackendSQLite, c.Store.Backend)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	t := c.Tracking
	if t.MinSessionMinutes < 1 || t.MaxSessionMinutes < t.MinSessionMinutes {
		return fmt.Errorf("tracking session bounds invalid: min %d, max %d", t.MinSessionMinutes, t.MaxSessionMinutes)
	}
	if t.MinManualMinutes < 1 || t.MinManualMinutes > t.MaxSessionMinutes {
		return fmt.Errorf("tracking.min_manual_minutes must be between 1 and %d", t.MaxSessionMinutes)
	}
	if t.MaxPauseMinutes < 1 || t.DailyCapMinutes < 1 || t.MaxStatisticsSpanDays < 1 || t.ManualLookbackYears < 1 {
		return errors.New("tracking limits must be positive")
	}
	if t.ManualEditWindow <= 0 || t.SessionEditWindow <= 0 {
		return errors.New("tracking edit windows must be positive")
	}

	if _, err := t.Location(); err != nil {
		return err
	}
	return nil
}
