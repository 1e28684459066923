// Package config loads settings from an optional YAML file, a .env file and
// the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type TelegramConfig struct {
	Token          string  `yaml:"token"`
	TargetChat     string  `yaml:"target_chat"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids"`
	SendRatePerSec int     `yaml:"send_rate_per_sec"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	PostgresURL string `yaml:"postgres_url"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type ScheduleConfig struct {
	Daily          string        `yaml:"daily"`
	Weekly         string        `yaml:"weekly"`
	Monthly        string        `yaml:"monthly"`
	RunTimeout     time.Duration `yaml:"run_timeout"`
	CatchUpOnStart bool          `yaml:"catch_up_on_start"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	TimeZone string         `yaml:"time_zone"`
	Storage  StorageConfig  `yaml:"storage"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Log      LogConfig      `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{SendRatePerSec: 1},
		TimeZone: "Europe/Moscow",
		Storage:  StorageConfig{Driver: DriverPostgres, SQLitePath: "data/calendar.db"},
		Schedule: ScheduleConfig{
			Daily:          "0 9 * * *",
			Weekly:         "0 21 * * SUN",
			Monthly:        "0 18 L * *",
			RunTimeout:     2 * time.Minute,
			CatchUpOnStart: true,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment, and validates the result.
func Load() (*Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. lookup is os.LookupEnv
// outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	var errs []error
	setStr := func(dst *string, keys ...string) {
		if v, ok := get(keys...); ok {
			*dst = v
		}
	}

	setStr(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN")
	setStr(&c.Telegram.TargetChat, "TELEGRAM_TARGET_CHAT")
	if v, ok := get("TELEGRAM_ALLOWED_USER_IDS"); ok {
		ids, err := ParseUserIDs(v)
		if err != nil {
			errs = append(errs, err)
		}
		c.Telegram.AllowedUserIDs = ids
	}
	if v, ok := get("SEND_RATE_PER_SEC"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SEND_RATE_PER_SEC: %w", err))
		} else {
			c.Telegram.SendRatePerSec = n
		}
	}

	setStr(&c.TimeZone, "TZ", "TIME_ZONE")
	setStr(&c.Storage.Driver, "STORAGE_DRIVER")
	setStr(&c.Storage.PostgresURL, "POSTGRES_CONNECTION_STRING", "DATABASE_URI")
	setStr(&c.Storage.SQLitePath, "SQLITE_PATH")

	setStr(&c.Schedule.Daily, "DAILY_CRON")
	setStr(&c.Schedule.Weekly, "WEEKLY_CRON")
	setStr(&c.Schedule.Monthly, "MONTHLY_CRON")
	if v, ok := get("RUN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("RUN_TIMEOUT: %w", err))
		} else {
			c.Schedule.RunTimeout = d
		}
	}
	if v, ok := get("CATCH_UP_ON_START"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CATCH_UP_ON_START: %w", err))
		} else {
			c.Schedule.CatchUpOnStart = b
		}
	}

	setStr(&c.Log.Level, "LOG_LEVEL")
	setStr(&c.Log.Format, "LOG_FORMAT")

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// ParseUserIDs parses a comma or whitespace separated list of user ids.
func ParseUserIDs(s string) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == ' ' || r == '\t' })
	ids := make([]int64, 0, len(fields))
	var errs []error
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS: %q is not a user id", f))
			continue
		}
		ids = append(ids, id)
	}
	return ids, errors.Join(errs...)
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	d := Default()
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.Storage.Driver == "sqlite3" {
		c.Storage.Driver = DriverSQLite
	}
	if strings.TrimSpace(c.TimeZone) == "" {
		c.TimeZone = d.TimeZone
	}
	if c.Schedule.Daily == "" {
		c.Schedule.Daily = d.Schedule.Daily
	}
	if c.Schedule.Weekly == "" {
		c.Schedule.Weekly = d.Schedule.Weekly
	}
	if c.Schedule.Monthly == "" {
		c.Schedule.Monthly = d.Schedule.Monthly
	}
	if c.Schedule.RunTimeout == 0 {
		c.Schedule.RunTimeout = d.Schedule.RunTimeout
	}
	if c.Telegram.SendRatePerSec == 0 {
		c.Telegram.SendRatePerSec = d.Telegram.SendRatePerSec
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if c.Telegram.TargetChat == "" {
		errs = append(errs, errors.New("TELEGRAM_TARGET_CHAT is required"))
	}
	if c.Telegram.SendRatePerSec < 1 {
		errs = append(errs, fmt.Errorf("send rate must be at least 1, got %d", c.Telegram.SendRatePerSec))
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("time zone %q: %w", c.TimeZone, err))
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.PostgresURL == "" {
			errs = append(errs, errors.New("POSTGRES_CONNECTION_STRING is required for the postgres driver"))
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Schedule.RunTimeout < 0 {
		errs = append(errs, fmt.Errorf("run timeout must be positive, got %s", c.Schedule.RunTimeout))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format must be console or json, got %q", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
