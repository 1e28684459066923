package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"TELEGRAM_TOKEN":            "123:abc",
		"TELEGRAM_TARGET_CHAT":      "@snakefrog",
		"TELEGRAM_ALLOWED_USER_IDS": "1, 2;3",
		"SEND_RATE_PER_SEC":         "5",
		"TIME_ZONE":                 "Asia/Yekaterinburg",
		"STORAGE_DRIVER":            "SQLite3",
		"SQLITE_PATH":               "/tmp/cal.db",
		"MONTHLY_CRON":              "0 12 L * *",
		"RUN_TIMEOUT":               "30s",
		"CATCH_UP_ON_START":         "false",
		"LOG_LEVEL":                 "debug",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.TargetChat != "@snakefrog" || cfg.Telegram.SendRatePerSec != 5 {
		t.Errorf("telegram = %+v", cfg.Telegram)
	}
	if !reflect.DeepEqual(cfg.Telegram.AllowedUserIDs, []int64{1, 2, 3}) {
		t.Errorf("allowed = %v", cfg.Telegram.AllowedUserIDs)
	}
	if cfg.TimeZone != "Asia/Yekaterinburg" {
		t.Errorf("tz = %q", cfg.TimeZone)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.SQLitePath != "/tmp/cal.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Schedule.Monthly != "0 12 L * *" || cfg.Schedule.Daily != "0 9 * * *" {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Schedule.RunTimeout != 30*time.Second || cfg.Schedule.CatchUpOnStart {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestApplyEnvPrimaryKeyWins(t *testing.T) {
	t.Parallel()
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"TELEGRAM_BOT_TOKEN":         "primary",
		"TELEGRAM_TOKEN":             "alias",
		"POSTGRES_CONNECTION_STRING": "  ",
		"DATABASE_URI":               "postgres://db/cal",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.Token != "primary" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Storage.PostgresURL != "postgres://db/cal" {
		t.Errorf("postgres url = %q", cfg.Storage.PostgresURL)
	}
}

func TestApplyEnvBadValues(t *testing.T) {
	t.Parallel()
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"TELEGRAM_ALLOWED_USER_IDS": "1,bob",
		"RUN_TIMEOUT":               "soon",
		"CATCH_UP_ON_START":         "maybe",
	}))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	for _, want := range []string{`"bob"`, "RUN_TIMEOUT", "CATCH_UP_ON_START"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
	if !reflect.DeepEqual(cfg.Telegram.AllowedUserIDs, []int64{1}) {
		t.Errorf("allowed = %v", cfg.Telegram.AllowedUserIDs)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	valid := func() *Config {
		c := Default()
		c.Telegram.Token = "t"
		c.Telegram.TargetChat = "1"
		c.Storage.PostgresURL = "postgres://localhost/cal"
		return c
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "TELEGRAM_BOT_TOKEN"},
		{"missing target", func(c *Config) { c.Telegram.TargetChat = "" }, "TELEGRAM_TARGET_CHAT"},
		{"bad zone", func(c *Config) { c.TimeZone = "Mars/Olympus" }, "Mars/Olympus"},
		{"no postgres url", func(c *Config) { c.Storage.PostgresURL = "" }, "POSTGRES_CONNECTION_STRING"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mysql" }, "mysql"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "xml"},
		{"zero rate", func(c *Config) { c.Telegram.SendRatePerSec = 0 }, "send rate"},
	}
	for _, tt := range tests {
		c := valid()
		tt.mutate(c)
		err := c.Validate()
		if !errors.Is(err, ErrInvalid) || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v", tt.name, err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
telegram:
  token: from-file
  target_chat: "-100200"
  allowed_user_ids: [10, 20]
time_zone: Europe/Berlin
storage:
  driver: sqlite
  sqlite_path: cal.db
schedule:
  weekly: "0 20 * * SUN"
  run_timeout: 45s
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	// Environment overrides the file.
	if err := cfg.ApplyEnv(envMap(map[string]string{"TZ": "Europe/Moscow"})); err != nil {
		t.Fatal(err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Telegram.Token != "from-file" || cfg.Telegram.TargetChat != "-100200" {
		t.Errorf("telegram = %+v", cfg.Telegram)
	}
	if !reflect.DeepEqual(cfg.Telegram.AllowedUserIDs, []int64{10, 20}) {
		t.Errorf("allowed = %v", cfg.Telegram.AllowedUserIDs)
	}
	if cfg.TimeZone != "Europe/Moscow" {
		t.Errorf("tz = %q", cfg.TimeZone)
	}
	if cfg.Schedule.Weekly != "0 20 * * SUN" || cfg.Schedule.Daily != "0 9 * * *" || cfg.Schedule.RunTimeout != 45*time.Second {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.SQLitePath != "cal.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()
	if err := Default().LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
