package database

import (
	"reflect"
	"strings"
	"testing"
)

func TestMigrationFiles(t *testing.T) {
	t.Parallel()
	files, err := MigrationFiles()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"001_calendar.sql", "002_notification_runs.sql"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
}

func TestLedgerMigrationHasUniquePeriodKey(t *testing.T) {
	t.Parallel()
	b, err := migrationsFS.ReadFile("migrations/002_notification_runs.sql")
	if err != nil {
		t.Fatal(err)
	}
	sql := string(b)
	if !strings.Contains(sql, "CREATE UNIQUE INDEX") ||
		!strings.Contains(sql, "(digest_kind, period_start_local, period_end_local, time_zone_id)") {
		t.Fatalf("ledger migration lacks the unique period key:\n%s", sql)
	}
	// Period bounds are wall-clock readings and must not be shifted by the server zone.
	if !strings.Contains(sql, "period_start_local   TIMESTAMP NOT NULL") {
		t.Fatal("period_start_local should be timestamp without time zone")
	}
}
