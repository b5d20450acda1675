package database

import (
	"context"
	"testing"
	"testing/fstest"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260301_090000_create_readings.up.sql": {
			Data: []byte("CREATE TABLE test_readings (id TEXT PRIMARY KEY, measurement TEXT NOT NULL);"),
		},
		"20260301_090000_create_readings.down.sql": {
			Data: []byte("DROP TABLE test_readings;"),
		},
		"20260302_100000_add_unit.up.sql": {
			Data: []byte("ALTER TABLE test_readings ADD COLUMN unit TEXT;"),
		},
		"README.md": {Data: []byte("ignored")},
	}
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	source := testMigrations()

	if err := db.Migrate(ctx, source); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO test_readings (id, measurement, unit) VALUES ('a', '21.5', '°C')"); err != nil {
		t.Fatalf("schema not applied: %v", err)
	}

	applied, pending, err := db.GetMigrationStatus(ctx, source)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("expected 2 applied migrations, got %d", len(applied))
	}
	if len(pending) != 0 {
		t.Errorf("expected 0 pending migrations, got %d", len(pending))
	}
	if applied[0].Version != "20260301_090000" {
		t.Errorf("applied[0].Version = %q, want oldest first", applied[0].Version)
	}

	if err := db.Migrate(ctx, source); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrate_FailureStopsAtBrokenMigration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	source := testMigrations()
	source["20260302_100000_add_unit.up.sql"] = &fstest.MapFile{Data: []byte("ALTER TABLE missing ADD COLUMN x;")}

	if err := db.Migrate(ctx, source); err == nil {
		t.Fatal("Migrate() expected error for broken migration")
	}

	applied, pending, err := db.GetMigrationStatus(ctx, source)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) != 1 || len(pending) != 1 {
		t.Errorf("applied=%d pending=%d, want 1 and 1", len(applied), len(pending))
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	source := fstest.MapFS{
		"20260301_090000_create_readings.up.sql":   testMigrations()["20260301_090000_create_readings.up.sql"],
		"20260301_090000_create_readings.down.sql": testMigrations()["20260301_090000_create_readings.down.sql"],
	}

	if err := db.Migrate(ctx, source); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, source); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='test_readings'",
	).Scan(&count); err != nil {
		t.Fatalf("query error: %v", err)
	}
	if count != 0 {
		t.Error("table test_readings should have been dropped")
	}

	applied, _, err := db.GetMigrationStatus(ctx, source)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected 0 applied migrations after rollback, got %d", len(applied))
	}

	if err := db.MigrateDown(ctx, source); err != nil {
		t.Errorf("MigrateDown() with nothing applied error = %v", err)
	}
}

func TestMigrateDown_NoDownSQL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	source := testMigrations()

	if err := db.Migrate(ctx, source); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, source); err == nil {
		t.Error("MigrateDown() expected error for migration without down SQL")
	}
}

func TestMigrateNoMigrations(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(context.Background(), nil); err != nil {
		t.Fatalf("Migrate() with nil source error = %v", err)
	}
	if err := db.Migrate(context.Background(), fstest.MapFS{}); err != nil {
		t.Fatalf("Migrate() with empty source error = %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantIsUp    bool
		wantOk      bool
	}{
		{"valid up migration", "20260301_090000_initial_schema.up.sql", "20260301_090000", true, true},
		{"valid down migration", "20260301_090000_initial_schema.down.sql", "20260301_090000", false, true},
		{"not sql file", "readme.txt", "", false, false},
		{"missing direction", "20260301_090000_initial_schema.sql", "", false, false},
		{"invalid format", "invalid.up.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %v, want %v", version, tt.wantVersion)
			}
			if isUp != tt.wantIsUp {
				t.Errorf("isUp = %v, want %v", isUp, tt.wantIsUp)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20260301_090000_initial_schema.up.sql", "initial_schema"},
		{"20260301_090000_initial_schema.down.sql", "initial_schema"},
		{"20260302_100000_add_location_to_houses.up.sql", "add_location_to_houses"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := extractMigrationName(tt.filename); got != tt.want {
				t.Errorf("extractMigrationName(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
