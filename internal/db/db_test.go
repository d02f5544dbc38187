package db

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func TestOpenCreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestMigrationsApplied(t *testing.T) {
	db, err := Open(openTestDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	tables := []string{"schema_migrations", "local_storage", "downloads"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := openTestDB(t)

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	_ = db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 recorded migrations, got %d", count)
	}
}

func TestStorageRoundTrip(t *testing.T) {
	db, err := Open(openTestDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, ok, err := GetValue(db, "missing"); err != nil || ok {
		t.Fatalf("GetValue(missing) = ok %v, err %v; want false, nil", ok, err)
	}

	if err := SetValue(db, "k", "v1"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := SetValue(db, "k", "v2"); err != nil {
		t.Fatalf("SetValue overwrite: %v", err)
	}

	v, ok, err := GetValue(db, "k")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("GetValue(k) = %q, %v, %v; want v2, true, nil", v, ok, err)
	}

	if err := DeleteValue(db, "k"); err != nil {
		t.Fatalf("DeleteValue: %v", err)
	}
	if err := DeleteValue(db, "k"); err != nil {
		t.Fatalf("DeleteValue twice: %v", err)
	}
	if _, ok, _ := GetValue(db, "k"); ok {
		t.Error("expected key to be gone after delete")
	}
}

func TestDownloads(t *testing.T) {
	db, err := Open(openTestDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := RecordDownload(db, "department", "export", "department_20260101_120000.xlsx", 1024); err != nil {
		t.Fatalf("RecordDownload: %v", err)
	}
	if _, err := RecordDownload(db, "contact", "template", "contact_template.xlsx", 512); err != nil {
		t.Fatalf("RecordDownload: %v", err)
	}

	all, err := ListDownloads(db, "", 0)
	if err != nil {
		t.Fatalf("ListDownloads: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 downloads, got %d", len(all))
	}
	if all[0].Resource != "contact" {
		t.Errorf("expected newest first, got %q", all[0].Resource)
	}

	deps, err := ListDownloads(db, "department", 10)
	if err != nil {
		t.Fatalf("ListDownloads(department): %v", err)
	}
	if len(deps) != 1 || deps[0].Size != 1024 || deps[0].Kind != "export" {
		t.Errorf("unexpected department downloads: %+v", deps)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     int
		wantErr  bool
	}{
		{"valid", "001_create_local_storage.sql", 1, false},
		{"valid large", "123_add_column.sql", 123, false},
		{"missing underscore", "001.sql", 0, true},
		{"empty prefix", "_create_tables.sql", 0, true},
		{"non-numeric prefix", "abc_create_tables.sql", 0, true},
		{"empty string", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVersion(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseVersion(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("parseVersion(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}
