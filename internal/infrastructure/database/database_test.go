package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		path func(dir string) string
	}{
		{"file in existing directory", func(dir string) string { return filepath.Join(dir, "hwlog.db") }},
		{"nested directory is created", func(dir string) string { return filepath.Join(dir, "data", "nested", "hwlog.db") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := tt.path(t.TempDir())

			db, err := Open(context.Background(), Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer db.Close() //nolint:errcheck // Test cleanup

			if db.Path() != dbPath {
				t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
			}
			if _, err := db.ExecContext(context.Background(), "CREATE TABLE t (x INTEGER)"); err != nil {
				t.Fatalf("CREATE TABLE error = %v", err)
			}
			if _, err := os.Stat(dbPath); err != nil {
				t.Errorf("database file was not created: %v", err)
			}
		})
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Error("Open() with empty path should fail")
	}
}

func TestOpen_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Open(ctx, Config{Path: MemoryPath}); err == nil {
		t.Error("Open() with cancelled context should fail")
	}
}

func TestOpen_Memory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// The table must survive across statements on the pinned connection.
	if _, err := db.ExecContext(ctx, "CREATE TABLE runs_probe (id TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO runs_probe VALUES ('a')"); err != nil {
		t.Fatalf("INSERT error = %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs_probe").Scan(&n); err != nil || n != 1 {
		t.Errorf("COUNT = %d, %v; want 1", n, err)
	}

	if stats := db.Stats(); stats.MaxOpenConnections != 1 {
		t.Errorf("MaxOpenConnections = %v, want 1", stats.MaxOpenConnections)
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"file with WAL", Config{Path: "/tmp/h.db", WALMode: true, BusyTimeout: 2},
			"file:/tmp/h.db?_busy_timeout=2000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"},
		{"file without WAL", Config{Path: "h.db", BusyTimeout: 0},
			"file:h.db?_busy_timeout=0&_foreign_keys=on"},
		{"memory ignores WAL", Config{Path: MemoryPath, WALMode: true, BusyTimeout: 1},
			"file::memory:?_busy_timeout=1000&_foreign_keys=on"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.dsn(); got != tt.want {
				t.Errorf("dsn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	var nilDB *DB
	if err := nilDB.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

// openTestDB opens an in-memory database closed at test end.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), Config{Path: MemoryPath, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	return db
}
