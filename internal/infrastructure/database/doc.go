// Package database provides SQLite connectivity for hwlog.
//
// The database holds two things: the named layout library and the history
// of ingested logs. Both are optional; hwlog works without a database when
// database.enabled is false.
//
// This package manages:
//   - Database connection with WAL mode and a busy timeout
//   - Forward-only schema migrations embedded in the binary
//   - STRICT tables for type safety
//
// Usage:
//
//	db, err := database.OpenMigrated(ctx, database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
// Migration files live in the top-level migrations package and are named
// YYYYMMDD_HHMMSS_description.up.sql.
package database
