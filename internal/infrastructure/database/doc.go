// Package database provides SQLite connectivity for Smart Home Core.
//
// It opens the database with WAL mode and a busy timeout, pins the pool to a
// single connection (SQLite has one writer) and applies schema migrations
// from an fs.FS, normally the embedded migrations package.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are additive: each up file has a matching down file and
// versions sort lexically (YYYYMMDD_HHMMSS).
package database
