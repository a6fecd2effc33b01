// Package database provides the SQLite handle behind the optional sqlite
// watermark backend.
//
// This package manages:
//   - Opening the database file with WAL mode and a busy timeout
//   - Forward-only schema migrations embedded in the binary
//   - Connection lifecycle and health checks
//
// The collector writes one row per poll cycle at most, so a single
// connection is enough; the pool is pinned to one writer.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: "/var/lib/gruenbeck/state.db", WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
