package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/database"
)

// DatabaseName is the SQLite file inside the state directory.
const DatabaseName = "history.db"

// SQLiteStore keeps the watermark in a single-row table. The schema is
// created by the embedded migrations; callers must import the migrations
// package so database.MigrationsFS is populated.
type SQLiteStore struct {
	db *database.DB
}

// OpenSQLiteStore opens (or creates) history.db in dir and applies migrations.
//
// Parameters:
//   - ctx: Context for the connection check and migrations
//   - dir: State directory
//
// Returns:
//   - *SQLiteStore: Ready store
//   - error: Wrapping ErrUnavailable if the database cannot be opened or migrated
func OpenSQLiteStore(ctx context.Context, dir string) (*SQLiteStore, error) {
	db, err := database.Open(ctx, database.Config{
		Path:    filepath.Join(dir, DatabaseName),
		WALMode: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Check verifies the database still answers queries.
func (s *SQLiteStore) Check(ctx context.Context) error {
	if err := s.db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Load returns the stored watermark, or Epoch if no row exists.
func (s *SQLiteStore) Load(ctx context.Context) (time.Time, error) {
	var secs int64
	err := s.db.QueryRowContext(ctx, "SELECT last_reported FROM watermark WHERE id = 1").Scan(&secs)
	if errors.Is(err, sql.ErrNoRows) {
		return Epoch, nil
	}
	if err != nil {
		return Epoch, fmt.Errorf("%w: loading watermark: %w", ErrStorage, err)
	}
	return time.Unix(secs, 0), nil
}

// Save upserts the watermark row.
func (s *SQLiteStore) Save(ctx context.Context, ts time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watermark (id, last_reported, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_reported = excluded.last_reported,
			updated_at    = excluded.updated_at`,
		ts.Unix(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: saving watermark: %w", ErrStorage, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
