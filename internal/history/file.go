package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// FileName is the watermark file inside the state directory.
const FileName = "history.dat"

// filePermissions is applied to the watermark file before it is renamed into place.
const filePermissions = 0640

// FileStore keeps the watermark as decimal Unix seconds in a plain file.
// Writes go to a temporary file that is renamed over history.dat, so a
// crash never leaves a truncated watermark behind.
type FileStore struct {
	dir  string
	path string
}

// NewFileStore returns a FileStore rooted at dir. The directory is not
// created; see PrepareStateDir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:  dir,
		path: filepath.Join(dir, FileName),
	}
}

// Path returns the watermark file path.
func (s *FileStore) Path() string {
	return s.path
}

// Check succeeds if history.dat is readable and writable, or does not exist yet.
func (s *FileStore) Check(_ context.Context) error {
	err := unix.Access(s.path, unix.R_OK|unix.W_OK)
	if err == nil || errors.Is(err, unix.ENOENT) {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, s.path, err)
}

// Load reads the watermark. A missing file yields Epoch.
func (s *FileStore) Load(_ context.Context) (time.Time, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Epoch, nil
		}
		return Epoch, fmt.Errorf("%w: reading %s: %w", ErrStorage, s.path, err)
	}

	secs, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return Epoch, fmt.Errorf("%w: %s holds %q, not a timestamp", ErrStorage, s.path, truncate(string(data)))
	}

	return time.Unix(secs, 0), nil
}

// Save atomically replaces the watermark with ts.
func (s *FileStore) Save(_ context.Context, ts time.Time) error {
	tmp, err := os.CreateTemp(s.dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Gone after a successful rename

	if _, err := tmp.WriteString(strconv.FormatInt(ts.Unix(), 10)); err != nil {
		tmp.Close() //nolint:errcheck // Write error takes precedence
		return fmt.Errorf("%w: writing %s: %w", ErrStorage, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck // Sync error takes precedence
		return fmt.Errorf("%w: syncing %s: %w", ErrStorage, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrStorage, tmpName, err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrStorage, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", ErrStorage, s.path, err)
	}

	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error {
	return nil
}

// truncate shortens garbled file content for error messages.
func truncate(s string) string {
	const maxLen = 32
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
