package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Directory modes used when creating the state location.
const (
	parentDirPermissions = 0755
	stateDirPermissions  = 0750
)

// PrepareStateDir creates dir (mode 0750) and its parent (mode 0755) if
// needed, then verifies the process can read and write dir. Existing
// directories keep their mode.
//
// Returns an error wrapping ErrUnavailable when history must be disabled.
func PrepareStateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: no state directory configured", ErrUnavailable)
	}

	if err := mkdirIfMissing(filepath.Dir(dir), parentDirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := mkdirIfMissing(dir, stateDirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if err := unix.Access(dir, unix.R_OK|unix.W_OK); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, dir, err)
	}

	return nil
}

func mkdirIfMissing(dir string, perm os.FileMode) error {
	err := os.Mkdir(dir, perm)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return nil
	}
	return fmt.Errorf("creating %s: %w", dir, err)
}
