package refactor

import (
	"fmt"
	"os"
	"path/filepath"
)

// Move renames oldPath to newPath, creating missing parent directories. It is
// a no-op when oldPath is already gone, so hosts that moved the entity
// themselves can call it unconditionally.
func Move(oldPath, newPath string) error {
	if _, err := os.Stat(oldPath); os.IsNotExist(err) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("move %s: %w", oldPath, err)
	}
	return nil
}
