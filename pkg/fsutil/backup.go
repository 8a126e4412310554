package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupMode selects where backups go.
type BackupMode string

const (
	// BackupSidecar keeps the backup next to the file, with BackupSuffix.
	BackupSidecar BackupMode = "sidecar"

	// BackupNone disables backups.
	BackupNone BackupMode = "none"
)

// BackupSuffix is appended to a path to name its sidecar backup.
const BackupSuffix = ".treewrite.bak"

// Backups saves and restores original file contents.
type Backups struct {
	Mode BackupMode
}

// Path returns the backup path for path, or "" when backups are off.
func (b Backups) Path(path string) string {
	if b.Mode == BackupNone || b.Mode == "" {
		return ""
	}
	return path + BackupSuffix
}

// Save copies content, the original text of the file at snap.Path, to its
// backup. An existing backup is kept so repeated runs never lose the
// oldest original. It reports whether a backup was written.
func (b Backups) Save(ctx context.Context, snap *Snapshot, content []byte) (bool, error) {
	backup := b.Path(snap.Path)
	if backup == "" {
		return false, nil
	}

	_, err := os.Stat(backup)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat backup: %w", err)
	}

	if err := WriteAtomic(ctx, backup, content, snap.Mode); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}

// Restore copies the backup of path back over it and removes the backup.
// It reports false when there is no backup.
func (b Backups) Restore(ctx context.Context, path string) (bool, error) {
	backup := b.Path(path)
	if backup == "" {
		return false, nil
	}

	content, snap, err := ReadFile(ctx, backup)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := WriteAtomic(ctx, path, content, snap.Mode); err != nil {
		return false, fmt.Errorf("restore %s: %w", path, err)
	}
	if err := os.Remove(backup); err != nil {
		return true, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}
