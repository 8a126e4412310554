package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/fsutil"
)

func TestBackupPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode fsutil.BackupMode
		want string
	}{
		{fsutil.BackupSidecar, "a/b.py.treewrite.bak"},
		{fsutil.BackupNone, ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fsutil.Backups{Mode: tt.mode}.Path("a/b.py"), string(tt.mode))
	}
}

func TestBackupSaveKeepsOldest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "m.py")
	write(t, path, "v1\n", 0o600)
	backups := fsutil.Backups{Mode: fsutil.BackupSidecar}

	content, snap, err := fsutil.ReadFile(ctx, path)
	require.NoError(t, err)

	saved, err := backups.Save(ctx, snap, content)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = backups.Save(ctx, snap, []byte("v2\n"))
	require.NoError(t, err)
	assert.False(t, saved)

	got, err := os.ReadFile(backups.Path(path))
	require.NoError(t, err)
	assert.Equal(t, "v1\n", string(got))

	info, err := os.Stat(backups.Path(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestBackupRestore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "m.py")
	write(t, path, "original\n", 0o644)
	backups := fsutil.Backups{Mode: fsutil.BackupSidecar}

	restored, err := backups.Restore(ctx, path)
	require.NoError(t, err)
	assert.False(t, restored, "nothing to restore")

	content, snap, err := fsutil.ReadFile(ctx, path)
	require.NoError(t, err)
	_, err = backups.Save(ctx, snap, content)
	require.NoError(t, err)
	require.NoError(t, fsutil.Replace(ctx, snap, []byte("rewritten\n")))

	restored, err = backups.Restore(ctx, path)
	require.NoError(t, err)
	assert.True(t, restored)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(got))
	assert.NoFileExists(t, backups.Path(path))
}

func TestBackupNoneIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "m.py")
	write(t, path, "x\n", 0o644)

	content, snap, err := fsutil.ReadFile(ctx, path)
	require.NoError(t, err)

	saved, err := fsutil.Backups{Mode: fsutil.BackupNone}.Save(ctx, snap, content)
	require.NoError(t, err)
	assert.False(t, saved)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
