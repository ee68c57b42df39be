package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelfs/sentinel/internal/wal"
)

func newTestEngine(t *testing.T) (*Engine, *wal.Manager, string) {
	t.Helper()
	walDir := t.TempDir()
	mgr, err := wal.NewManager(walDir)
	require.NoError(t, err)
	return New(mgr, nil), mgr, t.TempDir()
}

func TestExecuteCreateFolder(t *testing.T) {
	eng, mgr, root := newTestEngine(t)
	target := filepath.Join(root, "Documents")

	j := wal.New("job-create", root)
	j.AddOperation(wal.Operation{Kind: wal.KindCreateFolder, Path: target})
	require.NoError(t, mgr.SaveJournal(j))

	result, err := eng.ExecuteJournal(context.Background(), "job-create")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.CompletedCount)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExecuteMove(t *testing.T) {
	eng, mgr, root := newTestEngine(t)
	source := filepath.Join(root, "a.txt")
	dest := filepath.Join(root, "sub", "a.txt")
	require.NoError(t, os.WriteFile(source, []byte("hello"), 0o644))

	j := wal.New("job-move", root)
	j.AddOperation(wal.Operation{Kind: wal.KindMove, Source: source, Destination: dest})
	require.NoError(t, mgr.SaveJournal(j))

	result, err := eng.ExecuteJournal(context.Background(), "job-move")
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = os.Stat(source)
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	completed, failed, _ := eng.Stats().Snapshot()
	assert.Equal(t, int64(1), completed)
	assert.Equal(t, int64(0), failed)
}

func TestExecuteLevelParallel(t *testing.T) {
	eng, mgr, root := newTestEngine(t)

	j := wal.New("job-parallel", root)
	for i := 0; i < 5; i++ {
		j.AddOperation(wal.Operation{Kind: wal.KindCreateFolder, Path: filepath.Join(root, "dir", string(rune('A'+i)))})
	}
	require.NoError(t, mgr.SaveJournal(j))

	result, err := eng.ExecuteJournal(context.Background(), "job-parallel")
	require.NoError(t, err)
	assert.Equal(t, 5, result.CompletedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.True(t, result.Success)
}

func TestExecuteStopsAfterFailedLevel(t *testing.T) {
	eng, mgr, root := newTestEngine(t)

	j := wal.New("job-fail", root)
	missingSource := filepath.Join(root, "missing.txt")
	firstID := j.AddOperation(wal.Operation{Kind: wal.KindMove, Source: missingSource, Destination: filepath.Join(root, "out.txt")})
	j.AddOperationWithDeps(wal.Operation{Kind: wal.KindCreateFolder, Path: filepath.Join(root, "never")}, []uuid.UUID{firstID})
	require.NoError(t, mgr.SaveJournal(j))

	result, err := eng.ExecuteJournal(context.Background(), "job-fail")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.CompletedCount)
	assert.Equal(t, 1, result.FailedCount)
}

func TestExecuteRenameFailsWhenTargetExists(t *testing.T) {
	eng, mgr, root := newTestEngine(t)
	path := filepath.Join(root, "old.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("y"), 0o644))

	j := wal.New("job-rename", root)
	j.AddOperation(wal.Operation{Kind: wal.KindRename, Path: path, NewName: "new.txt"})
	require.NoError(t, mgr.SaveJournal(j))

	result, err := eng.ExecuteJournal(context.Background(), "job-rename")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.FailedCount)
}

func TestExecuteDeleteFolderRemovesEmptyDir(t *testing.T) {
	eng, mgr, root := newTestEngine(t)
	dir := filepath.Join(root, "empty")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	j := wal.New("job-delete", root)
	j.AddOperation(wal.Operation{Kind: wal.KindDeleteFolder, Path: dir})
	require.NoError(t, mgr.SaveJournal(j))

	result, err := eng.ExecuteJournal(context.Background(), "job-delete")
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
