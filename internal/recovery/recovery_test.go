package recovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelfs/sentinel/internal/executor"
	"github.com/sentinelfs/sentinel/internal/wal"
)

func newManager(t *testing.T) *wal.Manager {
	t.Helper()
	mgr, err := wal.NewManager(t.TempDir())
	require.NoError(t, err)
	return mgr
}

func TestScanFindsActiveAndInProgressJournals(t *testing.T) {
	mgr := newManager(t)

	active := wal.New("job-active", "/t")
	active.AddOperation(wal.Operation{Kind: wal.KindCreateFolder, Path: "/t/a"})
	require.NoError(t, mgr.SaveJournal(active))

	stuck := wal.New("job-stuck", "/t")
	id := stuck.AddOperation(wal.Operation{Kind: wal.KindMove, Source: "/t/x", Destination: "/t/y"})
	stuck.MarkInProgress(id)
	stuck.Status = wal.JournalInterrupted
	require.NoError(t, mgr.SaveJournal(stuck))

	done := wal.New("job-done", "/t")
	doneID := done.AddOperation(wal.Operation{Kind: wal.KindCreateFolder, Path: "/t/z"})
	done.MarkCompleted(doneID)
	done.Status = wal.JournalCompleted
	require.NoError(t, mgr.SaveJournal(done))

	candidates, err := Scan(mgr)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, c := range candidates {
		ids[c.JobID] = true
	}
	assert.True(t, ids["job-active"])
	assert.True(t, ids["job-stuck"])
	assert.False(t, ids["job-done"])
}

func TestResumeCompletesPendingEntries(t *testing.T) {
	mgr := newManager(t)
	root := t.TempDir()
	eng := executor.New(mgr, nil)

	j := wal.New("job-resume", root)
	j.AddOperation(wal.Operation{Kind: wal.KindCreateFolder, Path: filepath.Join(root, "Docs")})
	require.NoError(t, mgr.SaveJournal(j))

	result, err := Resume(context.Background(), mgr, eng, "job-resume")
	require.NoError(t, err)
	assert.True(t, result.Success)

	info, err := os.Stat(filepath.Join(root, "Docs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRollbackUndoesCreateFolderAndMove(t *testing.T) {
	mgr := newManager(t)
	root := t.TempDir()
	eng := executor.New(mgr, nil)

	folder := filepath.Join(root, "A")
	src := filepath.Join(root, "x.txt")
	dest := filepath.Join(folder, "x.txt")
	require.NoError(t, os.WriteFile(src, []byte("hi"), 0o644))

	j := wal.New("job-rollback", root)
	createID := j.AddOperation(wal.Operation{Kind: wal.KindCreateFolder, Path: folder})
	moveID := j.AddOperation(wal.Operation{Kind: wal.KindMove, Source: src, Destination: dest})
	require.NoError(t, mgr.SaveJournal(j))

	result, err := eng.ExecuteJournal(context.Background(), "job-rollback")
	require.NoError(t, err)
	require.True(t, result.Success)
	_ = createID
	_ = moveID

	rbResult, err := Rollback(context.Background(), mgr, eng, "job-rollback")
	require.NoError(t, err)
	assert.Equal(t, 2, rbResult.Undone)
	assert.Empty(t, rbResult.Errors)

	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(src)
	assert.NoError(t, err)
	_, err = os.Stat(folder)
	assert.True(t, os.IsNotExist(err))

	loaded, ok, err := mgr.LoadJournal("job-rollback")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, wal.JournalRolledBack, loaded.Status)
}

func TestRollbackSkipsDeleteFolder(t *testing.T) {
	mgr := newManager(t)
	root := t.TempDir()
	eng := executor.New(mgr, nil)

	dir := filepath.Join(root, "gone")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	j := wal.New("job-skip", root)
	id := j.AddOperation(wal.Operation{Kind: wal.KindDeleteFolder, Path: dir})
	require.NoError(t, mgr.SaveJournal(j))

	result, err := eng.ExecuteJournal(context.Background(), "job-skip")
	require.NoError(t, err)
	require.True(t, result.Success)
	_ = id

	rbResult, err := Rollback(context.Background(), mgr, eng, "job-skip")
	require.NoError(t, err)
	assert.Equal(t, 0, rbResult.Undone)
	assert.Equal(t, 1, rbResult.Skipped)
}

func TestDiscardRemovesJournal(t *testing.T) {
	mgr := newManager(t)
	j := wal.New("job-discard", "/t")
	require.NoError(t, mgr.SaveJournal(j))

	require.NoError(t, Discard(mgr, "job-discard"))

	_, ok, err := mgr.LoadJournal("job-discard")
	require.NoError(t, err)
	assert.False(t, ok)
}
