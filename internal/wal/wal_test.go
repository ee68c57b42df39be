package wal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalAddOperationAssignsID(t *testing.T) {
	j := New("job-1", "/target")
	id := j.AddOperation(Operation{Kind: KindCreateFolder, Path: "/target/Documents"})
	assert.NotEqual(t, id.String(), "")
	assert.Len(t, j.Entries, 1)
	assert.Equal(t, StatusPending, j.Entries[0].Status)
}

func TestJournalMarkLifecycle(t *testing.T) {
	j := New("job-1", "/target")
	id := j.AddOperation(Operation{Kind: KindMove, Source: "/a", Destination: "/b"})

	j.MarkInProgress(id)
	assert.Equal(t, StatusInProgress, j.Entries[0].Status)

	j.MarkCompleted(id)
	assert.Equal(t, StatusCompleted, j.Entries[0].Status)
	assert.Empty(t, j.Entries[0].Error)
}

func TestJournalMarkFailedRecordsError(t *testing.T) {
	j := New("job-1", "/target")
	id := j.AddOperation(Operation{Kind: KindMove, Source: "/a", Destination: "/b"})
	j.MarkFailed(id, "disk full")
	assert.Equal(t, StatusFailed, j.Entries[0].Status)
	assert.Equal(t, "disk full", j.Entries[0].Error)
}

func TestPendingAndCompletedEntries(t *testing.T) {
	j := New("job-1", "/target")
	a := j.AddOperation(Operation{Kind: KindCreateFolder, Path: "/target/A"})
	b := j.AddOperation(Operation{Kind: KindCreateFolder, Path: "/target/B"})
	j.MarkCompleted(a)

	assert.Len(t, j.PendingEntries(), 1)
	assert.Equal(t, b, j.PendingEntries()[0].ID)
	assert.Len(t, j.CompletedEntries(), 1)
	assert.Equal(t, a, j.CompletedEntries()[0].ID)
}

func TestManagerSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	require.NoError(t, err)

	j := New("job-roundtrip", "/target")
	id := j.AddOperation(Operation{Kind: KindRename, Path: "/a/old.txt", NewName: "new.txt"})

	require.NoError(t, mgr.SaveJournal(j))

	loaded, ok, err := mgr.LoadJournal("job-roundtrip")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/target", loaded.TargetFolder)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, id, loaded.Entries[0].ID)
	assert.Equal(t, KindRename, loaded.Entries[0].Operation.Kind)
	assert.Equal(t, "new.txt", loaded.Entries[0].Operation.NewName)
}

func TestManagerLoadMissingJournal(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	require.NoError(t, err)

	_, ok, err := mgr.LoadJournal("does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerListAndDiscardJournals(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, mgr.SaveJournal(New("job-a", "/t")))
	require.NoError(t, mgr.SaveJournal(New("job-b", "/t")))

	ids, err := mgr.ListJournals()
	require.NoError(t, err)
	assert.Equal(t, []string{"job-a", "job-b"}, ids)

	require.NoError(t, mgr.DiscardJournal("job-a"))
	ids, err = mgr.ListJournals()
	require.NoError(t, err)
	assert.Equal(t, []string{"job-b"}, ids)
}

func TestManagerMarkEntryHelpers(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	require.NoError(t, err)

	j := New("job-mark", "/t")
	id := j.AddOperation(Operation{Kind: KindCreateFolder, Path: "/t/X"})
	require.NoError(t, mgr.SaveJournal(j))

	require.NoError(t, mgr.MarkEntryInProgress("job-mark", id))
	loaded, _, _ := mgr.LoadJournal("job-mark")
	assert.Equal(t, StatusInProgress, loaded.Entries[0].Status)

	require.NoError(t, mgr.MarkEntryComplete("job-mark", id))
	loaded, _, _ = mgr.LoadJournal("job-mark")
	assert.Equal(t, StatusCompleted, loaded.Entries[0].Status)
}
