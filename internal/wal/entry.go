// Package wal implements the write-ahead journal that makes Sentinel's
// commit step crash-recoverable, grounded on
// original_source/src-tauri/src/wal/{mod,io}.rs and the WALEntry/WALJournal
// shapes exercised by src-tauri/src/commands/wal.rs and
// src-tauri/src/execution/executor.rs (entry.rs and journal.rs themselves
// weren't part of the retrieved source, so their public shape is
// reconstructed from those call sites).
package wal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OperationKind enumerates the mutation types a WAL entry can carry,
// mirroring original_source's WALOperationType.
type OperationKind int

const (
	KindCreateFolder OperationKind = iota
	KindMove
	KindRename
	KindQuarantine
	KindCopy
	KindDeleteFolder
)

func (k OperationKind) String() string {
	switch k {
	case KindCreateFolder:
		return "create_folder"
	case KindMove:
		return "move"
	case KindRename:
		return "rename"
	case KindQuarantine:
		return "quarantine"
	case KindCopy:
		return "copy"
	case KindDeleteFolder:
		return "delete_folder"
	default:
		return "unknown"
	}
}

// Operation is one durable, replayable filesystem mutation. As with
// vfsx.PlannedOperation, fields unused by Kind stay at their zero value.
type Operation struct {
	Kind            OperationKind
	Source          string
	Destination     string
	Path            string
	NewName         string
	QuarantinePath  string
}

// Description renders a short human-readable summary for logs, mirroring
// WALOperationType::description used in the executor's log lines.
func (op Operation) Description() string {
	switch op.Kind {
	case KindCreateFolder:
		return fmt.Sprintf("create folder %s", op.Path)
	case KindMove:
		return fmt.Sprintf("move %s -> %s", op.Source, op.Destination)
	case KindRename:
		return fmt.Sprintf("rename %s -> %s", op.Path, op.NewName)
	case KindQuarantine:
		return fmt.Sprintf("quarantine %s -> %s", op.Path, op.QuarantinePath)
	case KindCopy:
		return fmt.Sprintf("copy %s -> %s", op.Source, op.Destination)
	case KindDeleteFolder:
		return fmt.Sprintf("delete folder %s", op.Path)
	default:
		return "unknown operation"
	}
}

// Status is an entry's lifecycle state.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// JournalStatus is a journal's overall lifecycle state, distinct from the
// per-entry Status values its entries carry.
type JournalStatus int

const (
	JournalActive JournalStatus = iota
	JournalCompleted
	JournalFailed
	JournalInterrupted
	JournalRolledBack
)

func (s JournalStatus) String() string {
	switch s {
	case JournalActive:
		return "active"
	case JournalCompleted:
		return "completed"
	case JournalFailed:
		return "failed"
	case JournalInterrupted:
		return "interrupted"
	case JournalRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Entry is one node of the dependency graph the DAG builds and the
// executor replays.
type Entry struct {
	ID        uuid.UUID
	Sequence  uint32
	DependsOn []uuid.UUID
	Status    Status
	Operation Operation
	Error     string
}

// NewEntry creates a pending entry with no dependencies.
func NewEntry(op Operation, sequence uint32) Entry {
	return Entry{ID: uuid.New(), Sequence: sequence, Operation: op, Status: StatusPending}
}

// NewEntryWithDeps creates a pending entry that depends on the given
// entry IDs.
func NewEntryWithDeps(op Operation, sequence uint32, dependsOn []uuid.UUID) Entry {
	e := NewEntry(op, sequence)
	e.DependsOn = dependsOn
	return e
}

// Journal is the durable record of one organize job: its target folder
// and every operation staged against it, in the order they were added.
type Journal struct {
	JobID        string
	TargetFolder string
	CreatedAt    time.Time
	Entries      []Entry
	Status       JournalStatus
}

// New creates an empty, active journal for jobID against targetFolder.
func New(jobID, targetFolder string) *Journal {
	return &Journal{JobID: jobID, TargetFolder: targetFolder, CreatedAt: time.Now(), Status: JournalActive}
}

// AddEntry appends an already-constructed entry.
func (j *Journal) AddEntry(e Entry) {
	j.Entries = append(j.Entries, e)
}

// AddOperation appends a new, dependency-free entry for op and returns its
// ID.
func (j *Journal) AddOperation(op Operation) uuid.UUID {
	e := NewEntry(op, uint32(len(j.Entries)))
	j.AddEntry(e)
	return e.ID
}

// AddOperationWithDeps appends a new entry for op depending on dependsOn
// and returns its ID.
func (j *Journal) AddOperationWithDeps(op Operation, dependsOn []uuid.UUID) uuid.UUID {
	e := NewEntryWithDeps(op, uint32(len(j.Entries)), dependsOn)
	j.AddEntry(e)
	return e.ID
}

// PendingEntries returns entries that are pending or in progress (failed
// and skipped entries are excluded), the set execute_journal resumes from.
func (j *Journal) PendingEntries() []Entry {
	var out []Entry
	for _, e := range j.Entries {
		if e.Status == StatusPending || e.Status == StatusInProgress {
			out = append(out, e)
		}
	}
	return out
}

// CompletedEntries returns entries that finished successfully, the set
// rollback undoes in reverse order.
func (j *Journal) CompletedEntries() []Entry {
	var out []Entry
	for _, e := range j.Entries {
		if e.Status == StatusCompleted {
			out = append(out, e)
		}
	}
	return out
}

func (j *Journal) indexOf(id uuid.UUID) int {
	for i := range j.Entries {
		if j.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

// MarkInProgress transitions entry id to in-progress.
func (j *Journal) MarkInProgress(id uuid.UUID) {
	if i := j.indexOf(id); i >= 0 {
		j.Entries[i].Status = StatusInProgress
	}
}

// MarkCompleted transitions entry id to completed.
func (j *Journal) MarkCompleted(id uuid.UUID) {
	if i := j.indexOf(id); i >= 0 {
		j.Entries[i].Status = StatusCompleted
		j.Entries[i].Error = ""
	}
}

// MarkFailed transitions entry id to failed, recording errMsg.
func (j *Journal) MarkFailed(id uuid.UUID, errMsg string) {
	if i := j.indexOf(id); i >= 0 {
		j.Entries[i].Status = StatusFailed
		j.Entries[i].Error = errMsg
	}
}

// RefreshStatus recomputes the journal's overall status from its entries'
// current statuses: Failed if any entry failed, Completed if every entry
// reached a terminal completed/skipped state, Active otherwise. It never
// overwrites an Interrupted or RolledBack status. RolledBack is set by
// recovery's rollback; nothing in this repository sets Interrupted.
func (j *Journal) RefreshStatus() {
	if j.Status == JournalInterrupted || j.Status == JournalRolledBack {
		return
	}

	anyFailed, allDone := false, true
	for _, e := range j.Entries {
		switch e.Status {
		case StatusFailed:
			anyFailed = true
		case StatusCompleted, StatusSkipped:
		default:
			allDone = false
		}
	}

	switch {
	case anyFailed:
		j.Status = JournalFailed
	case allDone:
		j.Status = JournalCompleted
	default:
		j.Status = JournalActive
	}
}
