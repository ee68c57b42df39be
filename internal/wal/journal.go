package wal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sentinelfs/sentinel/internal/logging"
	"github.com/sentinelfs/sentinel/internal/safeio"
)

var log = logging.For("wal")

// Manager persists journals under a directory, one JSON file per job,
// grounded on WALManager in original_source/src-tauri/src/wal (reconstructed
// from commands/wal.rs's call sites: new/save_journal/load_journal/
// list_journals/discard_journal/mark_entry_*). Saves go through
// safeio.AtomicWrite so a crash mid-write never corrupts a journal, and a
// per-file advisory lock serializes concurrent save/load from parallel
// executor goroutines.
type Manager struct {
	dir string
}

// NewManager returns a Manager rooted at dir, creating it if necessary.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, fmt.Errorf("wal: creating journal directory %s: %w", dir, err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the journal directory.
func (m *Manager) Dir() string { return m.dir }

func (m *Manager) path(jobID string) string {
	return filepath.Join(m.dir, jobID+".json")
}

func (m *Manager) lockPath(jobID string) string {
	return filepath.Join(m.dir, jobID+".lock")
}

// journalFile is the on-disk shape of a Journal; Entries are serialized
// with string UUIDs since encoding/json has no native UUID support.
type journalFile struct {
	JobID        string      `json:"jobId"`
	TargetFolder string      `json:"targetFolder"`
	CreatedAt    string      `json:"createdAt"`
	Entries      []entryFile `json:"entries"`
	Status       string      `json:"status"`
}

type entryFile struct {
	ID        string   `json:"id"`
	Sequence  uint32   `json:"sequence"`
	DependsOn []string `json:"dependsOn"`
	Status    string   `json:"status"`
	Error     string   `json:"error,omitempty"`
	Operation opFile   `json:"operation"`
}

type opFile struct {
	Type           string `json:"type"`
	Source         string `json:"source,omitempty"`
	Destination    string `json:"destination,omitempty"`
	Path           string `json:"path,omitempty"`
	NewName        string `json:"newName,omitempty"`
	QuarantinePath string `json:"quarantinePath,omitempty"`
}

func statusFromString(s string) Status {
	switch s {
	case "in_progress":
		return StatusInProgress
	case "completed":
		return StatusCompleted
	case "failed":
		return StatusFailed
	case "skipped":
		return StatusSkipped
	default:
		return StatusPending
	}
}

func journalStatusFromString(s string) JournalStatus {
	switch s {
	case "completed":
		return JournalCompleted
	case "failed":
		return JournalFailed
	case "interrupted":
		return JournalInterrupted
	case "rolled_back":
		return JournalRolledBack
	default:
		return JournalActive
	}
}

func kindFromString(s string) OperationKind {
	switch s {
	case "move":
		return KindMove
	case "rename":
		return KindRename
	case "quarantine":
		return KindQuarantine
	case "copy":
		return KindCopy
	case "delete_folder":
		return KindDeleteFolder
	default:
		return KindCreateFolder
	}
}

func toFile(j *Journal) journalFile {
	jf := journalFile{
		JobID:        j.JobID,
		TargetFolder: j.TargetFolder,
		CreatedAt:    j.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"),
		Status:       j.Status.String(),
	}
	for _, e := range j.Entries {
		deps := make([]string, len(e.DependsOn))
		for i, d := range e.DependsOn {
			deps[i] = d.String()
		}
		jf.Entries = append(jf.Entries, entryFile{
			ID:        e.ID.String(),
			Sequence:  e.Sequence,
			DependsOn: deps,
			Status:    e.Status.String(),
			Error:     e.Error,
			Operation: opFile{
				Type:           e.Operation.Kind.String(),
				Source:         e.Operation.Source,
				Destination:    e.Operation.Destination,
				Path:           e.Operation.Path,
				NewName:        e.Operation.NewName,
				QuarantinePath: e.Operation.QuarantinePath,
			},
		})
	}
	return jf
}

func fromFile(jf journalFile) (*Journal, error) {
	j := &Journal{JobID: jf.JobID, TargetFolder: jf.TargetFolder, Status: journalStatusFromString(jf.Status)}
	for _, ef := range jf.Entries {
		id, err := uuid.Parse(ef.ID)
		if err != nil {
			return nil, fmt.Errorf("wal: invalid entry id %q: %w", ef.ID, err)
		}
		deps := make([]uuid.UUID, 0, len(ef.DependsOn))
		for _, d := range ef.DependsOn {
			depID, err := uuid.Parse(d)
			if err != nil {
				return nil, fmt.Errorf("wal: invalid dependency id %q: %w", d, err)
			}
			deps = append(deps, depID)
		}
		j.Entries = append(j.Entries, Entry{
			ID:        id,
			Sequence:  ef.Sequence,
			DependsOn: deps,
			Status:    statusFromString(ef.Status),
			Error:     ef.Error,
			Operation: Operation{
				Kind:           kindFromString(ef.Operation.Type),
				Source:         ef.Operation.Source,
				Destination:    ef.Operation.Destination,
				Path:           ef.Operation.Path,
				NewName:        ef.Operation.NewName,
				QuarantinePath: ef.Operation.QuarantinePath,
			},
		})
	}
	return j, nil
}

// SaveJournal atomically writes j to disk under an exclusive lock.
func (m *Manager) SaveJournal(j *Journal) error {
	unlock, err := lockFile(m.lockPath(j.JobID))
	if err != nil {
		return fmt.Errorf("wal: locking journal %s: %w", j.JobID, err)
	}
	defer unlock()
	return m.writeJournal(j)
}

func (m *Manager) writeJournal(j *Journal) error {
	data, err := json.MarshalIndent(toFile(j), "", "  ")
	if err != nil {
		return fmt.Errorf("wal: encoding journal %s: %w", j.JobID, err)
	}
	if err := safeio.AtomicWrite(m.path(j.JobID), data); err != nil {
		return fmt.Errorf("wal: saving journal %s: %w", j.JobID, err)
	}
	return nil
}

// LoadJournal reads the journal for jobID, returning ok=false if it does
// not exist.
func (m *Manager) LoadJournal(jobID string) (*Journal, bool, error) {
	unlock, err := lockFile(m.lockPath(jobID))
	if err != nil {
		return nil, false, fmt.Errorf("wal: locking journal %s: %w", jobID, err)
	}
	defer unlock()
	return m.readJournal(jobID)
}

func (m *Manager) readJournal(jobID string) (*Journal, bool, error) {
	data, err := os.ReadFile(m.path(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("wal: reading journal %s: %w", jobID, err)
	}

	var jf journalFile
	if err := json.Unmarshal(data, &jf); err != nil {
		return nil, false, fmt.Errorf("wal: decoding journal %s: %w", jobID, err)
	}
	j, err := fromFile(jf)
	if err != nil {
		return nil, false, err
	}
	j.JobID = jobID
	return j, true, nil
}

// ListJournals returns the job IDs of every journal currently on disk,
// sorted for deterministic output.
func (m *Manager) ListJournals() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("wal: listing journal directory: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// DiscardJournal deletes the journal and its lock file for jobID.
func (m *Manager) DiscardJournal(jobID string) error {
	if err := os.Remove(m.path(jobID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("wal: discarding journal %s: %w", jobID, err)
	}
	_ = os.Remove(m.lockPath(jobID))
	return nil
}

// MarkEntryInProgress loads jobID's journal, marks entry as in-progress,
// and saves it back.
func (m *Manager) MarkEntryInProgress(jobID string, entry uuid.UUID) error {
	return m.mutate(jobID, func(j *Journal) { j.MarkInProgress(entry) })
}

// MarkEntryComplete loads jobID's journal, marks entry as completed, and
// saves it back.
func (m *Manager) MarkEntryComplete(jobID string, entry uuid.UUID) error {
	return m.mutate(jobID, func(j *Journal) { j.MarkCompleted(entry) })
}

// MarkEntryFailed loads jobID's journal, marks entry as failed with
// errMsg, and saves it back.
func (m *Manager) MarkEntryFailed(jobID string, entry uuid.UUID, errMsg string) error {
	return m.mutate(jobID, func(j *Journal) { j.MarkFailed(entry, errMsg) })
}

// mutate holds a single exclusive lock across the whole load-modify-save
// cycle for jobID, so concurrent executor goroutines marking different
// entries of the same journal never interleave a save between another
// goroutine's load and save.
func (m *Manager) mutate(jobID string, fn func(*Journal)) error {
	unlock, err := lockFile(m.lockPath(jobID))
	if err != nil {
		return fmt.Errorf("wal: locking journal %s: %w", jobID, err)
	}
	defer unlock()

	j, ok, err := m.readJournal(jobID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("wal: journal not found: %s", jobID)
	}
	fn(j)
	j.RefreshStatus()
	return m.writeJournal(j)
}
