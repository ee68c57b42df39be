// Package executor replays a WAL journal's staged operations against the
// real filesystem, grounded on
// original_source/src-tauri/src/execution/executor.rs's ExecutionEngine:
// build a dag.Graph from the journal's pending entries, run each level's
// entries concurrently, and stop issuing further levels once one entry in
// a level fails (dependents downstream may not be safe to run).
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/sentinelfs/sentinel/internal/dag"
	"github.com/sentinelfs/sentinel/internal/logging"
	"github.com/sentinelfs/sentinel/internal/pathguard"
	"github.com/sentinelfs/sentinel/internal/safeio"
	"github.com/sentinelfs/sentinel/internal/wal"
)

var log = logging.For("executor")

// Result summarizes one journal execution, mirroring
// original_source's ExecutionResult.
type Result struct {
	CompletedCount int
	FailedCount    int
	Errors         []string
	Success        bool
}

// Engine replays journals against the real filesystem.
type Engine struct {
	manager *wal.Manager
	guard   *pathguard.Guard
	stats   *Stats
}

// New returns an Engine persisting through manager and refusing to touch
// paths guard considers protected.
func New(manager *wal.Manager, guard *pathguard.Guard) *Engine {
	if guard == nil {
		guard = pathguard.New()
	}
	return &Engine{manager: manager, guard: guard, stats: NewStats()}
}

// Stats returns the engine's accumulated run statistics.
func (e *Engine) Stats() *Stats { return e.stats }

// ExecuteJournal loads jobID's journal, builds a DAG from its pending
// entries, and executes it level by level.
func (e *Engine) ExecuteJournal(ctx context.Context, jobID string) (*Result, error) {
	journal, ok, err := e.manager.LoadJournal(jobID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("executor: journal not found: %s", jobID)
	}

	pending := journal.PendingEntries()
	if len(pending) == 0 {
		return &Result{Success: true}, nil
	}

	graph, err := dag.FromEntries(pending)
	if err != nil {
		return nil, fmt.Errorf("executor: building execution graph: %w", err)
	}

	log.WithField("entries", graph.Len()).WithField("levels", graph.LevelCount()).
		Info("built execution graph")

	return e.executeGraph(ctx, graph, jobID)
}

func (e *Engine) executeGraph(ctx context.Context, graph *dag.Graph, jobID string) (*Result, error) {
	result := &Result{}

	for levelIdx, level := range graph.Levels() {
		log.WithField("level", levelIdx).WithField("size", len(level)).Debug("executing level")

		completed, failed, errs := e.executeLevel(ctx, level, jobID)
		result.CompletedCount += completed
		result.FailedCount += failed
		result.Errors = append(result.Errors, errs...)

		if failed > 0 {
			log.WithField("level", levelIdx).WithField("failed", failed).
				Warn("level had failures, stopping execution")
			break
		}
	}

	result.Success = result.FailedCount == 0
	return result, nil
}

func (e *Engine) executeLevel(ctx context.Context, entries []wal.Entry, jobID string) (completed, failed int, errs []string) {
	type outcome struct {
		err error
	}
	outcomes := make([]outcome, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			outcomes[i].err = e.executeEntry(gctx, jobID, entry)
			return nil // collect every outcome; errgroup's own error short-circuits nothing here
		})
	}
	_ = g.Wait()

	for i, entry := range entries {
		if err := outcomes[i].err; err != nil {
			failed++
			errs = append(errs, fmt.Sprintf("%s: %v", entry.Operation.Description(), err))
		} else {
			completed++
		}
	}
	return completed, failed, errs
}

// executeEntry marks entry in progress, dispatches its operation, and
// records the outcome back to the journal.
func (e *Engine) executeEntry(ctx context.Context, jobID string, entry wal.Entry) error {
	description := entry.Operation.Description()
	e.stats.Starting(description)

	if err := e.manager.MarkEntryInProgress(jobID, entry.ID); err != nil {
		log.WithError(err).Warn("failed to mark entry in progress")
	}

	bytesMoved, err := e.dispatch(ctx, entry.Operation)
	if err != nil {
		e.stats.Failed(description, err.Error())
		if markErr := e.manager.MarkEntryFailed(jobID, entry.ID, err.Error()); markErr != nil {
			log.WithError(markErr).Warn("failed to mark entry failed")
		}
		return err
	}

	e.stats.Completed(description, bytesMoved)
	if markErr := e.manager.MarkEntryComplete(jobID, entry.ID); markErr != nil {
		log.WithError(markErr).Warn("failed to mark entry complete")
	}
	return nil
}

// ExecuteEntry runs a single entry outside of level grouping, for
// recovery's rollback path.
func (e *Engine) ExecuteEntry(ctx context.Context, jobID string, entry wal.Entry) error {
	return e.executeEntry(ctx, jobID, entry)
}

// dispatch performs the real filesystem mutation for op, mirroring
// execute_operation_sync's match over WALOperationType. It returns the
// number of bytes relocated, for Move/Copy operations, so Stats can
// track throughput.
func (e *Engine) dispatch(ctx context.Context, op wal.Operation) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	switch op.Kind {
	case wal.KindCreateFolder:
		return 0, e.createFolder(op.Path)
	case wal.KindMove:
		size, _ := dirSize(op.Source)
		return size, e.move(op.Source, op.Destination)
	case wal.KindRename:
		return 0, e.rename(op.Path, op.NewName)
	case wal.KindQuarantine:
		size, _ := dirSize(op.Path)
		return size, e.move(op.Path, op.QuarantinePath)
	case wal.KindCopy:
		size, _ := dirSize(op.Source)
		return size, e.copy(op.Source, op.Destination)
	case wal.KindDeleteFolder:
		return 0, e.deleteFolder(op.Path)
	default:
		return 0, fmt.Errorf("executor: unknown operation kind %v", op.Kind)
	}
}

func (e *Engine) createFolder(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.MkdirAll(path, 0o777)
}

func (e *Engine) move(source, destination string) error {
	if _, err := os.Lstat(source); err != nil {
		if os.IsNotExist(err) {
			if _, destErr := os.Lstat(destination); destErr == nil {
				return nil // already moved, likely a resumed job
			}
			return fmt.Errorf("source not found: %s", source)
		}
		return err
	}
	if _, err := os.Lstat(destination); err == nil {
		return fmt.Errorf("destination already exists: %s", destination)
	}
	if e.guard.IsProtected(source) {
		return fmt.Errorf("refusing to move protected path: %s", source)
	}
	if err := safeio.EnsureNotSymlink(source); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o777); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	if err := os.Rename(source, destination); err == nil {
		return nil
	}

	// Cross-device (or otherwise rename-incompatible) fallback: copy then
	// remove the source, after confirming the destination volume has room.
	if ok, spaceErr := hasSpaceFor(destination, source); spaceErr == nil && !ok {
		return fmt.Errorf("insufficient free space at destination for %s", source)
	}

	info, err := os.Lstat(source)
	if err != nil {
		return err
	}
	if info.IsDir() {
		if _, err := safeio.CopyDirSafe(source, destination); err != nil {
			return err
		}
		return os.RemoveAll(source)
	}
	if err := copyFile(source, destination); err != nil {
		return err
	}
	return os.Remove(source)
}

func (e *Engine) rename(path, newName string) error {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			if _, tErr := os.Lstat(filepath.Join(filepath.Dir(path), newName)); tErr == nil {
				return nil // already renamed, likely a resumed job
			}
		}
		return fmt.Errorf("path not found: %s", path)
	}
	if e.guard.IsProtected(path) {
		return fmt.Errorf("refusing to rename protected path: %s", path)
	}
	newPath := filepath.Join(filepath.Dir(path), newName)
	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Errorf("target already exists: %s", newPath)
	}
	return os.Rename(path, newPath)
}

func (e *Engine) copy(source, destination string) error {
	info, err := os.Lstat(source)
	if err != nil {
		return fmt.Errorf("source not found: %s", source)
	}
	if _, err := os.Lstat(destination); err == nil {
		return fmt.Errorf("destination already exists: %s", destination)
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o777); err != nil {
		return err
	}
	if info.IsDir() {
		_, err := safeio.CopyDirSafe(source, destination)
		return err
	}
	return copyFile(source, destination)
}

func (e *Engine) deleteFolder(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if e.guard.IsProtected(path) {
		return fmt.Errorf("refusing to delete protected path: %s", path)
	}
	if !info.IsDir() {
		return os.Remove(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return os.Remove(path)
	}
	return os.RemoveAll(path)
}

func copyFile(source, destination string) error {
	if err := safeio.EnsureNotSymlink(source); err != nil {
		return err
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}
	return safeio.AtomicWrite(destination, data)
}
