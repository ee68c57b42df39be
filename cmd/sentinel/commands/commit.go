package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sentinelfs/sentinel/internal/vfsx"
	"github.com/sentinelfs/sentinel/internal/wal"
)

var commitCmd = &cobra.Command{
	Use:   "commit <root>",
	Short: "Apply a rule file and persist the plan as a WAL journal, without executing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommit,
}

var commitRulesFile string
var commitOpsFile string

func init() {
	rootCmd.AddCommand(commitCmd)
	commitCmd.Flags().StringVar(&commitRulesFile, "rules", "", "YAML rule file")
	commitCmd.Flags().StringVar(&commitOpsFile, "ops", "", "JSON manual operation list")
	commitCmd.MarkFlagsMutuallyExclusive("rules", "ops")
}

// stagedToJournal converts a VFS's staged plan into a journal. ApplyRules
// prepends every CreateFolder ahead of the operations it serves, but that
// array order says nothing about DAG levels: without an explicit
// DependsOn, a freshly-created folder and a move into it would land in
// the same dependency-free level and could run concurrently. So every
// operation whose destination or target directory sits under a folder
// this plan creates is wired to depend on that folder's CreateFolder
// entry.
func stagedToJournal(jobID string, vfs *vfsx.VFS) *wal.Journal {
	j := wal.New(jobID, vfs.Root())
	folderEntries := make(map[string]uuid.UUID)

	for _, op := range vfs.Operations() {
		walOp := toWALOperation(op)
		deps := dependenciesFor(walOp, folderEntries)
		id := j.AddOperationWithDeps(walOp, deps)
		if op.Type == vfsx.OpCreateFolder {
			folderEntries[filepath.Clean(op.Path)] = id
		}
	}
	return j
}

// dependenciesFor returns the folder-creation entries op's target
// directory descends from, so the executor never races a move against
// the mkdir it needs.
func dependenciesFor(op wal.Operation, folderEntries map[string]uuid.UUID) []uuid.UUID {
	target := op.Destination
	if target == "" {
		target = op.QuarantinePath
	}
	if target == "" {
		target = op.Path
	}
	if target == "" {
		return nil
	}

	var deps []uuid.UUID
	for dir := filepath.Clean(filepath.Dir(target)); ; {
		if id, ok := folderEntries[dir]; ok {
			deps = append(deps, id)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return deps
}

func toWALOperation(op vfsx.PlannedOperation) wal.Operation {
	switch op.Type {
	case vfsx.OpCreateFolder:
		return wal.Operation{Kind: wal.KindCreateFolder, Path: op.Path}
	case vfsx.OpMove, vfsx.OpTrash:
		return wal.Operation{Kind: wal.KindMove, Source: op.Source, Destination: op.Destination}
	case vfsx.OpRename:
		return wal.Operation{Kind: wal.KindRename, Path: op.Path, NewName: op.NewName}
	case vfsx.OpCopy:
		return wal.Operation{Kind: wal.KindCopy, Source: op.Source, Destination: op.Destination}
	case vfsx.OpQuarantine:
		return wal.Operation{Kind: wal.KindQuarantine, Path: op.Path, QuarantinePath: op.Destination}
	case vfsx.OpDeleteFolder:
		return wal.Operation{Kind: wal.KindDeleteFolder, Path: op.Path}
	default:
		return wal.Operation{Kind: wal.KindCreateFolder, Path: op.Path}
	}
}

func runCommit(cmd *cobra.Command, args []string) error {
	vfs, err := stageFromSource(args[0], commitRulesFile, commitOpsFile)
	if err != nil {
		return err
	}

	mgr, err := wal.NewManager(cfg.WAL.Directory)
	if err != nil {
		return err
	}

	jobID := fmt.Sprintf("sentinel-%d", time.Now().UnixMilli())
	journal := stagedToJournal(jobID, vfs)
	if err := mgr.SaveJournal(journal); err != nil {
		return fmt.Errorf("saving journal: %w", err)
	}

	fmt.Printf("committed %d operations to job %s\n", len(journal.Entries), journal.JobID)
	fmt.Printf("run `sentinel execute %s` to apply them\n", journal.JobID)
	return nil
}
