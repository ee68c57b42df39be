package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sentinelfs/sentinel/internal/vfsx"
)

// manualOp is one operation in a hand-authored --ops JSON file, the
// non-rule-driven counterpart to --rules: SPEC_FULL.md's "agent surface"
// open question resolves to letting a caller (human or external agent)
// supply an exact operation list instead of deriving one from rule
// evaluation. Staged manual ops flow through the same
// stagedToJournal/dependenciesFor ancestor-folder wiring as rule-applied
// ones, so ordering still only needs to be correct within the JSON
// array (folder creations before the operations that target them), not
// expressed as an explicit dependency graph in the file itself.
type manualOp struct {
	Type        string `json:"type"`
	Path        string `json:"path,omitempty"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
	NewName     string `json:"new_name,omitempty"`
	RuleName    string `json:"rule_name,omitempty"`
}

func loadOps(path string) ([]manualOp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ops file: %w", err)
	}
	var ops []manualOp
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("parsing ops file: %w", err)
	}
	return ops, nil
}

// stageFromOps stages each manual operation directly, bypassing rule
// evaluation entirely, then runs the same staged-plan validation
// stageFromRules applies.
func stageFromOps(root, opsPath string) (*vfsx.VFS, error) {
	ops, err := loadOps(opsPath)
	if err != nil {
		return nil, err
	}

	vfs, err := vfsx.New(root, vfsx.Options{MaxOperations: cfg.Rules.MaxOperations})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	for _, op := range ops {
		if err := stageManualOp(vfs, op); err != nil {
			return nil, err
		}
	}
	if err := vfs.ValidateStaged(); err != nil {
		return nil, fmt.Errorf("plan failed validation: %w", err)
	}
	return vfs, nil
}

func stageManualOp(vfs *vfsx.VFS, op manualOp) error {
	var err error
	switch op.Type {
	case "create_folder":
		_, err = vfs.StageCreateFolder(op.Path)
	case "move":
		_, err = vfs.StageMove(op.Source, op.Destination, op.RuleName)
	case "rename":
		vfs.AddOperation(vfsx.OpRename, vfsx.OperationParams{Path: op.Path, NewName: op.NewName, RuleName: op.RuleName})
	case "trash":
		_, err = vfs.StageDelete(op.Path, op.RuleName)
	case "copy":
		_, err = vfs.StageCopy(op.Source, op.Destination, op.RuleName)
	case "quarantine":
		_, err = vfs.StageQuarantine(op.Path, op.Destination, op.RuleName)
	case "delete_folder":
		_, err = vfs.StageDeleteFolder(op.Path)
	default:
		return fmt.Errorf("unknown operation type %q", op.Type)
	}
	if err != nil {
		return fmt.Errorf("staging %s operation: %w", op.Type, err)
	}
	return nil
}
