package vfsx

import (
	"path/filepath"

	"github.com/sentinelfs/sentinel/internal/errkind"
)

// ErrPathNotFound and ErrCannotModifyRoot round out vfsx's VFS-level error
// kinds alongside ErrDestinationCollision/ErrSourceDestinationCycle
// (validate.go), matching spec.md's named VFS errors: PathNotFound,
// PathCollision, CycleDetected, CannotModifyRoot.
var (
	ErrPathNotFound     = errkind.New("path_not_found")
	ErrCannotModifyRoot = errkind.New("cannot_modify_root")
)

// OperationType enumerates the kinds of mutation a PlannedOperation can
// carry out. CreateFolder/Move/Rename/Trash come from
// original_source/ai/v2/vfs.rs's OperationType; Copy, Quarantine, and
// DeleteFolder supplement it per the non-destructive-by-default and
// duplicate-handling behavior original_source's executor and dedup
// commands implement but the distilled spec.md only named in passing.
type OperationType int

const (
	OpCreateFolder OperationType = iota
	OpMove
	OpRename
	OpTrash
	OpCopy
	OpQuarantine
	OpDeleteFolder
)

func (t OperationType) String() string {
	switch t {
	case OpCreateFolder:
		return "create_folder"
	case OpMove:
		return "move"
	case OpRename:
		return "rename"
	case OpTrash:
		return "trash"
	case OpCopy:
		return "copy"
	case OpQuarantine:
		return "quarantine"
	case OpDeleteFolder:
		return "delete_folder"
	default:
		return "unknown"
	}
}

// PlannedOperation is one staged mutation. Fields not relevant to the
// operation's Type are left at their zero value rather than modeled as
// pointers, since every consumer already switches on Type first.
type PlannedOperation struct {
	OpID        string
	Type        OperationType
	Source      string
	Destination string
	Path        string
	NewName     string
	RuleName    string
}

// OperationParams carries the fields needed to stage a single manual
// operation through AddOperation.
type OperationParams struct {
	Source      string
	Destination string
	Path        string
	NewName     string
	RuleName    string
}

// AddOperation stages a single operation, assigning it the next op ID.
func (v *VFS) AddOperation(opType OperationType, params OperationParams) PlannedOperation {
	op := PlannedOperation{
		OpID:        v.nextOpID(),
		Type:        opType,
		Source:      params.Source,
		Destination: params.Destination,
		Path:        params.Path,
		NewName:     params.NewName,
		RuleName:    params.RuleName,
	}
	v.operations = append(v.operations, op)
	return op
}

// StageMove stages a Move of source to destination after validating path
// existence, destination collision, source/destination cycles, and root
// immutability — spec.md §4.E's "manual APIs used by non-rule planners"
// invariants, checked at the call itself (scenario: stage_move("/root/x",
// "/root/x/y") returns CycleDetected directly) rather than deferred to a
// later ValidateStaged pass. ApplyRules stages its own Move/Copy/Quarantine
// operations through the unvalidated AddOperation instead, since
// validate_staged is its dedicated joint-validation step (spec.md §4.E).
func (v *VFS) StageMove(source, destination, ruleName string) (PlannedOperation, error) {
	if err := v.checkMoveLike(source, destination); err != nil {
		return PlannedOperation{}, err
	}
	return v.AddOperation(OpMove, OperationParams{Source: source, Destination: destination, RuleName: ruleName}), nil
}

// StageCreateFolder stages creation of a directory at path, rejecting the
// target root itself and any path already occupied by a real, non-directory
// file.
func (v *VFS) StageCreateFolder(path string) (PlannedOperation, error) {
	clean := filepath.Clean(path)
	if clean == v.root {
		return PlannedOperation{}, errkind.Wrapf(ErrCannotModifyRoot, "cannot create a folder at the target root %q", v.root)
	}
	if f, ok := v.Get(clean); ok && !f.isDirectory {
		return PlannedOperation{}, errkind.Wrapf(ErrDestinationCollision, "a file already exists at %q", clean)
	}
	return v.AddOperation(OpCreateFolder, OperationParams{Path: clean}), nil
}

// StageDelete stages a Trash of the entry at path, requiring it to exist
// and forbidding the target root itself.
func (v *VFS) StageDelete(path, ruleName string) (PlannedOperation, error) {
	if err := v.checkExistingNonRoot(path); err != nil {
		return PlannedOperation{}, err
	}
	return v.AddOperation(OpTrash, OperationParams{Path: path, RuleName: ruleName}), nil
}

// StageCopy stages a Copy of source to destination, leaving source intact.
// Subject to the same existence/collision/cycle/root checks as StageMove.
func (v *VFS) StageCopy(source, destination, ruleName string) (PlannedOperation, error) {
	if err := v.checkMoveLike(source, destination); err != nil {
		return PlannedOperation{}, err
	}
	return v.AddOperation(OpCopy, OperationParams{Source: source, Destination: destination, RuleName: ruleName}), nil
}

// StageQuarantine stages moving the entry at path into the quarantine
// area at destination, used for files a rule flags as suspicious rather
// than simply misplaced. Subject to the same checks as StageMove.
func (v *VFS) StageQuarantine(path, destination, ruleName string) (PlannedOperation, error) {
	if err := v.checkMoveLike(path, destination); err != nil {
		return PlannedOperation{}, err
	}
	return v.AddOperation(OpQuarantine, OperationParams{Path: path, Destination: destination, RuleName: ruleName}), nil
}

// StageDeleteFolder stages removal of an empty directory left behind
// after its contents were moved out, requiring it to exist and forbidding
// the target root itself.
func (v *VFS) StageDeleteFolder(path string) (PlannedOperation, error) {
	if err := v.checkExistingNonRoot(path); err != nil {
		return PlannedOperation{}, err
	}
	return v.AddOperation(OpDeleteFolder, OperationParams{Path: path}), nil
}

// checkMoveLike enforces the invariants shared by Move/Copy/Quarantine:
// source must be a real scanned path, destination must not already exist
// as a real node or another staged operation's destination, destination
// must not be (or descend from) source, and neither may be the target
// root itself.
func (v *VFS) checkMoveLike(source, destination string) error {
	source = filepath.Clean(source)
	destination = filepath.Clean(destination)

	if source == v.root || destination == v.root {
		return errkind.Wrapf(ErrCannotModifyRoot, "cannot move/copy the target root itself (%q)", v.root)
	}
	if destination == source || isAncestor(source, destination) {
		return errkind.Wrapf(ErrSourceDestinationCycle,
			"destination %q is %q or inside its own source", destination, source)
	}
	if !v.Exists(source) {
		return errkind.Wrapf(ErrPathNotFound, "source %q is not a scanned path", source)
	}
	if v.Exists(destination) {
		return errkind.Wrapf(ErrDestinationCollision, "destination %q already exists", destination)
	}
	if owner, ok := v.stagedDestination(destination); ok {
		return errkind.Wrapf(ErrDestinationCollision, "operation %s already targets destination %q", owner, destination)
	}
	return nil
}

// checkExistingNonRoot enforces the invariants shared by Delete/DeleteFolder:
// the path must be a real scanned node and must not be the target root.
func (v *VFS) checkExistingNonRoot(path string) error {
	clean := filepath.Clean(path)
	if clean == v.root {
		return errkind.Wrapf(ErrCannotModifyRoot, "cannot delete the target root %q", v.root)
	}
	if !v.Exists(clean) {
		return errkind.Wrapf(ErrPathNotFound, "path %q is not a scanned path", clean)
	}
	return nil
}

// stagedDestination returns the op ID of whichever already-staged
// operation claims destination, if any.
func (v *VFS) stagedDestination(destination string) (string, bool) {
	for _, op := range v.operations {
		dest := op.Destination
		if dest == "" && op.Type == OpCreateFolder {
			dest = op.Path
		}
		if dest == destination {
			return op.OpID, true
		}
	}
	return "", false
}
