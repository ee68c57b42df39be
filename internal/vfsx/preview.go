package vfsx

import "path/filepath"

// GroupBy selects the key PreviewOperations buckets operations by.
type GroupBy string

const (
	GroupByOperationType   GroupBy = "operation_type"
	GroupByDestinationDir  GroupBy = "destination_folder"
	GroupBySourceDir       GroupBy = "source_folder"
	GroupByRuleName        GroupBy = "rule_name"
)

// OperationPreview groups the currently staged operations for display
// before commit, mirroring ShadowVFS::preview_operations.
type OperationPreview struct {
	Groups          map[string][]PlannedOperation
	GroupKeys       []string // Groups' keys, sorted, for deterministic rendering
	TotalOperations int
	UnchangedFiles  int
}

// PreviewOperations buckets staged operations by groupBy. When
// includeUnchanged is true, UnchangedFiles counts scanned files that no
// staged operation currently touches.
func (v *VFS) PreviewOperations(groupBy GroupBy, includeUnchanged bool) OperationPreview {
	groups := make(map[string][]PlannedOperation)
	for _, op := range v.operations {
		key := previewKey(op, groupBy)
		groups[key] = append(groups[key], op)
	}

	unchanged := 0
	if includeUnchanged {
		touched := make(map[string]bool)
		for _, op := range v.operations {
			touched[op.Source] = true
			touched[op.Path] = true
		}
		for _, f := range v.Files() {
			if !touched[f.path] {
				unchanged++
			}
		}
	}

	return OperationPreview{
		Groups:          groups,
		GroupKeys:       sortedKeys(groups),
		TotalOperations: len(v.operations),
		UnchangedFiles:  unchanged,
	}
}

func previewKey(op PlannedOperation, groupBy GroupBy) string {
	switch groupBy {
	case GroupByOperationType:
		return op.Type.String()
	case GroupByDestinationDir:
		if op.Destination == "" {
			return "root"
		}
		return dirOrRoot(op.Destination)
	case GroupBySourceDir:
		src := op.Source
		if src == "" {
			src = op.Path
		}
		if src == "" {
			return "root"
		}
		return dirOrRoot(src)
	case GroupByRuleName:
		if op.RuleName == "" {
			return "manual"
		}
		return op.RuleName
	default:
		return "unknown"
	}
}

func dirOrRoot(path string) string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return "root"
	}
	return dir
}
