package vfsx

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sentinelfs/sentinel/internal/pathguard"
	"github.com/sentinelfs/sentinel/internal/rules"
)

// Rule is an organization rule: a DSL condition plus the action(s) to take
// on every file it matches, grounded on OrganizationRule in
// original_source/ai/v2/vfs.rs and supplemented with CopyTo/QuarantineTo
// actions for the Copy and Quarantine operation kinds SPEC_FULL.md adds.
type Rule struct {
	Name           string `yaml:"name"`
	Condition      string `yaml:"condition"`
	ThenMoveTo     string `yaml:"then_move_to,omitempty"`
	ThenRenameTo   string `yaml:"then_rename_to,omitempty"`
	ThenCopyTo     string `yaml:"then_copy_to,omitempty"`
	ThenQuarantine string `yaml:"then_quarantine,omitempty"`
	Priority       int    `yaml:"priority"`
}

// ApplyMode controls whether ApplyRules starts from a clean slate or adds
// to the currently staged operations.
type ApplyMode int

const (
	ApplyReplace ApplyMode = iota
	ApplyAppend
)

// ApplyRules evaluates rules (highest priority first) against every
// scanned file, staging Move/Rename/Copy/Quarantine operations for the
// first rule each file matches, and prepending CreateFolder operations for
// any destination directories the plan introduces. It mirrors
// ShadowVFS::apply_rules, including its MAX_OPERATIONS guard.
func (v *VFS) ApplyRules(ruleSet []Rule, mode ApplyMode) (int, error) {
	if mode == ApplyReplace {
		v.ClearOperations()
	}

	sorted := make([]Rule, len(ruleSet))
	copy(sorted, ruleSet)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	processed := make(map[string]bool)
	foldersToCreate := make(map[string]bool)
	created := 0

	simFn := func(path, query string) (float32, bool) { return v.index.Similarity(path, query) }

	for _, rule := range sorted {
		expr, err := rules.Parse(rule.Condition)
		if err != nil {
			return created, fmt.Errorf("vfsx: rule %q: %w", rule.Name, err)
		}

		for _, f := range v.Files() {
			if processed[f.path] {
				continue
			}
			matched, err := rules.Eval(expr, f, simFn)
			if err != nil {
				log.WithError(err).WithField("rule", rule.Name).Debug("rule evaluation failed, skipping file")
				continue
			}
			if !matched {
				continue
			}
			processed[f.path] = true

			if rule.ThenMoveTo != "" {
				dest := v.resolveDestDir(rule.ThenMoveTo)
				if !v.Exists(dest) {
					foldersToCreate[dest] = true
				}
				// Staged directly, bypassing StageMove's immediate
				// validation: apply_rules' own destinations are derived
				// from the scan itself, and validate_staged is the
				// dedicated joint-validation pass for the resulting plan.
				v.AddOperation(OpMove, OperationParams{Source: f.path, Destination: filepath.Join(dest, f.name), RuleName: rule.Name})
				created++
			}
			if rule.ThenCopyTo != "" {
				dest := v.resolveDestDir(rule.ThenCopyTo)
				if !v.Exists(dest) {
					foldersToCreate[dest] = true
				}
				v.AddOperation(OpCopy, OperationParams{Source: f.path, Destination: filepath.Join(dest, f.name), RuleName: rule.Name})
				created++
			}
			if rule.ThenQuarantine != "" {
				dest := v.resolveDestDir(rule.ThenQuarantine)
				if !v.Exists(dest) {
					foldersToCreate[dest] = true
				}
				v.AddOperation(OpQuarantine, OperationParams{Path: f.path, Destination: filepath.Join(dest, f.name), RuleName: rule.Name})
				created++
			}
			if rule.ThenRenameTo != "" {
				newName := v.applyRenamePattern(rule.ThenRenameTo, f)
				v.AddOperation(OpRename, OperationParams{Path: f.path, NewName: newName, RuleName: rule.Name})
				created++
			}

			if len(v.operations) > v.maxOps {
				return created, fmt.Errorf("vfsx: operation limit exceeded (%d > %d); organize smaller subfolders separately", len(v.operations), v.maxOps)
			}
		}
	}

	if len(foldersToCreate) > 0 {
		folderOps := make([]PlannedOperation, 0, len(foldersToCreate))
		paths := make([]string, 0, len(foldersToCreate))
		for p := range foldersToCreate {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			v.opCounter++
			folderOps = append(folderOps, PlannedOperation{
				OpID: fmt.Sprintf("op-%d", v.opCounter),
				Type: OpCreateFolder,
				Path: p,
			})
		}
		v.operations = append(folderOps, v.operations...)
	}

	return created, nil
}

// resolveDestDir turns a rule's destination (absolute, or relative to the
// VFS root) into an absolute, normalized path.
func (v *VFS) resolveDestDir(dest string) string {
	if filepath.IsAbs(dest) {
		return pathguard.Normalize(dest)
	}
	return pathguard.Normalize(filepath.Join(v.root, dest))
}

// applyRenamePattern expands {name}, {ext}, and {date} placeholders,
// mirroring apply_rename_pattern.
func (v *VFS) applyRenamePattern(pattern string, f *VirtualFile) string {
	result := pattern
	result = strings.ReplaceAll(result, "{name}", f.name)
	if f.ext != "" {
		result = strings.ReplaceAll(result, "{ext}", f.ext)
	}
	if !f.modifiedAt.IsZero() {
		result = strings.ReplaceAll(result, "{date}", f.modifiedAt.UTC().Format("2006-01-02"))
	}
	return result
}
