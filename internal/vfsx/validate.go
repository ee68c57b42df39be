package vfsx

import (
	stderrors "errors"
	"strings"

	"github.com/sentinelfs/sentinel/internal/errkind"
)

// ErrDestinationCollision and ErrSourceDestinationCycle classify
// ValidateStaged's two failure modes; wrap them with errkind.Wrapf to
// attach the offending operation IDs and paths.
var (
	ErrDestinationCollision  = errkind.New("destination_collision")
	ErrSourceDestinationCycle = errkind.New("source_destination_cycle")
)

// ValidateStaged checks the currently staged operations for conflicts
// before they reach the executor: duplicate destinations (collision),
// a destination that already exists as a real scanned node the plan
// doesn't itself relocate (spec.md §4.E's "dest must not already exist
// (directly …)"), and operations whose destination is their own source
// or lies inside it (cycle). Neither case exists in
// original_source's ShadowVFS, whose executor simply fails mid-run on bad
// paths; staging validation is SPEC_FULL.md's crash-safety requirement
// pulled forward to plan time.
func (v *VFS) ValidateStaged() error {
	var problems []error

	destinations := make(map[string]string) // destination -> op id that claims it
	sources := make(map[string]bool)        // every staged operation's own source path
	for _, op := range v.operations {
		if op.Source != "" {
			sources[op.Source] = true
		}
	}
	for _, op := range v.operations {
		dest := op.Destination
		if dest == "" && op.Type == OpCreateFolder {
			dest = op.Path
		}
		if dest == "" {
			continue
		}
		if owner, exists := destinations[dest]; exists {
			problems = append(problems, errkind.Wrapf(ErrDestinationCollision,
				"operations %s and %s both target destination %q", owner, op.OpID, dest))
			continue
		}
		destinations[dest] = op.OpID

		// A real node already sits at dest: only acceptable if this very
		// plan relocates it away first (it appears as some operation's
		// source), otherwise the move/copy would overwrite it.
		if op.Type != OpCreateFolder && v.Exists(dest) && !sources[dest] {
			problems = append(problems, errkind.Wrapf(ErrDestinationCollision,
				"operation %s: destination %q already exists on disk", op.OpID, dest))
		}
	}

	for _, op := range v.operations {
		src := op.Source
		dest := op.Destination
		if src == "" || dest == "" {
			continue
		}
		if src == dest {
			problems = append(problems, errkind.Wrapf(ErrSourceDestinationCycle,
				"operation %s: source and destination are identical (%q)", op.OpID, src))
			continue
		}
		if isAncestor(src, dest) {
			problems = append(problems, errkind.Wrapf(ErrSourceDestinationCycle,
				"operation %s: destination %q is inside its own source %q", op.OpID, dest, src))
		}
	}

	return stderrors.Join(problems...)
}

// isAncestor reports whether candidate is dir itself or lives underneath
// it, using lexical (non-canonicalizing) prefix comparison consistent
// with pathguard's containment checks.
func isAncestor(dir, candidate string) bool {
	if dir == candidate {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(candidate, prefix)
}
