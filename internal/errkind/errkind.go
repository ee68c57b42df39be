// Package errkind defines the typed error-kind convention SPEC_FULL.md's
// ambient error-handling section describes: each component exposes its
// failure modes as small sentinel values satisfying Kind, wrapped with
// github.com/pkg/errors the way the teacher's per-backend fs.Error*
// sentinels (fs.ErrorCantMove, fs.ErrorDirExists) are wrapped and
// unwrapped across package boundaries via errors.Cause.
package errkind

import "github.com/pkg/errors"

// Kind identifies the category of a component-level sentinel error.
type Kind interface {
	error
	Kind() string
}

// kind is the concrete Kind every component's sentinels are built from.
type kind string

func (k kind) Error() string { return string(k) }
func (k kind) Kind() string  { return string(k) }

// New declares a new sentinel error kind, e.g.
// var ErrCycle = errkind.New("cycle_detected").
func New(name string) Kind { return kind(name) }

// Wrap attaches context to a sentinel kind via github.com/pkg/errors,
// preserving errors.Cause/errors.Is compatibility back to k.
func Wrap(k Kind, context string) error {
	return errors.Wrap(k, context)
}

// Wrapf is Wrap with Printf-style formatting.
func Wrapf(k Kind, format string, args ...interface{}) error {
	return errors.Wrapf(k, format, args...)
}

// Cause unwraps err to its deepest wrapped cause, delegating to
// github.com/pkg/errors.Cause.
func Cause(err error) error {
	return errors.Cause(err)
}
