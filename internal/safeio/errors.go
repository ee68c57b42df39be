package safeio

import "github.com/pkg/errors"

// Kind identifies the stage of a Safe I/O operation that failed, mirroring
// the teacher's backend-specific sentinel errors (fs.ErrorCantMove,
// fs.ErrorDirExists) rather than one monolithic error type.
type Kind string

const (
	KindWrite   Kind = "WriteError"
	KindSync    Kind = "SyncError"
	KindRename  Kind = "RenameError"
	KindPath    Kind = "PathError"
	KindSymlink Kind = "SymlinkError"
)

// Error wraps an underlying cause with the Safe I/O stage it occurred at.
type Error struct {
	Kind Kind
	Path string
	Op   string
	err  error
}

func (e *Error) Error() string {
	if e.err == nil {
		return string(e.Kind) + ": " + e.Op + " " + e.Path
	}
	return string(e.Kind) + ": " + e.Op + " " + e.Path + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

func wrap(kind Kind, op, path string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Path: path, err: cause}
}

// IsKind reports whether err (or any error it wraps) is a *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
