// Package vcserr defines the closed set of domain error kinds surfaced by
// the repository engine, mirroring the error-kind enumeration every layer
// from internal/objstore up through internal/ops propagates.
package vcserr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind is one of the error kinds the engine can surface. Operations either
// succeed fully or fail with exactly one Kind; there is no partial-failure
// reporting beyond MergeConflicts/CherryPickConflicts, which carry a path
// list alongside the kind.
type Kind string

// The full set of error kinds an operation may return.
const (
	NotARepository          Kind = "NotARepository"
	RepositoryExists        Kind = "RepositoryExists"
	ObjectNotFound          Kind = "ObjectNotFound"
	MalformedObject         Kind = "MalformedObject"
	PathNotFound            Kind = "PathNotFound"
	IndexCorrupt            Kind = "IndexCorrupt"
	NothingToCommit         Kind = "NothingToCommit"
	DetachedMerge           Kind = "DetachedMerge"
	SelfMerge               Kind = "SelfMerge"
	UnknownBranch           Kind = "UnknownBranch"
	UnknownTag              Kind = "UnknownTag"
	TagExists               Kind = "TagExists"
	AlreadyUpToDate         Kind = "AlreadyUpToDate"
	NoCommonAncestor        Kind = "NoCommonAncestor"
	MergeConflicts          Kind = "MergeConflicts"
	CherryPickConflicts     Kind = "CherryPickConflicts"
	StashEmpty              Kind = "StashEmpty"
	StashIndexOOR           Kind = "StashIndexOOR"
	DetachedReset           Kind = "DetachedReset"
	InitialCommitCherryPick Kind = "InitialCommitCherryPick"
)

// Error is the concrete error type every domain-facing operation returns.
// Conflicts is populated only for MergeConflicts/CherryPickConflicts.
type Error struct {
	Kind      Kind
	Message   string
	Conflicts []string
	cause     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause so callers can still errors.Is/As through
// to the underlying I/O or parse error.
func (e *Error) Unwrap() error { return e.cause }

// New creates a bare Error of the given kind with a human-readable message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind to a lower-level cause, preserving the cause chain via
// github.com/pkg/errors so the original stack-free cause can still be
// retrieved with pkgerrors.Cause for diagnostics.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind:    kind,
		Message: msg,
		cause:   pkgerrors.Wrap(cause, msg),
	}
}

// WithConflicts builds a MergeConflicts or CherryPickConflicts error carrying
// the list of conflicted paths, sorted by the caller before construction.
func WithConflicts(kind Kind, paths []string) *Error {
	return &Error{
		Kind:      kind,
		Message:   fmt.Sprintf("%s: %d conflicting path(s)", kind, len(paths)),
		Conflicts: paths,
	}
}

// Is reports whether err is a *Error of the given kind, looking through any
// wrapping via errors.As.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
