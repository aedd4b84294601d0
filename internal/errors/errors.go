// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

type Kind string

const (
	KindRepositoryNotFound Kind = "REPOSITORY_NOT_FOUND"
	KindEmptyIndex         Kind = "EMPTY_INDEX"
	KindObjectMissing      Kind = "OBJECT_MISSING"
	KindFileUnreadable     Kind = "FILE_UNREADABLE"
	KindFileUndeletable    Kind = "FILE_UNDELETABLE"
	KindFileUnwritable     Kind = "FILE_UNWRITABLE"
	KindNoMatchFound       Kind = "NO_MATCH_FOUND"
	KindPathNotIndexed     Kind = "PATH_NOT_INDEXED"
	KindLocked             Kind = "LOCKED"
)

// Error is a classified failure. Path is set for per-item failures.
type Error struct {
	Kind    Kind   `json:"kind"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Fatal reports whether err must abort the whole command.
func Fatal(err error) bool {
	return Is(err, KindRepositoryNotFound)
}

func RepositoryNotFound(start string) *Error {
	return &Error{
		Kind:    KindRepositoryNotFound,
		Message: fmt.Sprintf("no repository found from %s (run 'forge init')", start),
	}
}

func EmptyIndex() *Error {
	return &Error{
		Kind:    KindEmptyIndex,
		Message: "nothing staged to commit",
	}
}

func ObjectMissing(path, digest string) *Error {
	return &Error{
		Kind:    KindObjectMissing,
		Path:    path,
		Message: fmt.Sprintf("object %s is missing", digest),
	}
}

func FileUnreadable(path string, err error) *Error {
	return &Error{
		Kind:    KindFileUnreadable,
		Path:    path,
		Message: "cannot read file",
		Err:     err,
	}
}

func FileUndeletable(path string, err error) *Error {
	return &Error{
		Kind:    KindFileUndeletable,
		Path:    path,
		Message: "cannot delete file",
		Err:     err,
	}
}

func FileUnwritable(path string, err error) *Error {
	return &Error{
		Kind:    KindFileUnwritable,
		Path:    path,
		Message: "cannot write file",
		Err:     err,
	}
}

func NoMatchFound(message string) *Error {
	return &Error{
		Kind:    KindNoMatchFound,
		Message: message,
	}
}

func PathNotIndexed(path string) *Error {
	return &Error{
		Kind:    KindPathNotIndexed,
		Path:    path,
		Message: "not in index",
	}
}

func Locked(lockPath string, err error) *Error {
	return &Error{
		Kind:    KindLocked,
		Path:    lockPath,
		Message: "repository is locked by another process",
		Err:     err,
	}
}

// Report collects the outcome of a batch operation. Per-item failures never
// abort the batch; they are recorded here instead.
type Report struct {
	Processed []string
	Skipped   []string
	Failures  []*Error
}

func (r *Report) Done(path string) {
	r.Processed = append(r.Processed, path)
}

func (r *Report) Skip(path string) {
	r.Skipped = append(r.Skipped, path)
}

func (r *Report) Fail(e *Error) {
	r.Failures = append(r.Failures, e)
}

// Merge appends everything recorded in o.
func (r *Report) Merge(o *Report) {
	if o == nil {
		return
	}
	r.Processed = append(r.Processed, o.Processed...)
	r.Skipped = append(r.Skipped, o.Skipped...)
	r.Failures = append(r.Failures, o.Failures...)
}

func (r *Report) OK() bool {
	return len(r.Failures) == 0
}

// Err combines all recorded failures, or returns nil.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}
