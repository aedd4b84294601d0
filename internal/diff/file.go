package diff

import "bytes"

// Status classifies how a file differs between its indexed and current state.
type Status string

const (
	StatusNew             Status = "NEW FILE"
	StatusDeleted         Status = "DELETED"
	StatusDeletedBinary   Status = "DELETED (Binary)"
	StatusModified        Status = "MODIFIED"
	StatusModifiedBinary  Status = "MODIFIED (Binary)"
	StatusUntrackedBinary Status = "UNTRACKED (Binary)"
)

// Side is one version of a file. Present is false when that version does not
// exist (never indexed, or deleted from disk).
type Side struct {
	Content []byte
	Present bool
}

// FileDiff is the comparison of one path. Result is nil for binary content.
type FileDiff struct {
	Path   string
	Status Status
	Result *DiffResult
}

func (f *FileDiff) Binary() bool {
	return f.Result == nil
}

// Additions and Deletions are zero for binary files.
func (f *FileDiff) Additions() int {
	if f.Result == nil {
		return 0
	}
	return f.Result.Stats.Additions
}

func (f *FileDiff) Deletions() int {
	if f.Result == nil {
		return 0
	}
	return f.Result.Stats.Deletions
}

// Compare classifies path and computes its textual diff when both sides are
// text. It returns nil when there is nothing to report.
func (e *Engine) Compare(path string, indexed, current Side) *FileDiff {
	switch {
	case !indexed.Present && !current.Present:
		return nil

	case !indexed.Present:
		if !IsText(current.Content) {
			return &FileDiff{Path: path, Status: StatusUntrackedBinary}
		}
		return &FileDiff{Path: path, Status: StatusNew, Result: e.Diff(nil, current.Content)}

	case !current.Present:
		if !IsText(indexed.Content) {
			return &FileDiff{Path: path, Status: StatusDeletedBinary}
		}
		return &FileDiff{Path: path, Status: StatusDeleted, Result: e.Diff(indexed.Content, nil)}
	}

	if bytes.Equal(indexed.Content, current.Content) {
		return nil
	}
	if !IsText(indexed.Content) || !IsText(current.Content) {
		return &FileDiff{Path: path, Status: StatusModifiedBinary}
	}
	return &FileDiff{Path: path, Status: StatusModified, Result: e.Diff(indexed.Content, current.Content)}
}
