// internal/workspace/restore.go
package workspace

import (
	forgeerr "github.com/mstvb/forge/internal/errors"
	"github.com/mstvb/forge/internal/index"
	"github.com/mstvb/forge/internal/validation"
	"github.com/mstvb/forge/shared/utils"

	"go.uber.org/zap"
)

// Restore overwrites working files with their indexed content. With no paths
// every indexed path is restored. The index itself is not changed.
func (w *Workspace) Restore(ix index.Index, paths []string) *forgeerr.Report {
	if len(paths) == 0 {
		return w.Checkout(ix)
	}

	report := &forgeerr.Report{}
	selected := make(index.Index)
	for _, p := range paths {
		matches := matchIndexed(ix, p)
		if len(matches) == 0 {
			report.Fail(forgeerr.PathNotIndexed(p))
			continue
		}
		for _, rel := range matches {
			selected[rel] = ix[rel]
		}
	}

	report.Merge(w.Checkout(selected))
	return report
}

// Checkout writes the content of every entry in files to the working tree,
// creating parent directories. Entries whose path leaves the working tree,
// whose object is missing or whose file cannot be written are reported and
// skipped. Files not named in files are left alone.
func (w *Workspace) Checkout(files index.Index) *forgeerr.Report {
	report := &forgeerr.Report{}

	for _, rel := range utils.SortedKeys(files) {
		digest := files[rel]

		if err := validation.ValidatePath(rel); err != nil {
			w.Logger.Warn("Refusing to write path", zap.String("path", rel), zap.Error(err))
			report.Fail(forgeerr.FileUnwritable(rel, err))
			continue
		}

		data, err := w.Objects.Get(digest)
		if err != nil {
			w.Logger.Warn("Object missing", zap.String("path", rel), zap.String("digest", digest), zap.Error(err))
			report.Fail(forgeerr.ObjectMissing(rel, digest))
			continue
		}

		if err := w.writeWorking(rel, data); err != nil {
			w.Logger.Warn("Failed to write file", zap.String("path", rel), zap.Error(err))
			report.Fail(forgeerr.FileUnwritable(rel, err))
			continue
		}

		report.Done(rel)
	}

	return report
}
