// internal/workspace/diff.go
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/mstvb/forge/internal/diff"
	forgeerr "github.com/mstvb/forge/internal/errors"
	"github.com/mstvb/forge/internal/index"
	"github.com/mstvb/forge/internal/validation"
	"github.com/mstvb/forge/shared/utils"

	"go.uber.org/zap"
)

// Diff compares the indexed and on-disk content of each path. With no paths
// every indexed path and every untracked file is compared, and a directory
// path covers the files below it. Paths with no
// difference are omitted. The result is sorted by path.
func (w *Workspace) Diff(ix index.Index, paths []string) ([]*diff.FileDiff, *forgeerr.Report, error) {
	report := &forgeerr.Report{}

	untracked, err := w.Untracked(ix)
	if err != nil {
		return nil, report, err
	}

	var candidates []string
	if len(paths) == 0 {
		candidates = append(utils.SortedKeys(ix), untracked...)
	}
	for _, p := range paths {
		candidates = append(candidates, w.expand(ix, untracked, p)...)
	}

	seen := make(map[string]bool)
	var out []*diff.FileDiff
	for _, rel := range candidates {
		if seen[rel] {
			continue
		}
		seen[rel] = true

		indexed := diff.Side{}
		if digest, ok := ix[rel]; ok {
			data, err := w.Objects.Get(digest)
			if err != nil {
				w.Logger.Warn("Object missing", zap.String("path", rel), zap.String("digest", digest), zap.Error(err))
				report.Fail(forgeerr.ObjectMissing(rel, digest))
				continue
			}
			indexed = diff.Side{Content: data, Present: true}
		}

		current := diff.Side{}
		data, err := os.ReadFile(w.abs(rel))
		switch {
		case err == nil:
			current = diff.Side{Content: data, Present: true}
		case !errors.Is(err, fs.ErrNotExist):
			report.Fail(forgeerr.FileUnreadable(rel, err))
			continue
		}

		if fd := w.engine.Compare(rel, indexed, current); fd != nil {
			out = append(out, fd)
			report.Done(rel)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, report, nil
}

// expand turns a directory path (or ".") into the indexed and untracked files
// below it. Any other path is returned as is.
func (w *Workspace) expand(ix index.Index, untracked []string, p string) []string {
	if _, ok := ix[p]; ok {
		return []string{p}
	}

	indexed := matchIndexed(ix, p)
	info, err := os.Stat(w.abs(p))
	isDir := err == nil && info.IsDir()
	if !isDir && len(indexed) == 0 {
		return []string{p}
	}

	prefix := strings.TrimSuffix(p, "/") + "/"
	out := indexed
	for _, rel := range untracked {
		if p == "." || strings.HasPrefix(rel, prefix) {
			out = append(out, rel)
		}
	}
	return out
}

// ShowObject returns the raw bytes of the object stored under digest. Keys
// from other hash functions are accepted as long as they name a plain file.
func (w *Workspace) ShowObject(digest string) ([]byte, error) {
	if err := validation.ValidateObjectKey(digest); err != nil {
		return nil, forgeerr.NoMatchFound(err.Error())
	}
	data, err := w.Objects.Get(digest)
	if err != nil {
		return nil, forgeerr.NoMatchFound(fmt.Sprintf("no object %s", digest))
	}
	return data, nil
}

// ShowPath returns the indexed content of rel and its digest.
func (w *Workspace) ShowPath(ix index.Index, rel string) ([]byte, string, error) {
	digest, ok := ix[rel]
	if !ok {
		return nil, "", forgeerr.NoMatchFound(fmt.Sprintf("%s is not in the index", rel))
	}
	data, err := w.Objects.Get(digest)
	if err != nil {
		return nil, digest, forgeerr.ObjectMissing(rel, digest)
	}
	return data, digest, nil
}
