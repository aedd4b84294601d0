// internal/workspace/status.go
package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mstvb/forge/internal/index"
	"github.com/mstvb/forge/shared/utils"

	"go.uber.org/zap"
)

// StatusReport groups paths by how they relate to the index. The four groups
// are disjoint and each is sorted.
type StatusReport struct {
	Staged    []string `json:"staged"`
	Modified  []string `json:"modified"`
	Deleted   []string `json:"deleted"`
	Untracked []string `json:"untracked"`
}

func (s *StatusReport) Clean() bool {
	return len(s.Modified) == 0 && len(s.Deleted) == 0 && len(s.Untracked) == 0
}

// Status classifies every indexed path and every file on disk that is not in
// the index. Dot-prefixed files and directories are never reported as
// untracked.
func (w *Workspace) Status(ix index.Index) (*StatusReport, error) {
	report := &StatusReport{}

	for _, rel := range utils.SortedKeys(ix) {
		data, err := os.ReadFile(w.abs(rel))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			report.Deleted = append(report.Deleted, rel)
		case err != nil:
			w.Logger.Warn("Failed to read indexed file", zap.String("path", rel), zap.Error(err))
			report.Modified = append(report.Modified, rel)
		case utils.HashContent(data) != ix[rel]:
			report.Modified = append(report.Modified, rel)
		default:
			report.Staged = append(report.Staged, rel)
		}
	}

	untracked, err := w.Untracked(ix)
	if err != nil {
		return nil, err
	}
	report.Untracked = untracked

	return report, nil
}

// Untracked lists files under Root that are not keys of ix, sorted.
func (w *Workspace) Untracked(ix index.Index) ([]string, error) {
	var out []string
	err := filepath.WalkDir(w.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.Logger.Warn("Failed to walk path", zap.String("path", p), zap.Error(err))
			if d != nil && d.IsDir() && p != w.Root {
				return fs.SkipDir
			}
			return nil
		}
		if p == w.Root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := w.rel(p)
		if err != nil {
			return nil
		}
		if _, ok := ix[rel]; !ok {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}
