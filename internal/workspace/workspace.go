// internal/workspace/workspace.go
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mstvb/forge/internal/content"
	"github.com/mstvb/forge/internal/diff"
	forgeerr "github.com/mstvb/forge/internal/errors"
	"github.com/mstvb/forge/internal/index"
	"github.com/mstvb/forge/internal/safe"
	"github.com/mstvb/forge/shared/utils"

	"go.uber.org/zap"
)

// Workspace reconciles the working tree under Root with the index and the
// object store. It holds no repository state of its own: every operation is
// handed the index it works against.
type Workspace struct {
	Root    string
	Objects *content.Store
	Logger  *zap.Logger

	engine     *diff.Engine
	ignoreDirs map[string]bool
}

type Options struct {
	ContextLines int
	// IgnoreDirs are directory names skipped by recursive add.
	IgnoreDirs []string
}

func New(root string, objects *content.Store, opts Options, logger *zap.Logger) *Workspace {
	ignore := make(map[string]bool, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		ignore[d] = true
	}
	return &Workspace{
		Root:       root,
		Objects:    objects,
		Logger:     logger,
		engine:     diff.NewEngine(opts.ContextLines),
		ignoreDirs: ignore,
	}
}

func (w *Workspace) abs(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

func (w *Workspace) rel(abs string) (string, error) {
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Add stages each path. Directories are skipped unless recursive is set, in
// which case they are walked, skipping ignored and dot-prefixed directories.
// Unreadable candidates are reported and the rest continue. ix is updated in
// place.
func (w *Workspace) Add(ix index.Index, paths []string, recursive bool) (*forgeerr.Report, error) {
	report := &forgeerr.Report{}
	processed := make(map[string]bool)

	for _, rel := range paths {
		abs := w.abs(rel)
		info, err := os.Stat(abs)
		if err != nil {
			w.Logger.Warn("Failed to stat path", zap.String("path", rel), zap.Error(err))
			report.Fail(forgeerr.FileUnreadable(rel, err))
			continue
		}

		if !info.IsDir() {
			if err := w.addFile(ix, rel, processed, report); err != nil {
				return report, err
			}
			continue
		}

		if !recursive {
			w.Logger.Info("Skipping directory", zap.String("path", rel))
			report.Skip(rel)
			continue
		}

		err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				fileRel, _ := w.rel(p)
				w.Logger.Warn("Failed to walk path", zap.String("path", fileRel), zap.Error(err))
				report.Fail(forgeerr.FileUnreadable(fileRel, err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if p != abs && w.skipDir(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}

			fileRel, err := w.rel(p)
			if err != nil {
				return nil
			}
			return w.addFile(ix, fileRel, processed, report)
		})
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

// addFile stages one file. Only an object store failure is returned; a file
// read failure is recorded in report.
func (w *Workspace) addFile(ix index.Index, rel string, processed map[string]bool, report *forgeerr.Report) error {
	if processed[rel] {
		return nil
	}
	processed[rel] = true

	data, err := os.ReadFile(w.abs(rel))
	if err != nil {
		w.Logger.Warn("Failed to read file", zap.String("path", rel), zap.Error(err))
		report.Fail(forgeerr.FileUnreadable(rel, err))
		return nil
	}

	digest, err := w.Objects.Put(data)
	if err != nil {
		return fmt.Errorf("storing %s: %w", rel, err)
	}

	ix[rel] = digest
	report.Done(rel)
	w.Logger.Debug("File staged", zap.String("path", rel), zap.String("digest", digest))
	return nil
}

func (w *Workspace) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || w.ignoreDirs[name]
}

// Remove drops paths from ix and, unless keepFiles is set, deletes the working
// files. A path naming a directory removes every indexed path below it.
func (w *Workspace) Remove(ix index.Index, paths []string, keepFiles bool) *forgeerr.Report {
	report := &forgeerr.Report{}

	for _, p := range paths {
		matches := matchIndexed(ix, p)
		if len(matches) == 0 {
			report.Fail(forgeerr.PathNotIndexed(p))
			continue
		}

		for _, rel := range matches {
			delete(ix, rel)

			if !keepFiles {
				err := os.Remove(w.abs(rel))
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					w.Logger.Warn("Failed to delete file", zap.String("path", rel), zap.Error(err))
					report.Fail(forgeerr.FileUndeletable(rel, err))
					continue
				}
			}
			report.Done(rel)
		}
	}

	return report
}

// RemoveAll empties ix, deleting the working files unless keepFiles is set.
func (w *Workspace) RemoveAll(ix index.Index, keepFiles bool) *forgeerr.Report {
	return w.Remove(ix, utils.SortedKeys(ix), keepFiles)
}

// matchIndexed returns the indexed paths equal to p or below it, sorted.
// "." matches everything.
func matchIndexed(ix index.Index, p string) []string {
	if _, ok := ix[p]; ok {
		return []string{p}
	}

	var out []string
	prefix := strings.TrimSuffix(p, "/") + "/"
	for rel := range ix {
		if p == "." || strings.HasPrefix(rel, prefix) {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out
}

// writeWorking overwrites the working file at rel with data, creating parent
// directories. An existing file keeps its permission bits.
func (w *Workspace) writeWorking(rel string, data []byte) error {
	abs := w.abs(rel)
	perm := os.FileMode(0644)
	if info, err := os.Stat(abs); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", rel)
		}
		perm = info.Mode().Perm()
	}
	return safe.WriteFile(abs, data, perm)
}
