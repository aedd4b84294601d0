// internal/repo/ops.go
package repo

import (
	"strings"

	"github.com/mstvb/forge/internal/commit"
	"github.com/mstvb/forge/internal/config"
	"github.com/mstvb/forge/internal/diff"
	forgeerr "github.com/mstvb/forge/internal/errors"
	"github.com/mstvb/forge/internal/index"
	"github.com/mstvb/forge/internal/remote"
	"github.com/mstvb/forge/internal/workspace"
	"github.com/mstvb/forge/shared/utils"

	"go.uber.org/zap"
)

// relPath resolves a command-line path against the invocation directory.
func (r *Repository) relPath(p string) (string, error) {
	rel, err := utils.NormalizePath(r.Root, r.cwd, p)
	if err != nil {
		return "", err
	}
	return index.Normalize(rel), nil
}

// relPaths resolves every path it can. Paths outside the working tree are
// recorded in report through fail and left out.
func (r *Repository) relPaths(paths []string, report *forgeerr.Report, fail func(string, error) *forgeerr.Error) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			r.Logger.Warn("Skipping path", zap.String("path", p), zap.Error(err))
			report.Fail(fail(p, err))
			continue
		}
		out = append(out, rel)
	}
	return out
}

func notIndexed(p string, err error) *forgeerr.Error {
	e := forgeerr.PathNotIndexed(p)
	e.Err = err
	return e
}

func insideRepoDir(rel string) bool {
	return rel == config.RepoDir || strings.HasPrefix(rel, config.RepoDir+"/")
}

// Add stages paths. With all set, directories are walked recursively and no
// paths means the whole tree.
func (r *Repository) Add(paths []string, all bool) (*forgeerr.Report, error) {
	report := &forgeerr.Report{}
	rels := r.relPaths(paths, report, forgeerr.FileUnreadable)
	if all && len(paths) == 0 {
		rels = []string{"."}
	}

	err := r.withLock(func() error {
		st, err := r.LoadState()
		if err != nil {
			return err
		}

		var candidates []string
		for _, rel := range rels {
			if insideRepoDir(rel) {
				report.Skip(rel)
				continue
			}
			candidates = append(candidates, rel)
		}

		added, err := r.Workspace.Add(st.Index, candidates, all)
		report.Merge(added)
		if err != nil {
			return err
		}
		return r.SaveState(st)
	})
	return report, err
}

// Remove unstages paths, deleting the working files unless cached is set.
// With all set every indexed path is removed.
func (r *Repository) Remove(paths []string, cached, all bool) (*forgeerr.Report, error) {
	report := &forgeerr.Report{}
	rels := r.relPaths(paths, report, notIndexed)

	err := r.withLock(func() error {
		st, err := r.LoadState()
		if err != nil {
			return err
		}
		if all {
			report.Merge(r.Workspace.RemoveAll(st.Index, cached))
		} else {
			report.Merge(r.Workspace.Remove(st.Index, rels, cached))
		}
		return r.SaveState(st)
	})
	return report, err
}

// Commit records the index as a new commit on top of HEAD.
func (r *Repository) Commit(message string) (commit.Entry, error) {
	var entry commit.Entry
	err := r.withLock(func() error {
		ix, err := r.Index.Load()
		if err != nil {
			return err
		}
		entry, err = r.Chain.Create(message, ix)
		if err != nil {
			return err
		}
		r.Logger.Info("Committed", zap.String("digest", entry.Digest), zap.Int("files", len(ix)))
		return nil
	})
	return entry, err
}

func (r *Repository) Status() (*workspace.StatusReport, error) {
	st, err := r.LoadState()
	if err != nil {
		return nil, err
	}
	return r.Workspace.Status(st.Index)
}

// Diff compares the given paths, or everything when none are given.
func (r *Repository) Diff(paths []string) ([]*diff.FileDiff, *forgeerr.Report, error) {
	report := &forgeerr.Report{}
	rels := r.relPaths(paths, report, forgeerr.FileUnreadable)
	if len(paths) > 0 && len(rels) == 0 {
		return nil, report, nil
	}

	st, err := r.LoadState()
	if err != nil {
		return nil, report, err
	}
	diffs, sub, err := r.Workspace.Diff(st.Index, rels)
	report.Merge(sub)
	return diffs, report, err
}

func (r *Repository) ShowObject(digest string) ([]byte, error) {
	return r.Workspace.ShowObject(strings.TrimSpace(digest))
}

func (r *Repository) ShowPath(path string) ([]byte, string, error) {
	rel, err := r.relPath(path)
	if err != nil {
		return nil, "", forgeerr.NoMatchFound(err.Error())
	}
	st, err := r.LoadState()
	if err != nil {
		return nil, "", err
	}
	return r.Workspace.ShowPath(st.Index, rel)
}

// Restore rewrites working files from the index. all, or no paths, restores
// every indexed path.
func (r *Repository) Restore(paths []string, all bool) (*forgeerr.Report, error) {
	report := &forgeerr.Report{}
	rels := r.relPaths(paths, report, notIndexed)
	if all {
		rels = nil
	} else if len(paths) > 0 && len(rels) == 0 {
		return report, nil
	}

	err := r.withLock(func() error {
		st, err := r.LoadState()
		if err != nil {
			return err
		}
		report.Merge(r.Workspace.Restore(st.Index, rels))
		return nil
	})
	return report, err
}

// Back checks out the latest commit whose message contains substr, replaces
// the index with its files and moves HEAD to it. Working files the commit
// does not name are left in place.
func (r *Repository) Back(substr string) (commit.Entry, *forgeerr.Report, error) {
	var (
		entry  commit.Entry
		report *forgeerr.Report
	)
	err := r.withLock(func() error {
		st, err := r.LoadState()
		if err != nil {
			return err
		}
		entry, err = r.Chain.FindLatest(substr)
		if err != nil {
			return err
		}

		report = r.Workspace.Checkout(entry.Commit.Files)
		st.Index = entry.Commit.Files.Clone()
		st.Head = entry.Digest

		r.Logger.Info("Moved back",
			zap.String("digest", entry.Digest),
			zap.String("message", entry.Commit.Message),
			zap.Int("restored", len(report.Processed)),
			zap.Int("failed", len(report.Failures)))
		return r.SaveState(st)
	})
	return entry, report, err
}

func (r *Repository) Log() (*commit.History, error) {
	return r.Chain.Log()
}

// Push replaces the remote's objects and commits with the local ones.
func (r *Repository) Push(remoteDir string) (*remote.Result, error) {
	return remote.Push(r.Dir, remoteDir, r.Logger)
}

// Pull copies objects and commits missing locally from remoteDir.
func (r *Repository) Pull(remoteDir string) (*remote.Result, error) {
	var result *remote.Result
	err := r.withLock(func() error {
		var err error
		result, err = remote.Pull(r.Dir, remoteDir, r.Logger)
		return err
	})
	return result, err
}
