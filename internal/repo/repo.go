// internal/repo/repo.go
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mstvb/forge/internal/commit"
	"github.com/mstvb/forge/internal/config"
	"github.com/mstvb/forge/internal/content"
	forgeerr "github.com/mstvb/forge/internal/errors"
	"github.com/mstvb/forge/internal/index"
	"github.com/mstvb/forge/internal/safe"
	"github.com/mstvb/forge/internal/workspace"

	"go.uber.org/zap"
)

// Repository ties together the stores of one .forge directory and the
// working tree around it.
type Repository struct {
	Root   string
	Dir    string
	Config *config.Config
	Logger *zap.Logger

	Objects   *content.Store
	Commits   *content.Store
	Chain     *commit.Chain
	Index     *index.File
	Workspace *workspace.Workspace

	// cwd is where relative command paths are resolved from.
	cwd string
}

// FindRoot searches startDir and its parents for a repository directory.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		info, err := os.Stat(filepath.Join(dir, config.RepoDir))
		if err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", forgeerr.RepositoryNotFound(startDir)
}

// Initialize creates the repository layout under root. It reports false,
// without touching anything, when a repository already exists there.
func Initialize(root string) (bool, error) {
	dir := filepath.Join(root, config.RepoDir)
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", dir, err)
	}

	for _, sub := range []string{"objects", "commits"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return false, fmt.Errorf("creating %s: %w", sub, err)
		}
	}
	return true, nil
}

// Open finds the repository enclosing start and wires its components.
func Open(start string, logger *zap.Logger) (*Repository, error) {
	cwd, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", start, err)
	}
	root, err := FindRoot(cwd)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, config.RepoDir)

	cfg, err := config.ForRepo(dir)
	if err != nil {
		return nil, err
	}

	objects, err := content.NewFileStore(filepath.Join(dir, "objects"), cfg.Cache.Objects)
	if err != nil {
		return nil, fmt.Errorf("opening object store: %w", err)
	}
	commits, err := content.NewFileStore(filepath.Join(dir, "commits"), cfg.Cache.Objects)
	if err != nil {
		return nil, fmt.Errorf("opening commit store: %w", err)
	}

	ws := workspace.New(root, objects, workspace.Options{
		ContextLines: cfg.Diff.ContextLines,
		IgnoreDirs:   cfg.Add.IgnoreDirs,
	}, logger)

	return &Repository{
		Root:      root,
		Dir:       dir,
		Config:    cfg,
		Logger:    logger,
		Objects:   objects,
		Commits:   commits,
		Chain:     commit.NewChain(commits, filepath.Join(dir, "HEAD"), logger),
		Index:     index.NewFile(filepath.Join(dir, "index")),
		Workspace: ws,
		cwd:       cwd,
	}, nil
}

// Lock takes the repository's exclusive lock. Callers must Release it.
func (r *Repository) Lock() (*safe.Lock, error) {
	path := filepath.Join(r.Dir, "lock")
	lock, err := safe.Acquire(path)
	if errors.Is(err, safe.ErrLocked) {
		return nil, forgeerr.Locked(path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("locking repository: %w", err)
	}
	return lock, nil
}

// withLock runs fn while holding the repository lock.
func (r *Repository) withLock(fn func() error) (err error) {
	lock, err := r.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn()
}
