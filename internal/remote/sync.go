// internal/remote/sync.go
package remote

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mstvb/forge/internal/safe"

	"go.uber.org/zap"
)

// Areas are the repository subdirectories that are synchronised. The index
// and HEAD are local state and never leave the machine.
var Areas = []string{"objects", "commits"}

var ErrRemoteNotFound = errors.New("remote repository not found")

// AreaResult describes what happened to one area during a sync.
type AreaResult struct {
	Area    string
	Skipped bool
	Copied  int
}

type Result struct {
	Areas []AreaResult
}

// Copied is the total number of items copied across all areas.
func (r *Result) Copied() int {
	n := 0
	for _, a := range r.Areas {
		n += a.Copied
	}
	return n
}

// Push replaces each remote area with a full copy of the local one. Areas that
// do not exist locally are skipped and leave the remote untouched.
func Push(localDir, remoteDir string, logger *zap.Logger) (*Result, error) {
	if err := os.MkdirAll(remoteDir, 0755); err != nil {
		return nil, fmt.Errorf("creating remote %s: %w", remoteDir, err)
	}

	result := &Result{}
	for _, area := range Areas {
		src := filepath.Join(localDir, area)
		dst := filepath.Join(remoteDir, area)

		if !isDir(src) {
			logger.Debug("Local area missing, skipping", zap.String("area", area))
			result.Areas = append(result.Areas, AreaResult{Area: area, Skipped: true})
			continue
		}

		if err := os.RemoveAll(dst); err != nil {
			return result, fmt.Errorf("clearing remote %s: %w", area, err)
		}
		n, err := copyTree(src, dst)
		if err != nil {
			return result, fmt.Errorf("pushing %s: %w", area, err)
		}

		logger.Info("Area pushed", zap.String("area", area), zap.Int("items", n))
		result.Areas = append(result.Areas, AreaResult{Area: area, Copied: n})
	}

	return result, nil
}

// Pull copies every remote item whose name is not present locally. Local
// items are never overwritten or removed, so repeated pulls are harmless.
func Pull(localDir, remoteDir string, logger *zap.Logger) (*Result, error) {
	if !isDir(remoteDir) {
		return nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, remoteDir)
	}

	result := &Result{}
	for _, area := range Areas {
		src := filepath.Join(remoteDir, area)
		dst := filepath.Join(localDir, area)

		if !isDir(src) {
			logger.Debug("Remote area missing, skipping", zap.String("area", area))
			result.Areas = append(result.Areas, AreaResult{Area: area, Skipped: true})
			continue
		}
		if err := os.MkdirAll(dst, 0755); err != nil {
			return result, fmt.Errorf("creating %s: %w", area, err)
		}

		entries, err := os.ReadDir(src)
		if err != nil {
			return result, fmt.Errorf("listing remote %s: %w", area, err)
		}

		copied := 0
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}
			target := filepath.Join(dst, name)
			if _, err := os.Lstat(target); err == nil {
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return result, fmt.Errorf("checking %s: %w", target, err)
			}

			if err := copyFile(filepath.Join(src, name), target); err != nil {
				return result, fmt.Errorf("pulling %s/%s: %w", area, name, err)
			}
			copied++
		}

		logger.Info("Area pulled", zap.String("area", area), zap.Int("items", copied))
		result.Areas = append(result.Areas, AreaResult{Area: area, Copied: copied})
	}

	return result, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// copyTree copies every regular file under src into dst and returns how many
// files were copied.
func copyTree(src, dst string) (int, error) {
	n := 0
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := copyFile(p, target); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// copyFile copies src to dst keeping the permission bits and modification
// time, which commit ordering falls back on. dst only appears once the whole
// content has been written.
func copyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	rd, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		cerr := rd.Close()
		if err == nil {
			err = cerr
		}
	}()

	if err = safe.WriteFrom(dst, rd, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
