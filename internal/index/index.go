// Package index persists the staging area: a complete mapping from
// normalized repository-relative path to object digest.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/mstvb/forge/internal/safe"
	"github.com/mstvb/forge/internal/validation"
)

// Index maps slash-separated repository-relative paths to digests.
type Index map[string]string

// Clone returns an independent copy.
func (ix Index) Clone() Index {
	out := make(Index, len(ix))
	for p, d := range ix {
		out[p] = d
	}
	return out
}

// File is the on-disk index.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads the index, returning an empty one when the file is absent.
func (f *File) Load() (Index, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Index{}, nil
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}
	if len(data) == 0 {
		return Index{}, nil
	}

	ix := Index{}
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	return normalizeKeys(ix), nil
}

// Save replaces the whole index. encoding/json sorts map keys, so the file is
// deterministic.
func (f *File) Save(ix Index) error {
	if ix == nil {
		ix = Index{}
	}
	data, err := json.MarshalIndent(normalizeKeys(ix), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := safe.WriteFile(f.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

// normalizeKeys rewrites keys written by other tools (backslashes, ./ prefixes)
// into the canonical slash form. Keys that would resolve outside the working
// tree, or into the repository directory, are dropped.
func normalizeKeys(ix Index) Index {
	out := make(Index, len(ix))
	for p, d := range ix {
		p = Normalize(p)
		if validation.ValidatePath(p) != nil {
			continue
		}
		out[p] = d
	}
	return out
}

// Normalize returns the canonical form of a repository-relative path.
func Normalize(p string) string {
	b := []byte(p)
	for i := range b {
		if b[i] == '\\' {
			b[i] = '/'
		}
	}
	return path.Clean(string(b))
}
