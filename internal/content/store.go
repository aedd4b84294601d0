// internal/content/store.go
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mstvb/forge/internal/safe"
	"github.com/mstvb/forge/internal/validation"
	"github.com/mstvb/forge/shared/utils"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrInvalidKey      = errors.New("invalid content key")
)

const defaultCacheSize = 256

// NewFileStore opens the store rooted at root. The directory is created on the
// first Put, so opening a store never changes the filesystem.
func NewFileStore(root string, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &Store{
		root:  root,
		cache: cache,
	}, nil
}

func (s *Store) Root() string {
	return s.root
}

// Put stores content and returns its digest. Existing content is not rewritten.
// The store keeps its own copy, so callers may reuse content afterwards.
func (s *Store) Put(content []byte) (string, error) {
	// Allow empty content (empty files are valid)
	content = bytes.Clone(content)
	if content == nil {
		content = []byte{}
	}

	hash := utils.HashContent(content)

	path := s.path(hash)
	if _, err := os.Stat(path); err == nil {
		s.cache.Add(hash, content)
		return hash, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking content: %w", err)
	}

	if err := safe.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("writing content: %w", err)
	}

	s.cache.Add(hash, content)
	return hash, nil
}

// Get returns the content stored under digest, or ErrContentNotFound. The
// returned slice is a copy and may be modified.
func (s *Store) Get(digest string) ([]byte, error) {
	if !validKey(digest) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, digest)
	}

	if content, ok := s.cache.Get(digest); ok {
		return bytes.Clone(content), nil
	}

	content, err := os.ReadFile(s.path(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrContentNotFound, digest)
		}
		return nil, fmt.Errorf("reading content: %w", err)
	}

	s.cache.Add(digest, content)
	return bytes.Clone(content), nil
}

// Exists checks if content exists
func (s *Store) Exists(digest string) bool {
	if !validKey(digest) {
		return false
	}
	if s.cache.Contains(digest) {
		return true
	}
	_, err := os.Stat(s.path(digest))
	return err == nil
}

func (s *Store) Stat(digest string) (Info, error) {
	if !validKey(digest) {
		return Info{}, fmt.Errorf("%w: %q", ErrInvalidKey, digest)
	}
	fi, err := os.Stat(s.path(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, fmt.Errorf("%w: %s", ErrContentNotFound, digest)
		}
		return Info{}, err
	}
	return Info{Digest: digest, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// List returns every stored key in ascending order. A store that was never
// written to is empty.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", s.root, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !validKey(e.Name()) {
			continue
		}
		keys = append(keys, e.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) path(digest string) string {
	return filepath.Join(s.root, digest)
}

func validKey(key string) bool {
	return validation.ValidateObjectKey(key) == nil
}
