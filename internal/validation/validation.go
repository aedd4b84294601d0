package validation

import (
	"fmt"
	"path"
	"strings"

	"github.com/mstvb/forge/internal/config"
)

func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("commit message is required")
	}
	return nil
}

// ValidateObjectKey accepts any plain file name inside a store. Stores pulled
// from older repositories may hold keys made by another hash.
func ValidateObjectKey(key string) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}

// ValidatePath checks that a normalized repository-relative path stays inside
// the working tree and outside the repository directory.
func ValidatePath(rel string) error {
	switch {
	case rel == "" || rel == ".":
		return fmt.Errorf("empty path")
	case path.IsAbs(rel):
		return fmt.Errorf("path %q is not relative", rel)
	case path.Clean(rel) != rel:
		return fmt.Errorf("path %q is not normalized", rel)
	case rel == ".." || strings.HasPrefix(rel, "../"):
		return fmt.Errorf("path %q leaves the working tree", rel)
	case rel == config.RepoDir || strings.HasPrefix(rel, config.RepoDir+"/"):
		return fmt.Errorf("path %q is inside the repository directory", rel)
	}
	return nil
}
