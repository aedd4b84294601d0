// internal/commit/chain.go
package commit

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mstvb/forge/internal/content"
	forgeerr "github.com/mstvb/forge/internal/errors"
	"github.com/mstvb/forge/internal/index"
	"github.com/mstvb/forge/internal/safe"
	"github.com/mstvb/forge/internal/validation"

	"go.uber.org/zap"
)

// Chain manages commit records and HEAD. HEAD is a single-line file holding
// the tip digest, or empty.
type Chain struct {
	store    *content.Store
	headPath string
	logger   *zap.Logger
	now      func() time.Time
}

// Entry pairs a commit with its digest.
type Entry struct {
	Digest string
	Commit *Commit
	// When is the ordering time: the parsed timestamp or, failing that, the
	// record's modification time.
	When time.Time
}

// History is the result of Log. Unsorted is set when HEAD could not be
// followed and Entries is every stored commit ordered by digest, descending.
type History struct {
	Head     string
	Entries  []Entry
	Unsorted bool
}

func NewChain(store *content.Store, headPath string, logger *zap.Logger) *Chain {
	return &Chain{
		store:    store,
		headPath: headPath,
		logger:   logger,
		now:      time.Now,
	}
}

// Head returns the current tip, or "" when HEAD is unset.
func (c *Chain) Head() (string, error) {
	data, err := os.ReadFile(c.headPath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Chain) SetHead(digest string) error {
	if err := safe.WriteFile(c.headPath, []byte(digest+"\n"), 0644); err != nil {
		return fmt.Errorf("writing HEAD: %w", err)
	}
	return nil
}

func (c *Chain) Get(digest string) (*Commit, error) {
	data, err := c.store.Get(digest)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", digest, err)
	}
	commit, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", digest, err)
	}
	return commit, nil
}

// Create freezes files into a new commit on top of HEAD and advances HEAD.
// files is copied; the caller's index is not touched.
func (c *Chain) Create(message string, files index.Index) (Entry, error) {
	if len(files) == 0 {
		return Entry{}, forgeerr.EmptyIndex()
	}
	if err := validation.ValidateMessage(message); err != nil {
		return Entry{}, err
	}

	head, err := c.Head()
	if err != nil {
		return Entry{}, err
	}

	now := c.now()
	record := &Commit{
		Files:     files.Clone(),
		Message:   message,
		Timestamp: now.Format(time.RFC3339Nano),
	}
	if head != "" {
		record.Parent = &head
	}

	data, err := Encode(record)
	if err != nil {
		return Entry{}, err
	}
	digest, err := c.store.Put(data)
	if err != nil {
		return Entry{}, fmt.Errorf("storing commit: %w", err)
	}
	if err := c.SetHead(digest); err != nil {
		return Entry{}, err
	}

	c.logger.Debug("commit created",
		zap.String("digest", digest),
		zap.String("parent", head),
		zap.Int("files", len(files)))

	return Entry{Digest: digest, Commit: record, When: now}, nil
}

// Log walks from HEAD to the root. The walk is iterative and stops at a
// revisited digest, so corrupted parent links cannot loop.
func (c *Chain) Log() (*History, error) {
	head, err := c.Head()
	if err != nil {
		c.logger.Warn("HEAD unreadable, listing all commits", zap.Error(err))
		return c.unsorted("")
	}
	if head == "" {
		return c.unsorted("")
	}
	if _, err := c.Get(head); err != nil {
		c.logger.Warn("HEAD commit unreadable, listing all commits",
			zap.String("head", head), zap.Error(err))
		return c.unsorted(head)
	}

	h := &History{Head: head}
	seen := make(map[string]bool)
	for id := head; id != ""; {
		if seen[id] {
			c.logger.Warn("commit cycle detected", zap.String("digest", id))
			break
		}
		seen[id] = true

		commit, err := c.Get(id)
		if err != nil {
			c.logger.Warn("history truncated at unreadable commit",
				zap.String("digest", id), zap.Error(err))
			break
		}
		h.Entries = append(h.Entries, c.entry(id, commit))
		id = commit.ParentDigest()
	}
	return h, nil
}

func (c *Chain) unsorted(head string) (*History, error) {
	all, err := c.All()
	if err != nil {
		return nil, err
	}
	h := &History{Head: head, Unsorted: true}
	for i := len(all) - 1; i >= 0; i-- {
		h.Entries = append(h.Entries, all[i])
	}
	return h, nil
}

// All reads every stored commit in ascending digest order. Unreadable
// records are logged and skipped.
func (c *Chain) All() ([]Entry, error) {
	digests, err := c.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}

	entries := make([]Entry, 0, len(digests))
	for _, d := range digests {
		commit, err := c.Get(d)
		if err != nil {
			c.logger.Warn("skipping unreadable commit", zap.String("digest", d), zap.Error(err))
			continue
		}
		entries = append(entries, c.entry(d, commit))
	}
	return entries, nil
}

// FindLatest returns the most recent commit, among all stored commits, whose
// message contains substr case-insensitively. Equal times resolve to the
// smallest digest.
func (c *Chain) FindLatest(substr string) (Entry, error) {
	all, err := c.All()
	if err != nil {
		return Entry{}, err
	}

	needle := strings.ToLower(substr)
	var (
		best  Entry
		found bool
	)
	for _, e := range all {
		if !strings.Contains(strings.ToLower(e.Commit.Message), needle) {
			continue
		}
		// all is ascending by digest, so only a strictly later time replaces.
		if !found || e.When.After(best.When) {
			best, found = e, true
		}
	}

	if !found {
		return Entry{}, forgeerr.NoMatchFound(fmt.Sprintf("no commit message contains %q", substr))
	}
	return best, nil
}

func (c *Chain) entry(digest string, commit *Commit) Entry {
	e := Entry{Digest: digest, Commit: commit}
	t, err := commit.Time()
	if err == nil {
		e.When = t
		return e
	}

	info, statErr := c.store.Stat(digest)
	if statErr != nil {
		c.logger.Warn("commit has no usable time",
			zap.String("digest", digest), zap.Error(err), zap.NamedError("stat", statErr))
		return e
	}
	c.logger.Debug("using modification time for commit",
		zap.String("digest", digest), zap.Error(err))
	e.When = info.ModTime
	return e
}
