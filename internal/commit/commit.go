// internal/commit/commit.go
package commit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mstvb/forge/internal/index"
)

// LegacyTimeLayout is the second-resolution timestamp format older
// repositories wrote. It is still accepted when reading.
const LegacyTimeLayout = "2006-01-02 15:04:05"

// Commit is an immutable snapshot record. Fields are declared in
// alphabetical order so the JSON encoding has sorted keys.
type Commit struct {
	Files     index.Index `json:"files"`
	Message   string      `json:"message"`
	Parent    *string     `json:"parent"`
	Timestamp string      `json:"timestamp"`
}

// ParentDigest returns the parent digest or "" for a root commit.
func (c *Commit) ParentDigest() string {
	if c.Parent == nil {
		return ""
	}
	return *c.Parent
}

// Time parses the stored timestamp.
func (c *Commit) Time() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, c.Timestamp); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(LegacyTimeLayout, c.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", c.Timestamp, err)
	}
	return t, nil
}

// Encode returns the canonical serialization the commit digest is computed
// over: compact JSON, sorted keys, no HTML escaping.
func Encode(c *Commit) ([]byte, error) {
	if c.Files == nil {
		c.Files = index.Index{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding commit: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func Decode(data []byte) (*Commit, error) {
	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding commit: %w", err)
	}
	if c.Files == nil {
		c.Files = index.Index{}
	}
	if c.Parent != nil && *c.Parent == "" {
		c.Parent = nil
	}
	return &c, nil
}
