package content

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store is a directory of immutable blobs, each named by the digest of its
// content. Objects and commit records both live in one.
type Store struct {
	root  string
	cache *lru.Cache[string, []byte]
}

// Info describes one stored item.
type Info struct {
	Digest  string
	Size    int64
	ModTime time.Time
}
