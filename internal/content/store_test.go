package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mstvb/forge/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "objects"), 4)
	require.NoError(t, err)
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := setupStore(t)

	inputs := [][]byte{
		[]byte("hello\n"),
		{},
		{0x00, 0xff, 0xfe, 0x80},
		[]byte("ünïcode"),
	}

	for _, in := range inputs {
		digest, err := s.Put(in)
		require.NoError(t, err)
		assert.Equal(t, utils.HashContent(in), digest)

		got, err := s.Get(digest)
		require.NoError(t, err)
		assert.Equal(t, in, got)
		assert.True(t, s.Exists(digest))
	}
}

func TestStoreIdempotentPut(t *testing.T) {
	s := setupStore(t)

	d1, err := s.Put([]byte("same"))
	require.NoError(t, err)
	info1, err := s.Stat(d1)
	require.NoError(t, err)

	d2, err := s.Put([]byte("same"))
	require.NoError(t, err)
	info2, err := s.Stat(d2)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Equal(t, info1.ModTime, info2.ModTime)

	keys, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{d1}, keys)
}

func TestStoreGetMissing(t *testing.T) {
	s := setupStore(t)

	_, err := s.Get(utils.HashContent([]byte("never stored")))
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = s.Get("../escape")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.False(t, s.Exists(""))
}

func TestStoreReadsThroughAfterEviction(t *testing.T) {
	s := setupStore(t)

	var digests []string
	for _, c := range []string{"a", "b", "c", "d", "e", "f"} {
		d, err := s.Put([]byte(c))
		require.NoError(t, err)
		digests = append(digests, d)
	}

	got, err := s.Get(digests[0])
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))
}

func TestStoreList(t *testing.T) {
	s := setupStore(t)

	keys, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, keys, "unwritten store lists nothing")

	_, err = s.Put([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), ".tmp-123"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(s.Root(), "sub"), 0755))

	keys, err = s.List()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestStoreIsolatesCallerSlices(t *testing.T) {
	s := setupStore(t)

	in := []byte("original")
	digest, err := s.Put(in)
	require.NoError(t, err)
	in[0] = 'X'

	got, err := s.Get(digest)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	got[0] = 'Y'
	again, err := s.Get(digest)
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}
