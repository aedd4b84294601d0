package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "index"))

	ix, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, ix)
	assert.NotNil(t, ix)
}

func TestSaveReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	f := NewFile(path)

	require.NoError(t, f.Save(Index{"a.txt": "1", "b/c.txt": "2"}))
	require.NoError(t, f.Save(Index{"d.txt": "3"}))

	ix, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, Index{"d.txt": "3"}, ix)
}

func TestSaveIsSortedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	f := NewFile(path)

	require.NoError(t, f.Save(Index{"z": "1", "a": "2"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": \"2\",\n  \"z\": \"1\"\n}\n", string(data))
}

func TestLoadNormalizesForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	require.NoError(t, os.WriteFile(path, []byte(`{"dir\\f.txt":"1","./g.txt":"2"}`), 0644))

	ix, err := NewFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, Index{"dir/f.txt": "1", "g.txt": "2"}, ix)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := NewFile(path).Load()
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	ix := Index{"a": "1"}
	c := ix.Clone()
	c["b"] = "2"
	assert.Len(t, ix, 1)
}

func TestLoadDropsEscapingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	data := `{"ok.txt":"1","../up.txt":"2","/etc/passwd":"3","a/../../b":"4",".forge/HEAD":"5"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	ix, err := NewFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, Index{"ok.txt": "1"}, ix)
}
