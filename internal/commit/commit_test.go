package commit

import (
	"testing"
	"time"

	"github.com/mstvb/forge/internal/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSortedKeysNoEscaping(t *testing.T) {
	parent := "p"
	data, err := Encode(&Commit{
		Files:     index.Index{"b": "2", "a": "1"},
		Message:   "fix <tags> & stuff",
		Parent:    &parent,
		Timestamp: "t",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"files":{"a":"1","b":"2"},"message":"fix <tags> & stuff","parent":"p","timestamp":"t"}`, string(data))
}

func TestDecode(t *testing.T) {
	c, err := Decode([]byte(`{"timestamp":"2024-05-06 07:08:09","message":"m","parent":"","files":null}`))
	require.NoError(t, err)
	assert.Nil(t, c.Parent)
	assert.NotNil(t, c.Files)

	ts, err := c.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local), ts)

	_, err = Decode([]byte(`[]`))
	assert.Error(t, err)
}

func TestTime(t *testing.T) {
	c := &Commit{Timestamp: "2024-05-06T07:08:09.123456789Z"}
	ts, err := c.Time()
	require.NoError(t, err)
	assert.Equal(t, 123456789, ts.Nanosecond())

	c.Timestamp = "yesterday"
	_, err = c.Time()
	assert.Error(t, err)
}
