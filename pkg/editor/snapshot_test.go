package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshotStore(dir)

	_, ok, err := s.Read("n1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write("n1", "# draft"))
	raw, err := os.ReadFile(filepath.Join(dir, "n1.md"))
	require.NoError(t, err)
	assert.Equal(t, "# draft", string(raw))

	content, ok, err := s.Read("n1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "# draft", content)

	require.NoError(t, s.Remove("n1"))
	require.NoError(t, s.Remove("n1"))
	assert.NoFileExists(t, filepath.Join(dir, "n1.md"))
}

func TestSnapshotStore_RejectsPathLikeIDs(t *testing.T) {
	s := NewSnapshotStore(t.TempDir())
	for _, id := range []string{"", "../x", "a/b", ".hidden"} {
		assert.ErrorIs(t, s.Write(id, "x"), ErrInvalidNoteID, id)
	}
}
