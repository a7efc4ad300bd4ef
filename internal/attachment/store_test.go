package attachment

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndOpen(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	name, err := store.Save("report.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", name)

	f, err := store.Open("report.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	f.Close()
	assert.Equal(t, "first", string(data))
}

func TestStore_LastWriteWins(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("same.txt", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = store.Save("same.txt", strings.NewReader("two"))
	require.NoError(t, err)

	f, err := store.Open("same.txt")
	require.NoError(t, err)
	defer f.Close()
	data, _ := io.ReadAll(f)
	assert.Equal(t, "two", string(data))
}

func TestStore_PathTraversal(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	name, err := store.Save("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "passwd", name)
	_, err = os.Stat(filepath.Join(root, "uploads", "passwd"))
	assert.NoError(t, err)

	_, err = store.Save("..", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestStore_OpenMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("nope.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Open("..")
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestStore_FailedWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.Save("broken.bin", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
