package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Save_GeneratesStoredNames(t *testing.T) {
	s, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	name, err := s.Save("My Notes.TXT", []byte("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".txt"))
	assert.Len(t, name, 32+len(".txt"))

	// Missing extensions default to .txt.
	name, err = s.Save("noext", []byte("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".txt"))

	// Other extensions are preserved.
	name, err = s.Save("slides.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
}

func Test_List_SortedWithSizes(t *testing.T) {
	s, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("a.txt", []byte("12345"))
	require.NoError(t, err)
	_, err = s.Save("b.txt", []byte("12"))
	require.NoError(t, err)

	items, err := s.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Less(t, items[0].StoredName, items[1].StoredName)
	for _, it := range items {
		assert.Contains(t, []int64{2, 5}, it.Bytes)
	}
}

func Test_ReadText(t *testing.T) {
	s, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	name, err := s.Save("notes.txt", []byte("some notes"))
	require.NoError(t, err)

	text, err := s.ReadText(name)
	require.NoError(t, err)
	assert.Equal(t, "some notes", text)

	_, err = s.ReadText("does-not-exist.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	pdfName, err := s.Save("slides.pdf", []byte("%PDF"))
	require.NoError(t, err)
	_, err = s.ReadText(pdfName)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	// Path traversal is neutralized to the base name.
	_, err = s.ReadText(filepath.Join("..", "escape.txt"))
	assert.ErrorIs(t, err, ErrNotFound)
}
