package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgopivy/internal/domain"
)

func Test_Store(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Put(domain.IndexedDocument{
		StoredName: "b.txt",
		Chunks:     []domain.Chunk{{ID: 0, Text: "beta"}},
	}))
	require.NoError(t, s.Put(domain.IndexedDocument{
		StoredName: "a.txt",
		Chunks:     []domain.Chunk{{ID: 0, Text: "alpha"}},
	}))

	docs, err := s.All()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].StoredName)
	assert.Equal(t, "b.txt", docs[1].StoredName)

	require.NoError(t, s.Delete("a.txt"))
	docs, err = s.All()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b.txt", docs[0].StoredName)
}
