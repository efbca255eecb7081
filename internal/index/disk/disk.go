package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"orgopivy/internal/domain"
)

// Store keeps one JSON file per indexed document under a directory. The
// payload shape is part of the on-disk contract: readers of existing index
// directories rely on it.
type Store struct {
	dir string
}

type payload struct {
	StoredFilename string         `json:"stored_filename"`
	ChunkCount     int            `json:"chunk_count"`
	Chunks         []domain.Chunk `json:"chunks"`
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Put(doc domain.IndexedDocument) error {
	p := payload{
		StoredFilename: doc.StoredName,
		ChunkCount:     len(doc.Chunks),
		Chunks:         doc.Chunks,
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal index entry: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(doc.StoredName)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index entry: %w", err)
	}
	return nil
}

// All loads every index entry, ordered by filename so that equal-score
// retrieval ties rank deterministically.
func (s *Store) All() ([]domain.IndexedDocument, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read index dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	docs := make([]domain.IndexedDocument, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read index entry %s: %w", name, err)
		}
		var p payload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode index entry %s: %w", name, err)
		}
		docs = append(docs, domain.IndexedDocument{StoredName: p.StoredFilename, Chunks: p.Chunks})
	}
	return docs, nil
}

func (s *Store) Delete(storedName string) error {
	path := filepath.Join(s.dir, filepath.Base(storedName)+".json")
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete index entry: %w", err)
	}
	return nil
}
