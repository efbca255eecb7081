package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored filename does not exist.
var ErrNotFound = errors.New("upload not found")

// ErrUnsupportedType is returned when an operation requires plain text but
// the upload has a different extension.
var ErrUnsupportedType = errors.New("only .txt uploads are supported")

// Upload describes one stored file.
type Upload struct {
	StoredName string `json:"stored_filename"`
	Bytes      int64  `json:"bytes"`
}

// UploadStore keeps raw uploads on disk under random stored names that
// preserve the original extension.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

// Dir returns the directory uploads are stored under.
func (s *UploadStore) Dir() string { return s.dir }

// Save writes content under a fresh stored name derived from a random UUID,
// keeping the original file's extension (".txt" when it has none).
func (s *UploadStore) Save(originalName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".txt"
	}
	storedName := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	if err := os.WriteFile(filepath.Join(s.dir, storedName), content, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return storedName, nil
}

// List returns all uploads sorted by stored name.
func (s *UploadStore) List() ([]Upload, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	var items []Upload
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		items = append(items, Upload{StoredName: e.Name(), Bytes: info.Size()})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].StoredName < items[j].StoredName })
	return items, nil
}

// ReadText returns the content of a stored .txt upload.
func (s *UploadStore) ReadText(storedName string) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(storedName))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	if strings.ToLower(filepath.Ext(path)) != ".txt" {
		return "", ErrUnsupportedType
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return string(data), nil
}
