package sellerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shelfscout/backend/internal/domain"
)

// FileStore persists the seller mapping as a flat JSON object of id -> name.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the mapping. A missing file is an empty mapping; an empty or
// corrupt file is an error so the caller can decide to start over.
func (s *FileStore) Load(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sellerstore: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyStore
	}

	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("sellerstore: parse %s: %w", s.path, err)
	}
	if names == nil {
		names = map[string]string{}
	}
	return names, nil
}

// Save writes the whole mapping, replacing the file atomically.
func (s *FileStore) Save(ctx context.Context, names map[string]string) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sellerstore: create dir: %w", err)
		}
	}

	encoded, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return fmt.Errorf("sellerstore: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("sellerstore: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("sellerstore: replace %s: %w", s.path, err)
	}
	return nil
}
