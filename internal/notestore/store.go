// Package notestore persists learning notes as standalone JSON
// documents, one file per uploaded-file id.
package notestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lectio/lectio/internal/apperr"
	"github.com/lectio/lectio/internal/models"
)

const tmpPattern = ".lectio-tmp-*"

// Store is a filesystem-backed note store. Writes are serialized by a
// mutex around the write-then-rename sequence; reads are lock-free and
// observe either the old or the new document atomically.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates the store, making the root directory if needed.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("notestore: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("notestore: mkdir root: %w", err)
	}
	return &Store{root: abs}, nil
}

// path maps a file id to its document path. Only the base name of the
// id is used, so ids can never escape the store root.
func (s *Store) path(fileID string) string {
	return filepath.Join(s.root, filepath.Base(fileID)+".json")
}

// Read returns the persisted note for fileID, or apperr.ErrNotFound
// when no usable document exists. A corrupt document counts as absent:
// the next generation overwrites it wholesale.
func (s *Store) Read(fileID string) (*models.LearningNote, error) {
	data, err := os.ReadFile(s.path(fileID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("notestore: read %s: %w", fileID, err)
	}
	var note models.LearningNote
	if err := json.Unmarshal(data, &note); err != nil {
		return nil, apperr.ErrNotFound
	}
	return &note, nil
}

// Save overwrites the whole document for fileID: marshal to a temp
// file in the same directory, fsync, then rename into place.
func (s *Store) Save(fileID string, note *models.LearningNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(note, "", "  ")
	if err != nil {
		return fmt.Errorf("notestore: marshal %s: %w", fileID, err)
	}

	tmp, err := os.CreateTemp(s.root, tmpPattern)
	if err != nil {
		return fmt.Errorf("notestore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("notestore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("notestore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("notestore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path(fileID)); err != nil {
		return fmt.Errorf("notestore: rename: %w", err)
	}
	success = true
	return nil
}

// Root returns the directory holding the note documents.
func (s *Store) Root() string {
	return s.root
}
