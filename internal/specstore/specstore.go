// Package specstore persists finalized entities. The draft engine hands
// a finalized entity to this collaborator and is done with it; drafts
// and finalized specs have separate lifecycles and separate stores.
package specstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/sdd-quill/internal/entity"
)

// Store is the downstream contract for finalized entities.
// Abstracted so tools depend on the interface, not the filesystem.
type Store interface {
	Save(t entity.Type, id string, data map[string]any) error
	Load(t entity.Type, id string) (map[string]any, error)
	List(t entity.Type) ([]string, error)
}

// FileStore implements Store as one JSON file per entity under
// <root>/specs/<type>/<id>.json.
type FileStore struct {
	root string
}

// NewFileStore creates a filesystem-backed spec store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// typeDir returns the directory for an entity type.
func (fs *FileStore) typeDir(t entity.Type) string {
	return filepath.Join(fs.root, "specs", string(t))
}

// entityPath returns the file path for a finalized entity.
func (fs *FileStore) entityPath(t entity.Type, id string) string {
	return filepath.Join(fs.typeDir(t), id+".json")
}

// Save writes the finalized entity, creating directories as needed.
func (fs *FileStore) Save(t entity.Type, id string, data map[string]any) error {
	if err := entity.ValidateType(t); err != nil {
		return err
	}
	if err := os.MkdirAll(fs.typeDir(t), 0o755); err != nil {
		return fmt.Errorf("creating spec directory: %w", err)
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling entity %q: %w", id, err)
	}
	return os.WriteFile(fs.entityPath(t, id), payload, 0o644)
}

// Load reads one finalized entity by id.
func (fs *FileStore) Load(t entity.Type, id string) (map[string]any, error) {
	data, err := os.ReadFile(fs.entityPath(t, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("entity %q of type %s not found", id, t)
		}
		return nil, fmt.Errorf("reading entity %q: %w", id, err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing entity %q: %w", id, err)
	}
	return out, nil
}

// List returns the ids of all finalized entities of a type.
func (fs *FileStore) List(t entity.Type) ([]string, error) {
	entries, err := os.ReadDir(fs.typeDir(t))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading spec directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, nil
}
