package drafts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileStore persists drafts as one JSON file per draft, named by draft
// id, under a single directory. Durability is best-effort: the manager
// treats its in-memory map as the source of truth and logs write
// failures instead of rolling back.
type fileStore struct {
	dir string
}

func newFileStore(dir string) (*fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating drafts directory: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

// path returns the file path for a draft id.
func (fs *fileStore) path(id string) string {
	return filepath.Join(fs.dir, id+".json")
}

// write marshals and writes the full draft record.
func (fs *fileStore) write(d *Draft) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling draft %q: %w", d.ID, err)
	}
	return os.WriteFile(fs.path(d.ID), data, 0o644)
}

// delete removes a draft's file. Missing files are not an error; the
// expiry sweep and explicit deletes may race over the same id.
func (fs *fileStore) delete(id string) error {
	err := os.Remove(fs.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting draft file %q: %w", id, err)
	}
	return nil
}

// exists reports whether a draft file is already on disk.
func (fs *fileStore) exists(id string) bool {
	_, err := os.Stat(fs.path(id))
	return err == nil
}

// loadAll reads every draft file in the store directory. Unreadable or
// malformed files are skipped, not fatal.
func (fs *fileStore) loadAll() ([]*Draft, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading drafts directory: %w", err)
	}

	var out []*Draft
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(fs.dir, entry.Name()))
		if err != nil {
			continue
		}
		var d Draft
		if err := json.Unmarshal(data, &d); err != nil {
			continue
		}
		if d.ID == "" {
			continue
		}
		out = append(out, &d)
	}
	return out, nil
}
