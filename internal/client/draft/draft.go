// Package draft keeps the in-progress entry of an edit session on local disk
// so it survives a crash or an accidental exit. Drafts never leave the machine.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// Namespace is the key drafts are stored under.
const Namespace = "kokoro-wiki-draft"

// Draft is the text being edited for one stream.
type Draft struct {
	Stream  domain.Stream `json:"stream"`
	Content string        `json:"content"`
	SavedAt time.Time     `json:"saved_at"`
}

// Blank reports whether the draft holds nothing worth keeping.
func (d Draft) Blank() bool {
	return strings.TrimSpace(d.Content) == ""
}

// Store persists at most one draft.
type Store interface {
	// Load returns nil, nil when no draft is stored.
	Load() (*Draft, error)
	Save(d Draft) error
	Clear() error
}

// FileStore keeps drafts in a JSON object keyed by namespace. Writes go
// through a temp file and rename so a crash never leaves a torn file.
type FileStore struct {
	path      string
	namespace string
	mu        sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, namespace: Namespace}
}

// DefaultPath is <user config dir>/kokoro/drafts.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("draft: locate config dir: %w", err)
	}
	return filepath.Join(dir, "kokoro", "drafts.json"), nil
}

func (s *FileStore) Load() (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, err
	}
	d, ok := all[s.namespace]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *FileStore) Save(d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	all[s.namespace] = d
	return s.write(all)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := all[s.namespace]; !ok {
		return nil
	}
	delete(all, s.namespace)
	return s.write(all)
}

func (s *FileStore) read() (map[string]Draft, error) {
	all := map[string]Draft{}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft: read: %w", err)
	}
	if len(raw) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("draft: decode %s: %w", s.path, err)
	}
	return all, nil
}

func (s *FileStore) write(all map[string]Draft) error {
	raw, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("draft: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("draft: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".drafts-*.json")
	if err != nil {
		return fmt.Errorf("draft: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("draft: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("draft: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("draft: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("draft: replace: %w", err)
	}
	return nil
}

// LoadOnMount restores the stored draft when an edit session opens. A blank
// or unreadable draft is reported as none.
func LoadOnMount(store Store) *Draft {
	d, err := store.Load()
	if err != nil || d == nil || d.Blank() {
		return nil
	}
	return d
}
