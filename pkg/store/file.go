package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/copper/pkg/drc"
)

// FileStore keeps one JSON file per design.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store under baseDir, which defaults to
// ~/.config/copper/exclusions.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "copper", "exclusions")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create exclusion dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) designPath(design string) string {
	return filepath.Join(s.baseDir, design+".json")
}

func (s *FileStore) read(design string) ([]drc.Exclusion, error) {
	data, err := os.ReadFile(s.designPath(design))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read exclusion file: %w", err)
	}
	var list []drc.Exclusion
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse exclusions: %w", err)
	}
	return list, nil
}

func (s *FileStore) write(design string, list []drc.Exclusion) error {
	slices.SortFunc(list, func(a, b drc.Exclusion) int { return strings.Compare(a.Fingerprint, b.Fingerprint) })
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal exclusions: %w", err)
	}
	if err := os.WriteFile(s.designPath(design), data, 0600); err != nil {
		return fmt.Errorf("write exclusion file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, design string) ([]drc.Exclusion, error) {
	if err := validateDesign(design); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(design)
}

func (s *FileStore) Save(ctx context.Context, design string, x drc.Exclusion) error {
	if err := validate(design, x); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read(design)
	if err != nil {
		return err
	}
	list = slices.DeleteFunc(list, func(e drc.Exclusion) bool { return e.Fingerprint == x.Fingerprint })
	return s.write(design, append(list, x))
}

func (s *FileStore) Delete(ctx context.Context, design, fingerprint string) error {
	if err := validateDesign(design); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read(design)
	if err != nil {
		return err
	}
	n := len(list)
	list = slices.DeleteFunc(list, func(e drc.Exclusion) bool { return e.Fingerprint == fingerprint })
	if len(list) == n {
		return fmt.Errorf("exclusion %s: %w", fingerprint, ErrNotFound)
	}
	return s.write(design, list)
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for exclusion files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
