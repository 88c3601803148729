package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileCache keeps one JSON entry per key under a directory, sharded by the
// first byte of the key hash. The CLI uses it under ~/.cache/copper.
type FileCache struct {
	dir string
	now func() time.Time
}

// fileEntry is the on-disk form of one cached artifact. The key is stored so
// a Get can tell its own entry from a foreign or truncated file.
type fileEntry struct {
	Key       string    `json:"key"`
	Kind      string    `json:"kind"`
	Created   time.Time `json:"created"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Data      []byte    `json:"data"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// KindOf returns the artifact kind of a cache key, "drc" for
// "drc:<hash>" and also for a scoped "serve:drc:<hash>". Keys without a kind
// are "other".
func KindOf(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 || parts[len(parts)-2] == "" {
		return "other"
	}
	return parts[len(parts)-2]
}

// NewFileCache opens a file cache in dir, creating the directory if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Get returns the entry for key. Expired entries, unreadable files and files
// holding another key are removed and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e fileEntry
	if json.Unmarshal(data, &e) != nil || e.Key != key || e.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the entry for key. The file is replaced by rename, so a
// concurrent Get from another copper process never reads half an entry.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	now := c.now().UTC()
	e := fileEntry{Key: key, Kind: KindOf(key), Created: now, Data: data}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	buf, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(buf)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Delete removes the entry for key. A missing entry is not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Usage totals the entries of one artifact kind.
type Usage struct {
	Kind    string
	Entries int
	Bytes   int64
	Expired int
}

// Usage returns per-kind totals sorted by kind. Files that cannot be decoded
// count as "other".
func (c *FileCache) Usage() ([]Usage, error) {
	now := c.now()
	byKind := make(map[string]*Usage)
	err := c.walk(func(path string, size int64) error {
		kind, expired := "other", false
		if e, ok := readEntry(path); ok {
			kind, expired = e.Kind, e.expired(now)
		}
		u := byKind[kind]
		if u == nil {
			u = &Usage{Kind: kind}
			byKind[kind] = u
		}
		u.Entries++
		u.Bytes += size
		if expired {
			u.Expired++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]Usage, 0, len(byKind))
	for _, u := range byKind {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

// Prune removes expired and undecodable entries and returns how many went.
func (c *FileCache) Prune() (int, error) {
	now := c.now()
	n := 0
	err := c.walk(func(path string, _ int64) error {
		if e, ok := readEntry(path); ok && !e.expired(now) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// Clear removes every entry and returns how many there were.
func (c *FileCache) Clear() (int, error) {
	n := 0
	if err := c.walk(func(string, int64) error { n++; return nil }); err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Close does nothing.
func (c *FileCache) Close() error { return nil }

// path maps a key to dir/<2 hex>/<62 hex>.json.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

// walk calls fn for every entry file with its size.
func (c *FileCache) walk(fn func(path string, size int64) error) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(path, info.Size())
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func readEntry(path string) (fileEntry, bool) {
	var e fileEntry
	data, err := os.ReadFile(path)
	if err != nil || json.Unmarshal(data, &e) != nil || e.Key == "" {
		return fileEntry{}, false
	}
	return e, true
}

var _ Cache = (*FileCache)(nil)
