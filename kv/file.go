package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FileGateway stores each key as its own file under dir.
type FileGateway struct {
	mu  sync.RWMutex
	dir string
}

// NewFileGateway returns a gateway rooted at dir. The directory is created on
// first write, not here.
func NewFileGateway(dir string) *FileGateway {
	return &FileGateway{dir: dir}
}

func (g *FileGateway) path(key string) string {
	return filepath.Join(g.dir, url.PathEscape(key)+".json")
}

func (g *FileGateway) Get(_ context.Context, key string) ([]byte, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	data, err := os.ReadFile(g.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, key, err)
	}
	return data, true, nil
}

// Set writes to a temp file then renames it over the key's file.
func (g *FileGateway) Set(_ context.Context, key string, value []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// g.mu only covers this process; other processes may write the same key.
	f, err := os.CreateTemp(g.dir, url.PathEscape(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrStorageUnavailable, key, err)
	}
	tmp := f.Name()
	_, werr := f.Write(value)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmp, 0644)
	}
	if werr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, key, werr)
	}
	if err := os.Rename(tmp, g.path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (g *FileGateway) Remove(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.Remove(g.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}
