package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrQuotaExceeded is returned when a write would push the simple store past
// its size limit.
var ErrQuotaExceeded = errors.New("cache quota exceeded")

const fileSuffix = ".json"

// FileBackend is the simple key-value store: one file per key in a directory,
// keys namespaced by a prefix, total size capped by a quota.
type FileBackend struct {
	dir    string
	prefix string
	quota  int64

	mu sync.Mutex
}

// NewFileBackend opens (creating if needed) a file store in dir.
//
// PARAMETERS:
//   - dir: Directory holding the entries.
//   - prefix: Namespace prepended to every key.
//   - quota: Maximum total bytes across all entries in dir; 0 means unlimited.
func NewFileBackend(dir, prefix string, quota int64) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileBackend{dir: dir, prefix: prefix, quota: quota}, nil
}

func (f *FileBackend) Kind() string { return "file" }

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.dir, url.QueryEscape(f.prefix+name)+fileSuffix)
}

func (f *FileBackend) Load(_ context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", name, err)
	}
	return data, true, nil
}

func (f *FileBackend) Save(_ context.Context, name string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.path(name)
	if f.quota > 0 {
		used, err := f.usage(target)
		if err != nil {
			return err
		}
		if used+int64(len(payload)) > f.quota {
			return fmt.Errorf("%w: storing %q needs %d bytes, %d of %d in use",
				ErrQuotaExceeded, name, len(payload), used, f.quota)
		}
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", name, err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %q: %w", name, err)
	}
	return nil
}

// usage sums the size of every entry in the directory except skip.
func (f *FileBackend) usage(skip string) (int64, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list cache directory: %w", err)
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		if filepath.Join(f.dir, e.Name()) == skip {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func (f *FileBackend) Delete(_ context.Context, name string) error {
	err := os.Remove(f.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %q: %w", name, err)
	}
	return nil
}

func (f *FileBackend) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(e.Name(), fileSuffix))
		if err != nil || !strings.HasPrefix(key, f.prefix) {
			continue
		}
		keys = append(keys, strings.TrimPrefix(key, f.prefix))
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileBackend) Close() error { return nil }
