// =============================================================================
// distiviz - Dataset Cache
// =============================================================================
//
// Parsed datasets are kept between runs so the user does not have to upload
// the same workbook again. Each dataset is stored whole under its name; a new
// upload replaces it.
//
// STRATEGY (chosen once in Open):
//   | Durable store | Primary        | Legacy         |
//   |---------------|----------------|----------------|
//   | available     | SQLite         | simple file KV |
//   | unavailable   | simple file KV | none           |
//   | neither works | memory         | none           |
//   | disabled      | memory         | none           |
//
// MIGRATION:
//   The first Get or Set of a name in a process looks for a copy in the
//   legacy store. If the primary store has none, the legacy copy is moved
//   across. Either way the legacy copy is removed and the name is not checked
//   again.
//
// =============================================================================

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ginjaninja78/distiviz/internal/config"
	"github.com/ginjaninja78/distiviz/internal/logging"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// Store reads and writes whole datasets by name.
type Store struct {
	primary Backend
	legacy  Backend
	logger  logging.Logger
	now     func() time.Time

	mu       sync.Mutex
	migrated map[string]bool
}

// NewStore creates a Store over primary. legacy may be nil.
func NewStore(primary, legacy Backend, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		primary:  primary,
		legacy:   legacy,
		logger:   logger,
		now:      time.Now,
		migrated: make(map[string]bool),
	}
}

// Open builds the Store described by cfg, falling back to the simple store
// when the durable one cannot be opened, and to memory when neither can.
// Datasets kept in memory are lost when the process exits.
//
// RETURNS:
//   - The store. Unusable backends are logged at WARN, not returned.
func Open(ctx context.Context, cfg config.CacheConfig, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.Disabled {
		logger.Debug("cache disabled, keeping datasets in memory")
		return NewStore(NewMemoryBackend(), nil, logger), nil
	}

	simple, simpleErr := NewFileBackend(cfg.LegacyDir, cfg.LegacyPrefix, cfg.LegacyQuotaBytes)

	durable, err := OpenSQLite(ctx, cfg.DurablePath)
	if err == nil {
		if simpleErr != nil {
			logger.Warn("legacy cache unavailable, skipping migration: %v", simpleErr)
			return NewStore(durable, nil, logger), nil
		}
		return NewStore(durable, simple, logger), nil
	}

	if simpleErr != nil {
		logger.Warn("no usable cache backend, datasets will not persist: %v", errors.Join(err, simpleErr))
		return NewStore(NewMemoryBackend(), nil, logger), nil
	}
	logger.Warn("durable cache unavailable, using simple store: %v", err)
	return NewStore(simple, nil, logger), nil
}

// Strategy describes the active backends, e.g. "sqlite+file".
func (s *Store) Strategy() string {
	if s.legacy == nil {
		return s.primary.Kind()
	}
	return s.primary.Kind() + "+" + s.legacy.Kind()
}

// Get returns the stored dataset, or false when there is none.
// The returned rows are decoded copies owned by the caller.
func (s *Store) Get(ctx context.Context, name string) (Entry, bool, error) {
	s.migrateOnce(ctx, name)

	payload, ok, err := s.primary.Load(ctx, name)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	e, err := decodeEntry(name, payload)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Set replaces the stored dataset with rows and meta.
func (s *Store) Set(ctx context.Context, name string, rows []types.Record, meta types.Meta) error {
	s.migrateOnce(ctx, name)

	payload, err := encodeEntry(Entry{
		Name:      name,
		Version:   EntryVersion,
		Timestamp: s.now().UTC(),
		Rows:      rows,
		Meta:      meta,
	})
	if err != nil {
		return err
	}
	if err := s.primary.Save(ctx, name, payload); err != nil {
		return fmt.Errorf("cache %s: %w", s.primary.Kind(), err)
	}
	s.logger.Debug("cached %d row(s) under %q (%d bytes)", len(rows), name, len(payload))
	return nil
}

// Clear removes one dataset from every backend.
func (s *Store) Clear(ctx context.Context, name string) error {
	s.mu.Lock()
	s.migrated[name] = true
	s.mu.Unlock()

	if err := s.primary.Delete(ctx, name); err != nil {
		return err
	}
	if s.legacy != nil {
		if err := s.legacy.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// ClearAll removes every dataset from every backend.
func (s *Store) ClearAll(ctx context.Context) error {
	names, err := s.allNames(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if err := s.Clear(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Names lists stored datasets, including ones still waiting in the legacy store.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	return s.allNames(ctx)
}

func (s *Store) allNames(ctx context.Context) ([]string, error) {
	names, err := s.primary.Keys(ctx)
	if err != nil {
		return nil, err
	}
	if s.legacy == nil {
		return names, nil
	}
	legacy, err := s.legacy.Keys(ctx)
	if err != nil {
		s.logger.Warn("failed to list legacy cache: %v", err)
		return names, nil
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range legacy {
		if !seen[n] {
			names = append(names, n)
		}
	}
	return names, nil
}

// Close releases the backends.
func (s *Store) Close() error {
	err := s.primary.Close()
	if s.legacy != nil {
		err = errors.Join(err, s.legacy.Close())
	}
	return err
}

// migrateOnce moves a legacy copy of name into the primary store the first
// time name is touched. Failures are logged and retried on the next call.
func (s *Store) migrateOnce(ctx context.Context, name string) {
	if s.legacy == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.migrated[name] {
		return
	}
	if err := s.migrate(ctx, name); err != nil {
		s.logger.Warn("cache migration of %q failed: %v", name, err)
		return
	}
	s.migrated[name] = true
}

func (s *Store) migrate(ctx context.Context, name string) error {
	_, inPrimary, err := s.primary.Load(ctx, name)
	if err != nil {
		return err
	}

	if !inPrimary {
		payload, ok, err := s.legacy.Load(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		entry, err := decodeEntry(name, payload)
		if err != nil {
			if errors.Is(err, errCorruptPayload) {
				s.logger.Warn("dropping unreadable legacy copy of %q: %v", name, err)
				return s.legacy.Delete(ctx, name)
			}
			return err
		}
		upgraded, err := encodeEntry(entry)
		if err != nil {
			return err
		}
		if err := s.primary.Save(ctx, name, upgraded); err != nil {
			return err
		}
		s.logger.Info("migrated %q (%d row(s)) from %s to %s cache", name, len(entry.Rows), s.legacy.Kind(), s.primary.Kind())
	}

	return s.legacy.Delete(ctx, name)
}
