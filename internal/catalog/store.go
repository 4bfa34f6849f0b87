package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockTimeout    = 5 * time.Second
	lockRetryDelay = 10 * time.Millisecond
	fileMode       = 0644
	dirMode        = 0755
	catalogVersion = 1
)

// catalogFile represents the on-disk catalog format.
type catalogFile struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

type jsonStore struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex // the flock handle is not safe for concurrent use
}

// NewStore creates a new JSON-backed catalog store.
//
// Cross-process access is serialized with an advisory lock on a sibling
// "<path>.lock" file, so the catalog itself can be replaced atomically.
func NewStore(path string) *jsonStore {
	return &jsonStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *jsonStore) Add(ctx context.Context, entry Entry) error {
	return s.withExclusiveLock(ctx, func(cf *catalogFile) error {
		for _, e := range cf.Entries {
			if e.ID == entry.ID {
				return ErrAlreadyExists
			}
			if entry.SessionName != "" && e.SessionName == entry.SessionName {
				return ErrAlreadyExists
			}
		}

		cf.Entries = append(cf.Entries, entry)
		return nil
	})
}

func (s *jsonStore) Get(ctx context.Context, id string) (*Entry, error) {
	var result *Entry

	err := s.withSharedLock(ctx, func(cf *catalogFile) error {
		for i := range cf.Entries {
			if cf.Entries[i].ID == id {
				entry := cf.Entries[i]
				result = &entry
				return nil
			}
		}
		return ErrNotFound
	})

	return result, err
}

func (s *jsonStore) Update(ctx context.Context, entry Entry) error {
	return s.withExclusiveLock(ctx, func(cf *catalogFile) error {
		for i := range cf.Entries {
			if cf.Entries[i].ID == entry.ID {
				cf.Entries[i] = entry
				return nil
			}
		}
		return ErrNotFound
	})
}

func (s *jsonStore) Remove(ctx context.Context, id string) error {
	return s.withExclusiveLock(ctx, func(cf *catalogFile) error {
		for i := range cf.Entries {
			if cf.Entries[i].ID == id {
				cf.Entries = slices.Delete(cf.Entries, i, i+1)
				return nil
			}
		}
		return ErrNotFound
	})
}

func (s *jsonStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	var result []Entry

	err := s.withSharedLock(ctx, func(cf *catalogFile) error {
		for _, e := range cf.Entries {
			if filter.Status != "" && e.Status != filter.Status {
				continue
			}
			result = append(result, e)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(result, func(a, b Entry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, nil
}

// withSharedLock executes fn with a shared (read) lock.
func (s *jsonStore) withSharedLock(ctx context.Context, fn func(*catalogFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acquireLock(ctx, false); err != nil {
		return err
	}
	defer s.lock.Unlock() //nolint:errcheck // best-effort cleanup

	cf, err := s.load()
	if err != nil {
		return err
	}
	return fn(cf)
}

// withExclusiveLock executes fn with an exclusive (write) lock.
// Changes made by fn are persisted to disk.
func (s *jsonStore) withExclusiveLock(ctx context.Context, fn func(*catalogFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acquireLock(ctx, true); err != nil {
		return err
	}
	defer s.lock.Unlock() //nolint:errcheck // best-effort cleanup

	cf, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(cf); err != nil {
		return err
	}

	return s.save(cf)
}

// acquireLock takes the lock file, retrying until lockTimeout elapses.
func (s *jsonStore) acquireLock(ctx context.Context, exclusive bool) error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = s.lock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		locked, err = s.lock.TryRLockContext(lockCtx, lockRetryDelay)
	}

	switch {
	case locked:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case err == nil || errors.Is(err, context.DeadlineExceeded):
		return ErrLockTimeout
	default:
		return fmt.Errorf("acquire file lock: %w", err)
	}
}

// load reads and parses the catalog file. A missing or empty file is an
// empty catalog.
func (s *jsonStore) load() (*catalogFile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0) {
		return &catalogFile{Version: catalogVersion, Entries: []Entry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var cf catalogFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}
	if cf.Version > catalogVersion {
		return nil, fmt.Errorf("catalog version %d is newer than supported version %d", cf.Version, catalogVersion)
	}

	return &cf, nil
}

// save writes the catalog to disk atomically.
func (s *jsonStore) save(cf *catalogFile) error {
	cf.Version = catalogVersion

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "catalog-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		}
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cf); err != nil {
		tmp.Close() //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename catalog file: %w", err)
	}

	tmpPath = ""
	return nil
}
