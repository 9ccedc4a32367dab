// Package store persists the tool registry as a JSON file guarded by an
// advisory lock. Writes are atomic: a crash mid-write leaves the previous
// file intact.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"go.uber.org/zap"
)

const lockPollInterval = 25 * time.Millisecond

// Options tunes a FileStore.
type Options struct {
	LockTimeout time.Duration
	Retry       RetryPolicy
	Logger      *zap.Logger
}

// FileStore loads and saves a registry at a fixed path.
type FileStore struct {
	path        string
	lockPath    string
	lockTimeout time.Duration
	retry       RetryPolicy
	logger      *zap.Logger
}

// New creates a store for path. The lock file lives next to it as <path>.lock.
func New(path string, opts Options) *FileStore {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 5 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultRetryPolicy(2)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &FileStore{
		path:        path,
		lockPath:    path + ".lock",
		lockTimeout: opts.LockTimeout,
		retry:       opts.Retry,
		logger:      opts.Logger,
	}
}

// Path returns the registry file location.
func (s *FileStore) Path() string { return s.path }

// Exists reports whether the registry file has been written.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the registry under a shared lock. A missing file yields an empty
// registry; unparseable data yields CorruptStoreError.
func (s *FileStore) Load(ctx context.Context) (*registry.Registry, error) {
	if !s.Exists() {
		return registry.New(), nil
	}
	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.read()
}

// LoadOrEmpty is Load that falls back to an empty registry. The returned error,
// if any, is a warning for the caller to surface.
func (s *FileStore) LoadOrEmpty(ctx context.Context) (*registry.Registry, error) {
	reg, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn("registry unavailable, using empty registry", zap.String("path", s.path), zap.Error(err))
		return registry.New(), err
	}
	return reg, nil
}

// Save writes reg atomically without taking the lock. Mutations should go
// through Update instead.
func (s *FileStore) Save(reg *registry.Registry) error {
	var buf bytes.Buffer
	if err := Encode(&buf, reg.ExportAll(), FormatJSON); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := renameio.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	s.logger.Debug("registry saved", zap.String("path", s.path), zap.Int("tools", reg.Len()))
	return nil
}

// Update runs load, fn, save while holding the exclusive lock. Lock timeouts
// and write failures are retried with backoff; errors from fn are returned as is
// and nothing is written. fn may run more than once when a retry happens.
func (s *FileStore) Update(ctx context.Context, fn func(*registry.Registry) error) error {
	return retry(ctx, s.retry, s.logRetry("update"), func() error {
		unlock, err := s.acquire(ctx, true)
		if err != nil {
			return err
		}
		defer unlock()

		reg, err := s.read()
		if err != nil {
			return err
		}
		if err := fn(reg); err != nil {
			return err
		}
		return s.Save(reg)
	})
}

// Reset replaces the stored registry with reg without reading the current file,
// which makes it the recovery path for a corrupt store.
func (s *FileStore) Reset(ctx context.Context, reg *registry.Registry) error {
	return retry(ctx, s.retry, s.logRetry("reset"), func() error {
		unlock, err := s.acquire(ctx, true)
		if err != nil {
			return err
		}
		defer unlock()
		return s.Save(reg)
	})
}

func (s *FileStore) read() (*registry.Registry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return registry.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", s.path, err)
	}
	entries, err := decodeBytes(data, FormatJSON)
	if err != nil {
		return nil, &CorruptStoreError{Path: s.path, Err: err}
	}
	reg, err := registry.FromEntries(entries)
	if err != nil {
		return nil, &CorruptStoreError{Path: s.path, Err: err}
	}
	return reg, nil
}

// acquire takes the advisory lock, exclusive or shared, waiting at most the
// configured timeout. Each call opens its own lock handle so goroutines of one
// process exclude each other too.
func (s *FileStore) acquire(ctx context.Context, exclusive bool) (func(), error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	fl := flock.New(s.lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	var ok bool
	var err error
	if exclusive {
		ok, err = fl.TryLockContext(lockCtx, lockPollInterval)
	} else {
		ok, err = fl.TryRLockContext(lockCtx, lockPollInterval)
	}
	switch {
	case err == nil && ok:
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err == nil || errors.Is(err, context.DeadlineExceeded):
		return nil, &LockTimeoutError{Path: s.path, Timeout: s.lockTimeout}
	default:
		return nil, &PersistenceError{Path: s.lockPath, Err: err}
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Warn("release registry lock", zap.String("path", s.lockPath), zap.Error(err))
		}
	}, nil
}

func (s *FileStore) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	return nil
}

func (s *FileStore) logRetry(op string) func(int, error) {
	return func(attempt int, err error) {
		s.logger.Warn("retrying registry "+op, zap.Int("attempt", attempt+1), zap.Error(err))
	}
}
