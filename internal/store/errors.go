package store

import (
	"errors"
	"fmt"
	"time"
)

// CorruptStoreError reports persisted registry data that cannot be parsed.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("registry %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// PersistenceError reports a failed write of the registry file.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist registry %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// LockTimeoutError reports that the registry lock could not be acquired in time.
type LockTimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("registry %s is locked by another process (waited %s)", e.Path, e.Timeout)
}

// IsRetryable reports whether err is a transient store failure worth retrying.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	var le *LockTimeoutError
	return errors.As(err, &pe) || errors.As(err, &le)
}
