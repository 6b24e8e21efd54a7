package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row exists for the requested profile id.
	ErrNotFound = errors.New("profile not found")

	// ErrConsentRequired is returned on any attempt to persist a record
	// without explicit consent. No partial write happens.
	ErrConsentRequired = errors.New("cannot store profile without explicit consent")
)

// PersistenceError wraps a database failure during a write. The operation is
// all-or-nothing: when one of these comes back, nothing was stored.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("profile %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// CorruptRecordError marks a stored row whose payload cannot be decrypted or
// decoded, usually after a key rotation orphaned it.
type CorruptRecordError struct {
	ProfileID string
	Err       error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("profile %s is unreadable: %v", e.ProfileID, e.Err)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}
