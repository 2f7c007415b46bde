package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrAssetNotFound indicates an asset was not found
	ErrAssetNotFound = errors.New("asset not found")

	// ErrContentNotFound indicates a content entry was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrStorageBackendNotFound indicates a storage backend was not found
	ErrStorageBackendNotFound = errors.New("storage backend not found")

	// ErrPermissionDenied indicates the actor is neither the owner nor
	// an admin for the attempted mutation
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidContentType indicates an unknown content type
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrInvalidContentStatus indicates an unknown content status
	ErrInvalidContentStatus = errors.New("invalid content status")

	// ErrEmptyBatch indicates an upload batch with no files
	ErrEmptyBatch = errors.New("upload batch is empty")

	// ErrMalformedCursor indicates a pagination cursor that was not
	// produced by this service.
	ErrMalformedCursor = errors.New("malformed cursor")
)

// TransferError reports a blob write failure during batch upload. The
// affected file produced no catalog record; sibling transfers are
// unaffected.
type TransferError struct {
	FileName string
	Err      error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed for %s: %v", e.FileName, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a catalog write that failed after the blob
// write succeeded. StorageKey locates the orphaned blob so an external
// reconciliation job can find it.
type PersistenceError struct {
	StorageKey string
	Op         string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("catalog write %s failed, blob %s is orphaned: %v", e.Op, e.StorageKey, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// EntryError represents an error related to single-entry operations
type EntryError struct {
	ID  uuid.UUID
	Op  string
	Err error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("catalog operation %s failed for entry %s: %v", e.Op, e.ID, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob store operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
