package catalog

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Request/Response DTOs

// UploadFile is one payload in an upload batch.
type UploadFile struct {
	FileName string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// SharedMetadata carries the caller-supplied fields applied to every
// asset created by a batch.
type SharedMetadata struct {
	Category    string
	Tags        []string
	Description string
	Public      bool
}

// UploadBatchRequest contains parameters for a batch upload.
// OnProgress, when set, receives the full snapshot of all transfers'
// progress on every update from any transfer.
type UploadBatchRequest struct {
	Files      []UploadFile
	Shared     SharedMetadata
	Actor      Principal
	OnProgress func(BatchProgress)
}

// CreateContentRequest contains parameters for creating content
type CreateContentRequest struct {
	Title              string
	Body               string
	Type               ContentType
	Category           string
	Tags               []string
	Public             bool
	Featured           bool
	ScheduledPublishAt *time.Time
	Attachments        []uuid.UUID
	Actor              Principal
}

// UpdateContentRequest contains parameters for updating content. Nil
// fields leave the stored value unchanged.
type UpdateContentRequest struct {
	ID                 uuid.UUID
	Title              *string
	Body               *string
	Category           *string
	Tags               []string
	Public             *bool
	Featured           *bool
	Status             *ContentStatus
	ScheduledPublishAt *time.Time
	Attachments        []uuid.UUID
	Actor              Principal
}

// UpdateAssetRequest contains parameters for updating an asset's
// caller-editable fields. Nil fields leave the stored value unchanged.
type UpdateAssetRequest struct {
	ID          uuid.UUID
	Title       *string
	Description *string
	Category    *string
	Tags        []string
	Public      *bool
	Actor       Principal
}

// BulkStatusRequest applies one status change across a set of content
// ids, independently and concurrently per id.
type BulkStatusRequest struct {
	IDs    []uuid.UUID
	Status ContentStatus
	Actor  Principal
}
