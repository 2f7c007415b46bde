package catalog

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for blob storage backends
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// GetDownloadURL returns a URL for retrieving content
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for a stored object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// ObjectMeta contains metadata about an object in blob storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// AssetListFilters narrows a repository asset listing. Nil fields are
// omitted from the predicate. After restricts the listing to entries
// strictly after the given sort position (created_at desc, id desc).
type AssetListFilters struct {
	Category *string
	OwnerID  *string
	Public   *bool
	Search   string
	After    *CursorKey
	Limit    *int
}

// ContentListFilters narrows a repository content listing.
type ContentListFilters struct {
	Category *string
	OwnerID  *string
	Public   *bool
	Type     *ContentType
	Status   *ContentStatus
	Featured *bool
	Search   string
	After    *CursorKey
	Limit    *int
}

// CursorKey is the sort position of one entry: created_at descending
// with the entry id as the stable tiebreak.
type CursorKey struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Repository defines the document store operations the catalog
// requires. Implementations provide per-record atomic writes; no
// cross-record transactions are assumed.
type Repository interface {
	// Asset operations
	CreateAsset(ctx context.Context, asset *Asset) error
	GetAsset(ctx context.Context, id uuid.UUID) (*Asset, error)
	UpdateAsset(ctx context.Context, asset *Asset) error
	DeleteAsset(ctx context.Context, id uuid.UUID) error
	ListAssets(ctx context.Context, filters AssetListFilters) ([]*Asset, error)

	// Content operations
	CreateContent(ctx context.Context, content *Content) error
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	UpdateContent(ctx context.Context, content *Content) error
	DeleteContent(ctx context.Context, id uuid.UUID) error
	ListContents(ctx context.Context, filters ContentListFilters) ([]*Content, error)

	// Counter bumps. Implementations apply the increment atomically at
	// the record so concurrent bumps never lose an update.
	IncrementAssetView(ctx context.Context, id uuid.UUID) error
	IncrementAssetDownload(ctx context.Context, id uuid.UUID) error
	IncrementContentView(ctx context.Context, id uuid.UUID) error

	// Full scans for aggregation; cost is O(total entries).
	AllAssets(ctx context.Context) ([]*Asset, error)
	AllContents(ctx context.Context) ([]*Content, error)

	// Activity log operations. AppendActivity is write-once; entries
	// are never mutated or deleted here.
	AppendActivity(ctx context.Context, entry *ActivityEntry) error
	ListRecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error)
}

// Extractor derives intrinsic media properties from a payload. It is
// pure and best-effort: attributes that cannot be derived are absent,
// never an error.
type Extractor interface {
	Probe(payload []byte, mimeType string) *MediaProbe
}
