package catalog

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the caller-facing operation surface of the catalog.
type Service interface {
	// Batch upload
	UploadBatch(ctx context.Context, req UploadBatchRequest) (*BatchResult, error)

	// Asset operations
	GetAsset(ctx context.Context, id uuid.UUID) (*Asset, error)
	UpdateAsset(ctx context.Context, req UpdateAssetRequest) (*Asset, error)
	DeleteAsset(ctx context.Context, id uuid.UUID, actor Principal) error
	DownloadAsset(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
	QueryAssets(ctx context.Context, q AssetQuery) (*AssetPage, error)

	// Content operations
	CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error)
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error)
	DeleteContent(ctx context.Context, id uuid.UUID, actor Principal) error
	QueryContents(ctx context.Context, q ContentQuery) (*ContentPage, error)

	// Counter operations
	IncrementAssetView(ctx context.Context, id uuid.UUID) error
	IncrementAssetDownload(ctx context.Context, id uuid.UUID) error
	IncrementContentView(ctx context.Context, id uuid.UUID) error
	ToggleLike(ctx context.Context, id uuid.UUID, actor Principal) (*Content, error)

	// Bulk operations
	ApplyStatus(ctx context.Context, req BulkStatusRequest) (*BulkStatusResult, error)

	// Aggregation
	Snapshot(ctx context.Context) (*StatsSnapshot, error)
	RecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error)
}
