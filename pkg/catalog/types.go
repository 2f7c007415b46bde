package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ContentType is the domain type for authored content kinds.
type ContentType string

// Content type constants (typed).
const (
	ContentTypeAnnouncement ContentType = "announcement"
	ContentTypeNews         ContentType = "news"
	ContentTypeEvent        ContentType = "event"
	ContentTypeNotice       ContentType = "notice"
)

// IsValid reports whether t is one of the known content types.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeAnnouncement, ContentTypeNews, ContentTypeEvent, ContentTypeNotice:
		return true
	}
	return false
}

// ContentStatus is the domain type for the content lifecycle.
type ContentStatus string

// Content status constants (typed).
const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

// IsValid reports whether s is one of the known content statuses.
func (s ContentStatus) IsValid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusPublished, ContentStatusArchived:
		return true
	}
	return false
}

// TransferStatus is the lifecycle of one in-flight blob transfer.
type TransferStatus string

// Transfer status constants (typed).
const (
	TransferStatusUploading TransferStatus = "uploading"
	TransferStatusPaused    TransferStatus = "paused"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusCancelled TransferStatus = "cancelled"
	TransferStatusError     TransferStatus = "error"
)

// Terminal reports whether the transfer reached a final state.
func (s TransferStatus) Terminal() bool {
	switch s {
	case TransferStatusCompleted, TransferStatusCancelled, TransferStatusError:
		return true
	}
	return false
}

// ActivityAction identifies the kind of catalog mutation an activity
// entry records.
type ActivityAction string

// Activity action constants (typed).
const (
	ActionCreated          ActivityAction = "created"
	ActionUpdated          ActivityAction = "updated"
	ActionDeleted          ActivityAction = "deleted"
	ActionBulkStatusUpdate ActivityAction = "bulk_status_update"
)

// Role constants for the identity provider's role claim. The catalog
// trusts these as-is; RoleAdmin bypasses ownership checks.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Owner identifies the principal an entry is attributed to.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Principal is the identity the external auth provider supplies for
// the current caller.
type Principal struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
}

// IsAdmin reports whether the principal carries the admin role claim.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Owner converts the principal into entry owner attribution.
func (p Principal) Owner() Owner {
	return Owner{ID: p.UID, DisplayName: p.DisplayName, Email: p.Email}
}

// EntryCore carries the fields shared by assets and contents.
//
// Tags are a set: writes collapse duplicates and insertion order is
// not meaningful. ViewCount only moves through the increment
// operations, never through general updates.
type EntryCore struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Owner     Owner     `json:"owner"`
	Public    bool      `json:"public"`
	ViewCount int64     `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MediaProbe holds intrinsic properties derived from a payload before
// cataloging. Fields are nil when the attribute could not be derived;
// absence is not zero.
type MediaProbe struct {
	Width           *int     `json:"width,omitempty"`
	Height          *int     `json:"height,omitempty"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	Pages           *int     `json:"pages,omitempty"`
}

// Asset is an uploaded binary file tracked by the catalog. StorageKey
// is the opaque locator into the blob store; the referenced blob
// exists before the record does.
type Asset struct {
	EntryCore

	FileName      string      `json:"file_name"`
	Description   string      `json:"description,omitempty"`
	StorageKey    string      `json:"storage_key"`
	ByteSize      int64       `json:"byte_size"`
	MimeType      string      `json:"mime_type"`
	DownloadCount int64       `json:"download_count"`
	Probe         *MediaProbe `json:"probe,omitempty"`

	// RetrievalURL is computed from the blob store at read time and is
	// not persisted.
	RetrievalURL string `json:"retrieval_url,omitempty"`
}

// Content is an authored record (announcement, news, event, notice).
type Content struct {
	EntryCore

	Body               string        `json:"body,omitempty"`
	Type               ContentType   `json:"type"`
	Status             ContentStatus `json:"status"`
	Featured           bool          `json:"featured"`
	PublishedAt        *time.Time    `json:"published_at,omitempty"`
	ScheduledPublishAt *time.Time    `json:"scheduled_publish_at,omitempty"`
	Attachments        []uuid.UUID   `json:"attachments,omitempty"`
	Likes              int64         `json:"likes"`
	Comments           int64         `json:"comments"`

	// LikedBy backs ToggleLike; Likes is kept equal to its size.
	LikedBy []string `json:"-"`
}

// Clone returns a copy whose slice and pointer fields share no backing
// storage with the receiver.
func (a *Asset) Clone() *Asset {
	out := *a
	out.Tags = append([]string(nil), a.Tags...)
	if a.Probe != nil {
		out.Probe = &MediaProbe{
			Width:           clonePtr(a.Probe.Width),
			Height:          clonePtr(a.Probe.Height),
			DurationSeconds: clonePtr(a.Probe.DurationSeconds),
			Pages:           clonePtr(a.Probe.Pages),
		}
	}
	return &out
}

// Clone returns a copy whose slice and pointer fields share no backing
// storage with the receiver.
func (c *Content) Clone() *Content {
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	out.Attachments = append([]uuid.UUID(nil), c.Attachments...)
	out.LikedBy = append([]string(nil), c.LikedBy...)
	out.PublishedAt = clonePtr(c.PublishedAt)
	out.ScheduledPublishAt = clonePtr(c.ScheduledPublishAt)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ActivityEntry records one catalog mutation. Write-once, append-only;
// retention is an external concern.
type ActivityEntry struct {
	ID           uuid.UUID      `json:"id"`
	Action       ActivityAction `json:"action"`
	SubjectTitle string         `json:"subject_title"`
	ActorName    string         `json:"actor_name"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AssetQuery selects one page of assets. Nil filter fields are omitted
// from the predicate entirely, not evaluated as match-anything.
type AssetQuery struct {
	Category *string
	OwnerID  *string
	Public   *bool

	// Search is a case-insensitive substring match over title,
	// description, tags and category, applied before pagination.
	Search string

	Cursor   string
	PageSize int
}

// ContentQuery selects one page of contents. Same omission semantics
// as AssetQuery.
type ContentQuery struct {
	Category *string
	OwnerID  *string
	Public   *bool
	Type     *ContentType
	Status   *ContentStatus
	Featured *bool

	Search string

	Cursor   string
	PageSize int
}

// AssetPage is one page of the asset query result.
type AssetPage struct {
	Assets     []*Asset `json:"assets"`
	HasMore    bool     `json:"has_more"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// ContentPage is one page of the content query result.
type ContentPage struct {
	Contents   []*Content `json:"contents"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// TagCount is one entry of a top-tags breakdown.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// OwnerCount is one entry of a top-owners breakdown.
type OwnerCount struct {
	Owner Owner `json:"owner"`
	Count int64 `json:"count"`
}

// StatsSnapshot is a point-in-time summary over the whole catalog,
// computed by a full scan at call time.
type StatsSnapshot struct {
	TotalEntries     int64                   `json:"total_entries"`
	TotalAssets      int64                   `json:"total_assets"`
	TotalContents    int64                   `json:"total_contents"`
	CountsByStatus   map[ContentStatus]int64 `json:"counts_by_status"`
	CountsByType     map[ContentType]int64   `json:"counts_by_type"`
	CountsByCategory map[string]int64        `json:"counts_by_category"`
	FilesByCategory  map[string]int64        `json:"files_by_category"`
	SumViews         int64                   `json:"sum_views"`
	SumLikes         int64                   `json:"sum_likes"`
	SumDownloads     int64                   `json:"sum_downloads"`
	TopTags          []TagCount              `json:"top_tags"`
	TopOwners        []OwnerCount            `json:"top_owners"`
	RecentActivity   []*ActivityEntry        `json:"recent_activity"`
	ComputedAt       time.Time               `json:"computed_at"`
}

// TransferProgress is the observable state of one transfer within a
// batch.
type TransferProgress struct {
	FileName   string         `json:"file_name"`
	BytesSent  int64          `json:"bytes_sent"`
	TotalBytes int64          `json:"total_bytes"`
	Status     TransferStatus `json:"status"`
	Err        error          `json:"-"`
}

// BatchProgress is the full snapshot of every transfer in a batch.
// Each callback invocation replaces prior state; entries are keyed by
// position in the original file list.
type BatchProgress struct {
	Transfers []TransferProgress `json:"transfers"`
}

// Busy reports whether at least one transfer has not reached a
// terminal status.
func (p BatchProgress) Busy() bool {
	for _, t := range p.Transfers {
		if !t.Status.Terminal() {
			return true
		}
	}
	return false
}

// UploadResult is the per-file outcome of a batch upload.
type UploadResult struct {
	FileName string    `json:"file_name"`
	AssetID  uuid.UUID `json:"asset_id,omitempty"`
	Err      error     `json:"-"`
}

// BatchResult aggregates the per-file outcomes of one batch.
type BatchResult struct {
	Results []UploadResult `json:"results"`
}

// AssetIDs returns the ids of the assets created by the batch, in
// input order, skipping failed files.
func (r *BatchResult) AssetIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, res := range r.Results {
		if res.Err == nil {
			ids = append(ids, res.AssetID)
		}
	}
	return ids
}

// Succeeded returns the number of files that produced an asset.
func (r *BatchResult) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// BulkResult is the per-id outcome of a bulk status update.
type BulkResult struct {
	ID  uuid.UUID `json:"id"`
	Err error     `json:"-"`
}

// BulkStatusResult aggregates per-id outcomes; the operation is not
// transactional across ids.
type BulkStatusResult struct {
	Results   []BulkResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}
