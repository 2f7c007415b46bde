package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
)

const defaultMaxConcurrentTransfers = 4

// service implements the Service interface
type service struct {
	repository   Repository
	blobStores   map[string]BlobStore
	defaultStore string
	extractor    Extractor

	maxConcurrentTransfers int
	statsTopN              int
	statsActivityN         int
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore adds a blob storage backend. The first registered
// backend becomes the default unless WithDefaultBlobStore overrides it.
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[string]BlobStore)
		}
		if len(s.blobStores) == 0 && s.defaultStore == "" {
			s.defaultStore = name
		}
		s.blobStores[name] = store
	}
}

// WithDefaultBlobStore selects which registered backend new uploads go to
func WithDefaultBlobStore(name string) Option {
	return func(s *service) {
		s.defaultStore = name
	}
}

// WithExtractor sets the metadata extractor for the upload pipeline
func WithExtractor(ex Extractor) Option {
	return func(s *service) {
		s.extractor = ex
	}
}

// WithMaxConcurrentTransfers bounds per-batch upload fan-out
func WithMaxConcurrentTransfers(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.maxConcurrentTransfers = n
		}
	}
}

// WithStatsLimits sets the top-N breakdown size and the recent
// activity window of the statistics snapshot
func WithStatsLimits(topN, activityN int) Option {
	return func(s *service) {
		if topN > 0 {
			s.statsTopN = topN
		}
		if activityN > 0 {
			s.statsActivityN = activityN
		}
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores:             make(map[string]BlobStore),
		maxConcurrentTransfers: defaultMaxConcurrentTransfers,
		statsTopN:              5,
		statsActivityN:         10,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

// GetBackend returns the named blob store, or the default when name is
// empty.
func (s *service) getBackend(name string) (BlobStore, error) {
	if name == "" {
		name = s.defaultStore
	}
	backend, exists := s.blobStores[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStorageBackendNotFound, name)
	}
	return backend, nil
}

// canMutate enforces the ownership rule: the entry owner or an admin.
func canMutate(owner Owner, actor Principal) bool {
	return actor.IsAdmin() || (actor.UID != "" && actor.UID == owner.ID)
}

// normalizeTags collapses duplicates and drops empty strings,
// preserving first-seen order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func (s *service) appendActivity(ctx context.Context, action ActivityAction, subjectTitle, actorName string) {
	entry := &ActivityEntry{
		ID:           uuid.New(),
		Action:       action,
		SubjectTitle: subjectTitle,
		ActorName:    actorName,
		CreatedAt:    time.Now().UTC(),
	}
	// Activity append failure never fails the primary operation.
	_ = s.repository.AppendActivity(ctx, entry)
}

// Asset operations

func (s *service) GetAsset(ctx context.Context, id uuid.UUID) (*Asset, error) {
	asset, err := s.repository.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachRetrievalURL(ctx, asset)
	return asset, nil
}

func (s *service) attachRetrievalURL(ctx context.Context, asset *Asset) {
	backend, err := s.getBackend("")
	if err != nil {
		return
	}
	if url, err := backend.GetDownloadURL(ctx, asset.StorageKey, asset.FileName); err == nil {
		asset.RetrievalURL = url
	}
}

func (s *service) UpdateAsset(ctx context.Context, req UpdateAssetRequest) (*Asset, error) {
	asset, err := s.repository.GetAsset(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !canMutate(asset.Owner, req.Actor) {
		return nil, &EntryError{ID: req.ID, Op: "update", Err: ErrPermissionDenied}
	}

	if req.Title != nil {
		asset.Title = *req.Title
	}
	if req.Description != nil {
		asset.Description = *req.Description
	}
	if req.Category != nil {
		asset.Category = *req.Category
	}
	if req.Tags != nil {
		asset.Tags = normalizeTags(req.Tags)
	}
	if req.Public != nil {
		asset.Public = *req.Public
	}
	asset.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateAsset(ctx, asset); err != nil {
		return nil, &EntryError{ID: req.ID, Op: "update", Err: err}
	}

	s.appendActivity(ctx, ActionUpdated, asset.Title, req.Actor.DisplayName)
	return asset, nil
}

// DeleteAsset removes the blob before the catalog record so a record
// never survives pointing at a missing blob as a success outcome.
func (s *service) DeleteAsset(ctx context.Context, id uuid.UUID, actor Principal) error {
	asset, err := s.repository.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	if !canMutate(asset.Owner, actor) {
		return &EntryError{ID: id, Op: "delete", Err: ErrPermissionDenied}
	}

	backend, err := s.getBackend("")
	if err != nil {
		return &EntryError{ID: id, Op: "delete", Err: err}
	}
	if err := backend.Delete(ctx, asset.StorageKey); err != nil {
		return &StorageError{Backend: s.defaultStore, Key: asset.StorageKey, Op: "delete", Err: err}
	}

	if err := s.repository.DeleteAsset(ctx, id); err != nil {
		return &EntryError{ID: id, Op: "delete", Err: err}
	}

	s.appendActivity(ctx, ActionDeleted, asset.Title, actor.DisplayName)
	return nil
}

func (s *service) DownloadAsset(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	asset, err := s.repository.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	backend, err := s.getBackend("")
	if err != nil {
		return nil, &EntryError{ID: id, Op: "download", Err: err}
	}
	reader, err := backend.Download(ctx, asset.StorageKey)
	if err != nil {
		return nil, &StorageError{Backend: s.defaultStore, Key: asset.StorageKey, Op: "download", Err: err}
	}
	return reader, nil
}

// Content operations

func (s *service) CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContentType, req.Type)
	}

	now := time.Now().UTC()
	content := &Content{
		EntryCore: EntryCore{
			ID:        uuid.New(),
			Title:     req.Title,
			Category:  req.Category,
			Tags:      normalizeTags(req.Tags),
			Owner:     req.Actor.Owner(),
			Public:    req.Public,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Body:               req.Body,
		Type:               req.Type,
		Status:             ContentStatusDraft,
		Featured:           req.Featured,
		ScheduledPublishAt: req.ScheduledPublishAt,
		Attachments:        req.Attachments,
	}

	if err := s.repository.CreateContent(ctx, content); err != nil {
		return nil, &EntryError{ID: content.ID, Op: "create", Err: err}
	}

	s.appendActivity(ctx, ActionCreated, content.Title, req.Actor.DisplayName)
	return content, nil
}

func (s *service) GetContent(ctx context.Context, id uuid.UUID) (*Content, error) {
	return s.repository.GetContent(ctx, id)
}

func (s *service) UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error) {
	content, err := s.repository.GetContent(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !canMutate(content.Owner, req.Actor) {
		return nil, &EntryError{ID: req.ID, Op: "update", Err: ErrPermissionDenied}
	}

	if req.Title != nil {
		content.Title = *req.Title
	}
	if req.Body != nil {
		content.Body = *req.Body
	}
	if req.Category != nil {
		content.Category = *req.Category
	}
	if req.Tags != nil {
		content.Tags = normalizeTags(req.Tags)
	}
	if req.Public != nil {
		content.Public = *req.Public
	}
	if req.Featured != nil {
		content.Featured = *req.Featured
	}
	if req.ScheduledPublishAt != nil {
		content.ScheduledPublishAt = req.ScheduledPublishAt
	}
	if req.Attachments != nil {
		content.Attachments = req.Attachments
	}
	if req.Status != nil {
		if err := applyStatusTransition(content, *req.Status, time.Now().UTC()); err != nil {
			return nil, &EntryError{ID: req.ID, Op: "update", Err: err}
		}
	}
	content.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return nil, &EntryError{ID: req.ID, Op: "update", Err: err}
	}

	s.appendActivity(ctx, ActionUpdated, content.Title, req.Actor.DisplayName)
	return content, nil
}

func (s *service) DeleteContent(ctx context.Context, id uuid.UUID, actor Principal) error {
	content, err := s.repository.GetContent(ctx, id)
	if err != nil {
		return err
	}
	if !canMutate(content.Owner, actor) {
		return &EntryError{ID: id, Op: "delete", Err: ErrPermissionDenied}
	}

	if err := s.repository.DeleteContent(ctx, id); err != nil {
		return &EntryError{ID: id, Op: "delete", Err: err}
	}

	s.appendActivity(ctx, ActionDeleted, content.Title, actor.DisplayName)
	return nil
}

// Counter bumps delegate to the repository, which applies them
// atomically at the record.

func (s *service) IncrementAssetView(ctx context.Context, id uuid.UUID) error {
	return s.repository.IncrementAssetView(ctx, id)
}

func (s *service) IncrementAssetDownload(ctx context.Context, id uuid.UUID) error {
	return s.repository.IncrementAssetDownload(ctx, id)
}

func (s *service) IncrementContentView(ctx context.Context, id uuid.UUID) error {
	return s.repository.IncrementContentView(ctx, id)
}

// ToggleLike flips the actor's like membership on a content entry and
// keeps the likes counter equal to the membership size.
func (s *service) ToggleLike(ctx context.Context, id uuid.UUID, actor Principal) (*Content, error) {
	if actor.UID == "" {
		return nil, &EntryError{ID: id, Op: "toggle_like", Err: ErrPermissionDenied}
	}
	content, err := s.repository.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}

	found := -1
	for i, uid := range content.LikedBy {
		if uid == actor.UID {
			found = i
			break
		}
	}
	if found >= 0 {
		content.LikedBy = append(content.LikedBy[:found], content.LikedBy[found+1:]...)
	} else {
		content.LikedBy = append(content.LikedBy, actor.UID)
	}
	content.Likes = int64(len(content.LikedBy))
	content.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return nil, &EntryError{ID: id, Op: "toggle_like", Err: err}
	}
	return content, nil
}

func (s *service) RecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	if limit <= 0 {
		limit = s.statsActivityN
	}
	return s.repository.ListRecentActivity(ctx, limit)
}

// sortTagCounts orders a tag breakdown by count descending with the
// tag name as tiebreak, then truncates to n.
func sortTagCounts(counts map[string]int64, n int) []TagCount {
	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
