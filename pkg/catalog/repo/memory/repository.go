package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/portalkit/catalog/pkg/catalog"
)

// Repository implements catalog.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	assets   map[uuid.UUID]*catalog.Asset
	contents map[uuid.UUID]*catalog.Content
	activity []*catalog.ActivityEntry
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		assets:   make(map[uuid.UUID]*catalog.Asset),
		contents: make(map[uuid.UUID]*catalog.Content),
	}
}

var _ catalog.Repository = (*Repository)(nil)

// Asset operations

func (r *Repository) CreateAsset(ctx context.Context, asset *catalog.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a deep copy so later caller writes cannot reach the store
	r.assets[asset.ID] = asset.Clone()

	return nil
}

func (r *Repository) GetAsset(ctx context.Context, id uuid.UUID) (*catalog.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, exists := r.assets[id]
	if !exists {
		return nil, catalog.ErrAssetNotFound
	}
	return asset.Clone(), nil
}

func (r *Repository) UpdateAsset(ctx context.Context, asset *catalog.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[asset.ID]; !exists {
		return catalog.ErrAssetNotFound
	}

	r.assets[asset.ID] = asset.Clone()

	return nil
}

func (r *Repository) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[id]; !exists {
		return catalog.ErrAssetNotFound
	}
	delete(r.assets, id)
	return nil
}

func (r *Repository) ListAssets(ctx context.Context, filters catalog.AssetListFilters) ([]*catalog.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*catalog.Asset
	for _, asset := range r.assets {
		if filters.Category != nil && asset.Category != *filters.Category {
			continue
		}
		if filters.OwnerID != nil && asset.Owner.ID != *filters.OwnerID {
			continue
		}
		if filters.Public != nil && asset.Public != *filters.Public {
			continue
		}
		if !catalog.MatchesAssetSearch(asset, filters.Search) {
			continue
		}
		result = append(result, asset.Clone())
	}

	// Sort by created_at descending, id descending as stable tiebreak
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() > result[j].ID.String()
	})

	if filters.After != nil {
		cut := len(result)
		for i, a := range result {
			if catalog.AfterKey(catalog.CursorKey{CreatedAt: a.CreatedAt, ID: a.ID}, *filters.After) {
				cut = i
				break
			}
		}
		result = result[cut:]
	}

	if filters.Limit != nil && *filters.Limit > 0 && *filters.Limit < len(result) {
		result = result[:*filters.Limit]
	}

	return result, nil
}

func (r *Repository) AllAssets(ctx context.Context) ([]*catalog.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*catalog.Asset, 0, len(r.assets))
	for _, asset := range r.assets {
		result = append(result, asset.Clone())
	}
	return result, nil
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *catalog.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contents[content.ID] = content.Clone()

	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, catalog.ErrContentNotFound
	}
	return content.Clone(), nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *catalog.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[content.ID]; !exists {
		return catalog.ErrContentNotFound
	}

	r.contents[content.ID] = content.Clone()

	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[id]; !exists {
		return catalog.ErrContentNotFound
	}
	delete(r.contents, id)
	return nil
}

func (r *Repository) ListContents(ctx context.Context, filters catalog.ContentListFilters) ([]*catalog.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*catalog.Content
	for _, content := range r.contents {
		if filters.Category != nil && content.Category != *filters.Category {
			continue
		}
		if filters.OwnerID != nil && content.Owner.ID != *filters.OwnerID {
			continue
		}
		if filters.Public != nil && content.Public != *filters.Public {
			continue
		}
		if filters.Type != nil && content.Type != *filters.Type {
			continue
		}
		if filters.Status != nil && content.Status != *filters.Status {
			continue
		}
		if filters.Featured != nil && content.Featured != *filters.Featured {
			continue
		}
		if !catalog.MatchesContentSearch(content, filters.Search) {
			continue
		}
		result = append(result, content.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() > result[j].ID.String()
	})

	if filters.After != nil {
		cut := len(result)
		for i, c := range result {
			if catalog.AfterKey(catalog.CursorKey{CreatedAt: c.CreatedAt, ID: c.ID}, *filters.After) {
				cut = i
				break
			}
		}
		result = result[cut:]
	}

	if filters.Limit != nil && *filters.Limit > 0 && *filters.Limit < len(result) {
		result = result[:*filters.Limit]
	}

	return result, nil
}

func (r *Repository) AllContents(ctx context.Context) ([]*catalog.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*catalog.Content, 0, len(r.contents))
	for _, content := range r.contents {
		result = append(result, content.Clone())
	}
	return result, nil
}

// Counter operations. The bump happens under the write lock so
// concurrent increments never lose an update.

func (r *Repository) IncrementAssetView(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, exists := r.assets[id]
	if !exists {
		return catalog.ErrAssetNotFound
	}
	asset.ViewCount++
	asset.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) IncrementAssetDownload(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, exists := r.assets[id]
	if !exists {
		return catalog.ErrAssetNotFound
	}
	asset.DownloadCount++
	asset.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) IncrementContentView(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, exists := r.contents[id]
	if !exists {
		return catalog.ErrContentNotFound
	}
	content.ViewCount++
	content.UpdatedAt = time.Now().UTC()
	return nil
}

// Activity log operations

func (r *Repository) AppendActivity(ctx context.Context, entry *catalog.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entryCopy := *entry
	r.activity = append(r.activity, &entryCopy)
	return nil
}

func (r *Repository) ListRecentActivity(ctx context.Context, limit int) ([]*catalog.ActivityEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*catalog.ActivityEntry, 0, len(r.activity))
	for _, entry := range r.activity {
		entryCopy := *entry
		result = append(result, &entryCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}
