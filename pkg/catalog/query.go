package catalog

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultPageSize = 20

// encodeCursor builds the opaque locator for "resume after this
// entry". The payload is the sort key of the last returned entry.
func encodeCursor(key CursorKey) string {
	raw := fmt.Sprintf("%s|%s", key.CreatedAt.UTC().Format(time.RFC3339Nano), key.ID)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses a locator produced by encodeCursor.
func decodeCursor(cursor string) (*CursorKey, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return nil, ErrMalformedCursor
	}
	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp: %v", ErrMalformedCursor, err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad id: %v", ErrMalformedCursor, err)
	}
	return &CursorKey{CreatedAt: createdAt, ID: id}, nil
}

// QueryAssets returns one page of assets matching q. The store is
// asked for pageSize+1 entries after the cursor; the extra row only
// signals hasMore and is never returned.
func (s *service) QueryAssets(ctx context.Context, q AssetQuery) (*AssetPage, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	after, err := decodeCursor(q.Cursor)
	if err != nil {
		return nil, err
	}

	limit := pageSize + 1
	assets, err := s.repository.ListAssets(ctx, AssetListFilters{
		Category: q.Category,
		OwnerID:  q.OwnerID,
		Public:   q.Public,
		Search:   q.Search,
		After:    after,
		Limit:    &limit,
	})
	if err != nil {
		return nil, err
	}

	page := &AssetPage{HasMore: len(assets) > pageSize}
	if page.HasMore {
		assets = assets[:pageSize]
	}
	page.Assets = assets
	for _, a := range page.Assets {
		s.attachRetrievalURL(ctx, a)
	}
	if page.HasMore && len(assets) > 0 {
		last := assets[len(assets)-1]
		page.NextCursor = encodeCursor(CursorKey{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// QueryContents returns one page of contents matching q, with the same
// cursor contract as QueryAssets.
func (s *service) QueryContents(ctx context.Context, q ContentQuery) (*ContentPage, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if q.Type != nil && !q.Type.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContentType, *q.Type)
	}
	if q.Status != nil && !q.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContentStatus, *q.Status)
	}
	after, err := decodeCursor(q.Cursor)
	if err != nil {
		return nil, err
	}

	limit := pageSize + 1
	contents, err := s.repository.ListContents(ctx, ContentListFilters{
		Category: q.Category,
		OwnerID:  q.OwnerID,
		Public:   q.Public,
		Type:     q.Type,
		Status:   q.Status,
		Featured: q.Featured,
		Search:   q.Search,
		After:    after,
		Limit:    &limit,
	})
	if err != nil {
		return nil, err
	}

	page := &ContentPage{HasMore: len(contents) > pageSize}
	if page.HasMore {
		contents = contents[:pageSize]
	}
	page.Contents = contents
	if page.HasMore && len(contents) > 0 {
		last := contents[len(contents)-1]
		page.NextCursor = encodeCursor(CursorKey{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// matchesSearch is the shared free-text predicate: case-insensitive
// substring over the given fields and tags. Repositories apply it
// before the cursor slice so pagination never under-reports matches.
func matchesSearch(search string, tags []string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// MatchesAssetSearch reports whether an asset matches the free-text
// filter. Exported for repository implementations.
func MatchesAssetSearch(a *Asset, search string) bool {
	return matchesSearch(search, a.Tags, a.Title, a.Description, a.Category, a.FileName)
}

// MatchesContentSearch reports whether a content entry matches the
// free-text filter. Exported for repository implementations.
func MatchesContentSearch(c *Content, search string) bool {
	return matchesSearch(search, c.Tags, c.Title, c.Body, c.Category)
}

// AfterKey reports whether the entry at key sorts strictly after the
// cursor position in (created_at desc, id desc) order.
func AfterKey(key, cursor CursorKey) bool {
	if !key.CreatedAt.Equal(cursor.CreatedAt) {
		return key.CreatedAt.Before(cursor.CreatedAt)
	}
	return key.ID.String() < cursor.ID.String()
}
