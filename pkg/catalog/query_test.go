package catalog_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalkit/catalog/pkg/catalog"
)

func seedAssets(t *testing.T, svc catalog.Service, n int, shared catalog.SharedMetadata) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		body := fmt.Sprintf("payload-%d", i)
		result, err := svc.UploadBatch(ctx, catalog.UploadBatchRequest{
			Files: []catalog.UploadFile{
				{FileName: fmt.Sprintf("file-%03d.txt", i), MimeType: "text/plain", Size: int64(len(body)), Reader: strings.NewReader(body)},
			},
			Shared: shared,
			Actor:  alice,
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Succeeded())
	}
}

func TestQueryAssets(t *testing.T) {
	ctx := context.Background()

	t.Run("PaginationIsComplete", func(t *testing.T) {
		svc := setupTestService(t)
		seedAssets(t, svc, 25, catalog.SharedMetadata{})

		seen := make(map[uuid.UUID]bool)
		cursor := ""
		pages := 0
		for {
			page, err := svc.QueryAssets(ctx, catalog.AssetQuery{PageSize: 10, Cursor: cursor})
			require.NoError(t, err)
			pages++

			for _, a := range page.Assets {
				assert.False(t, seen[a.ID], "no entry appears twice across pages")
				seen[a.ID] = true
			}

			if !page.HasMore {
				assert.Empty(t, page.NextCursor)
				break
			}
			require.NotEmpty(t, page.NextCursor)
			cursor = page.NextCursor
		}

		assert.Equal(t, 25, len(seen), "every entry appears exactly once")
		assert.Equal(t, 3, pages)
	})

	t.Run("NewestFirst", func(t *testing.T) {
		svc := setupTestService(t)
		seedAssets(t, svc, 5, catalog.SharedMetadata{})

		page, err := svc.QueryAssets(ctx, catalog.AssetQuery{PageSize: 5})
		require.NoError(t, err)
		require.Len(t, page.Assets, 5)
		for i := 1; i < len(page.Assets); i++ {
			prev, cur := page.Assets[i-1], page.Assets[i]
			notAfter := cur.CreatedAt.Before(prev.CreatedAt) ||
				cur.CreatedAt.Equal(prev.CreatedAt)
			assert.True(t, notAfter, "results ordered newest first")
		}
	})

	t.Run("DefaultPageSize", func(t *testing.T) {
		svc := setupTestService(t)
		seedAssets(t, svc, 25, catalog.SharedMetadata{})

		page, err := svc.QueryAssets(ctx, catalog.AssetQuery{})
		require.NoError(t, err)
		assert.Len(t, page.Assets, 20)
		assert.True(t, page.HasMore)
	})

	t.Run("MalformedCursor", func(t *testing.T) {
		svc := setupTestService(t)
		_, err := svc.QueryAssets(ctx, catalog.AssetQuery{Cursor: "not-a-cursor"})
		assert.ErrorIs(t, err, catalog.ErrMalformedCursor)
	})

	t.Run("FilterByCategory", func(t *testing.T) {
		svc := setupTestService(t)
		seedAssets(t, svc, 3, catalog.SharedMetadata{Category: "alpha"})
		seedAssets(t, svc, 2, catalog.SharedMetadata{Category: "beta"})

		alpha := "alpha"
		page, err := svc.QueryAssets(ctx, catalog.AssetQuery{Category: &alpha})
		require.NoError(t, err)
		assert.Len(t, page.Assets, 3)
		for _, a := range page.Assets {
			assert.Equal(t, "alpha", a.Category)
		}
	})

	t.Run("SearchAppliesBeforePagination", func(t *testing.T) {
		svc := setupTestService(t)
		seedAssets(t, svc, 12, catalog.SharedMetadata{Description: "matching needle here"})
		seedAssets(t, svc, 12, catalog.SharedMetadata{Description: "nothing"})

		seen := 0
		cursor := ""
		for {
			page, err := svc.QueryAssets(ctx, catalog.AssetQuery{Search: "NEEDLE", PageSize: 5, Cursor: cursor})
			require.NoError(t, err)
			seen += len(page.Assets)
			if !page.HasMore {
				break
			}
			cursor = page.NextCursor
		}
		assert.Equal(t, 12, seen, "later pages never under-report matches")
	})
}

func TestQueryContents(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t)

	types := []catalog.ContentType{
		catalog.ContentTypeAnnouncement,
		catalog.ContentTypeNews,
		catalog.ContentTypeEvent,
		catalog.ContentTypeNotice,
	}
	var published []uuid.UUID
	for i := 0; i < 8; i++ {
		content, err := svc.CreateContent(ctx, catalog.CreateContentRequest{
			Title:  fmt.Sprintf("entry-%d", i),
			Type:   types[i%len(types)],
			Public: i%2 == 0,
			Actor:  alice,
		})
		require.NoError(t, err)
		if i < 4 {
			published = append(published, content.ID)
		}
	}

	status := catalog.ContentStatusPublished
	for _, id := range published {
		_, err := svc.UpdateContent(ctx, catalog.UpdateContentRequest{ID: id, Status: &status, Actor: alice})
		require.NoError(t, err)
	}

	t.Run("FilterByStatus", func(t *testing.T) {
		page, err := svc.QueryContents(ctx, catalog.ContentQuery{Status: &status})
		require.NoError(t, err)
		assert.Len(t, page.Contents, 4)
	})

	t.Run("FilterByType", func(t *testing.T) {
		news := catalog.ContentTypeNews
		page, err := svc.QueryContents(ctx, catalog.ContentQuery{Type: &news})
		require.NoError(t, err)
		assert.Len(t, page.Contents, 2)
		for _, c := range page.Contents {
			assert.Equal(t, catalog.ContentTypeNews, c.Type)
		}
	})

	t.Run("InvalidTypeRejected", func(t *testing.T) {
		bad := catalog.ContentType("poem")
		_, err := svc.QueryContents(ctx, catalog.ContentQuery{Type: &bad})
		assert.ErrorIs(t, err, catalog.ErrInvalidContentType)
	})

	t.Run("InvalidStatusRejected", func(t *testing.T) {
		bad := catalog.ContentStatus("limbo")
		_, err := svc.QueryContents(ctx, catalog.ContentQuery{Status: &bad})
		assert.ErrorIs(t, err, catalog.ErrInvalidContentStatus)
	})

	t.Run("CombinedFilters", func(t *testing.T) {
		public := true
		page, err := svc.QueryContents(ctx, catalog.ContentQuery{Status: &status, Public: &public})
		require.NoError(t, err)
		for _, c := range page.Contents {
			assert.True(t, c.Public)
			assert.Equal(t, catalog.ContentStatusPublished, c.Status)
		}
	})
}
