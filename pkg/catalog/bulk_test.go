package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalkit/catalog/pkg/catalog"
)

func TestApplyStatus(t *testing.T) {
	ctx := context.Background()

	newContent := func(t *testing.T, svc catalog.Service, title string, actor catalog.Principal) uuid.UUID {
		t.Helper()
		content, err := svc.CreateContent(ctx, catalog.CreateContentRequest{
			Title: title,
			Type:  catalog.ContentTypeNotice,
			Actor: actor,
		})
		require.NoError(t, err)
		return content.ID
	}

	t.Run("InvalidStatus", func(t *testing.T) {
		svc := setupTestService(t)
		_, err := svc.ApplyStatus(ctx, catalog.BulkStatusRequest{
			IDs:    []uuid.UUID{uuid.New()},
			Status: catalog.ContentStatus("limbo"),
			Actor:  alice,
		})
		assert.ErrorIs(t, err, catalog.ErrInvalidContentStatus)
	})

	t.Run("AllSucceed", func(t *testing.T) {
		svc := setupTestService(t)
		ids := []uuid.UUID{
			newContent(t, svc, "a", alice),
			newContent(t, svc, "b", alice),
			newContent(t, svc, "c", alice),
		}

		result, err := svc.ApplyStatus(ctx, catalog.BulkStatusRequest{
			IDs:    ids,
			Status: catalog.ContentStatusPublished,
			Actor:  alice,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Succeeded)
		assert.Equal(t, 0, result.Failed)

		for _, id := range ids {
			content, err := svc.GetContent(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, catalog.ContentStatusPublished, content.Status)
			assert.NotNil(t, content.PublishedAt)
		}
	})

	t.Run("PartialFailure", func(t *testing.T) {
		svc := setupTestService(t)
		a := newContent(t, svc, "a", alice)
		missing := uuid.New()
		c := newContent(t, svc, "c", alice)

		result, err := svc.ApplyStatus(ctx, catalog.BulkStatusRequest{
			IDs:    []uuid.UUID{a, missing, c},
			Status: catalog.ContentStatusArchived,
			Actor:  alice,
		})
		require.NoError(t, err, "per-id failures do not fail the call")
		require.Len(t, result.Results, 3)
		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 1, result.Failed)

		// Results keep input order
		assert.Equal(t, a, result.Results[0].ID)
		assert.NoError(t, result.Results[0].Err)
		assert.Equal(t, missing, result.Results[1].ID)
		assert.ErrorIs(t, result.Results[1].Err, catalog.ErrContentNotFound)
		assert.NoError(t, result.Results[2].Err)

		// The failure on the middle id did not block the others
		got, err := svc.GetContent(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, catalog.ContentStatusArchived, got.Status)
	})

	t.Run("PermissionPerID", func(t *testing.T) {
		svc := setupTestService(t)
		mine := newContent(t, svc, "mine", alice)
		theirs := newContent(t, svc, "theirs", bob)

		result, err := svc.ApplyStatus(ctx, catalog.BulkStatusRequest{
			IDs:    []uuid.UUID{mine, theirs},
			Status: catalog.ContentStatusPublished,
			Actor:  alice,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		assert.ErrorIs(t, result.Results[1].Err, catalog.ErrPermissionDenied)

		// Admin can move both
		result, err = svc.ApplyStatus(ctx, catalog.BulkStatusRequest{
			IDs:    []uuid.UUID{mine, theirs},
			Status: catalog.ContentStatusArchived,
			Actor:  root,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Succeeded)
	})

	t.Run("OneActivityEntryPerBatch", func(t *testing.T) {
		svc := setupTestService(t)
		ids := []uuid.UUID{
			newContent(t, svc, "a", alice),
			newContent(t, svc, "b", alice),
		}

		before, err := svc.RecentActivity(ctx, 50)
		require.NoError(t, err)

		_, err = svc.ApplyStatus(ctx, catalog.BulkStatusRequest{
			IDs:    ids,
			Status: catalog.ContentStatusPublished,
			Actor:  alice,
		})
		require.NoError(t, err)

		after, err := svc.RecentActivity(ctx, 50)
		require.NoError(t, err)
		require.Len(t, after, len(before)+1)
		assert.Equal(t, catalog.ActionBulkStatusUpdate, after[0].Action)
	})
}
