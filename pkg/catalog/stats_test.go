package catalog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalkit/catalog/pkg/catalog"
	"github.com/portalkit/catalog/pkg/catalog/repo/memory"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t)

	t.Run("EmptyCatalog", func(t *testing.T) {
		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), snap.TotalEntries)
		assert.Empty(t, snap.TopTags)
		assert.Empty(t, snap.RecentActivity)
		assert.False(t, snap.ComputedAt.IsZero())
	})

	uploadOne(t, svc, "a.txt", "text/plain", "aaa", catalog.SharedMetadata{Category: "docs", Tags: []string{"go", "infra"}}, alice)
	uploadOne(t, svc, "b.txt", "text/plain", "bbb", catalog.SharedMetadata{Category: "docs", Tags: []string{"go"}}, bob)

	first, err := svc.CreateContent(ctx, catalog.CreateContentRequest{
		Title:    "news one",
		Type:     catalog.ContentTypeNews,
		Category: "docs",
		Tags:     []string{"go"},
		Actor:    alice,
	})
	require.NoError(t, err)
	_, err = svc.CreateContent(ctx, catalog.CreateContentRequest{
		Title: "notice one",
		Type:  catalog.ContentTypeNotice,
		Tags:  []string{"ops"},
		Actor: alice,
	})
	require.NoError(t, err)

	status := catalog.ContentStatusPublished
	_, err = svc.UpdateContent(ctx, catalog.UpdateContentRequest{ID: first.ID, Status: &status, Actor: alice})
	require.NoError(t, err)

	require.NoError(t, svc.IncrementContentView(ctx, first.ID))
	_, err = svc.ToggleLike(ctx, first.ID, bob)
	require.NoError(t, err)

	t.Run("Totals", func(t *testing.T) {
		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(2), snap.TotalAssets)
		assert.Equal(t, int64(2), snap.TotalContents)
		assert.Equal(t, int64(4), snap.TotalEntries)
	})

	t.Run("Breakdowns", func(t *testing.T) {
		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(1), snap.CountsByStatus[catalog.ContentStatusPublished])
		assert.Equal(t, int64(1), snap.CountsByStatus[catalog.ContentStatusDraft])
		assert.Equal(t, int64(1), snap.CountsByType[catalog.ContentTypeNews])
		assert.Equal(t, int64(1), snap.CountsByType[catalog.ContentTypeNotice])

		// Assets and contents both feed the category breakdown; only
		// assets feed the file breakdown.
		assert.Equal(t, int64(3), snap.CountsByCategory["docs"])
		assert.Equal(t, int64(2), snap.FilesByCategory["docs"])
	})

	t.Run("Sums", func(t *testing.T) {
		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(1), snap.SumViews)
		assert.Equal(t, int64(1), snap.SumLikes)
		assert.Equal(t, int64(0), snap.SumDownloads)
	})

	t.Run("TopTags", func(t *testing.T) {
		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)

		require.NotEmpty(t, snap.TopTags)
		assert.Equal(t, catalog.TagCount{Tag: "go", Count: 3}, snap.TopTags[0])
	})

	t.Run("TopOwners", func(t *testing.T) {
		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)

		require.NotEmpty(t, snap.TopOwners)
		assert.Equal(t, "alice", snap.TopOwners[0].Owner.ID)
		assert.Equal(t, int64(3), snap.TopOwners[0].Count)
	})

	t.Run("RecentActivityBounded", func(t *testing.T) {
		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)

		assert.NotEmpty(t, snap.RecentActivity)
		assert.LessOrEqual(t, len(snap.RecentActivity), 10)
	})
}

func TestSnapshotLimits(t *testing.T) {
	ctx := context.Background()

	repo := memory.New()
	for i := 0; i < 5; i++ {
		content := &catalog.Content{
			EntryCore: catalog.EntryCore{
				ID:        uuid.New(),
				Title:     fmt.Sprintf("entry-%d", i),
				Tags:      []string{fmt.Sprintf("tag-%d", i)},
				Owner:     catalog.Owner{ID: fmt.Sprintf("owner-%d", i)},
				CreatedAt: time.Now().UTC(),
				UpdatedAt: time.Now().UTC(),
			},
			Type:   catalog.ContentTypeNotice,
			Status: catalog.ContentStatusDraft,
		}
		require.NoError(t, repo.CreateContent(ctx, content))
		require.NoError(t, repo.AppendActivity(ctx, &catalog.ActivityEntry{
			ID:           uuid.New(),
			Action:       catalog.ActionCreated,
			SubjectTitle: content.Title,
			ActorName:    "seeder",
			CreatedAt:    time.Now().UTC(),
		}))
	}

	svc, err := catalog.New(
		catalog.WithRepository(repo),
		catalog.WithStatsLimits(2, 3),
	)
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.TopTags, 2)
	assert.Len(t, snap.TopOwners, 2)
	assert.Len(t, snap.RecentActivity, 3)
}
