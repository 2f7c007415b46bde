package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Snapshot computes a point-in-time summary of the whole catalog by
// scanning both collections at call time. Cost is O(total entries) per
// call; there are no incremental materialized counters. Recent
// activity comes from a separate bounded, sorted query rather than an
// in-memory sort of the scan.
func (s *service) Snapshot(ctx context.Context) (*StatsSnapshot, error) {
	assets, err := s.repository.AllAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan assets: %w", err)
	}
	contents, err := s.repository.AllContents(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan contents: %w", err)
	}

	snap := &StatsSnapshot{
		TotalAssets:      int64(len(assets)),
		TotalContents:    int64(len(contents)),
		TotalEntries:     int64(len(assets) + len(contents)),
		CountsByStatus:   make(map[ContentStatus]int64),
		CountsByType:     make(map[ContentType]int64),
		CountsByCategory: make(map[string]int64),
		FilesByCategory:  make(map[string]int64),
		ComputedAt:       time.Now().UTC(),
	}

	tagCounts := make(map[string]int64)
	ownerCounts := make(map[string]int64)
	owners := make(map[string]Owner)

	for _, a := range assets {
		if a.Category != "" {
			snap.CountsByCategory[a.Category]++
			snap.FilesByCategory[a.Category]++
		}
		snap.SumViews += a.ViewCount
		snap.SumDownloads += a.DownloadCount
		for _, tag := range a.Tags {
			tagCounts[tag]++
		}
		ownerCounts[a.Owner.ID]++
		owners[a.Owner.ID] = a.Owner
	}

	for _, c := range contents {
		snap.CountsByStatus[c.Status]++
		snap.CountsByType[c.Type]++
		if c.Category != "" {
			snap.CountsByCategory[c.Category]++
		}
		snap.SumViews += c.ViewCount
		snap.SumLikes += c.Likes
		for _, tag := range c.Tags {
			tagCounts[tag]++
		}
		ownerCounts[c.Owner.ID]++
		owners[c.Owner.ID] = c.Owner
	}

	snap.TopTags = sortTagCounts(tagCounts, s.statsTopN)
	snap.TopOwners = topOwners(ownerCounts, owners, s.statsTopN)

	activity, err := s.repository.ListRecentActivity(ctx, s.statsActivityN)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	snap.RecentActivity = activity

	return snap, nil
}

func topOwners(counts map[string]int64, owners map[string]Owner, n int) []OwnerCount {
	out := make([]OwnerCount, 0, len(counts))
	for id, count := range counts {
		out = append(out, OwnerCount{Owner: owners[id], Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Owner.ID < out[j].Owner.ID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
