package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ApplyStatus applies one status change across a set of content ids,
// independently and concurrently. The operation is not transactional:
// a failure on one id never prevents the others from succeeding, and
// the caller receives a per-id result. One summarizing activity entry
// is appended for the whole batch, not one per id.
func (s *service) ApplyStatus(ctx context.Context, req BulkStatusRequest) (*BulkStatusResult, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContentStatus, req.Status)
	}

	results := make([]BulkResult, len(req.IDs))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrentTransfers)
	for i, id := range req.IDs {
		i, id := i, id
		g.Go(func() error {
			results[i] = BulkResult{ID: id, Err: s.applyStatusOne(ctx, id, req.Status, req.Actor)}
			return nil
		})
	}
	_ = g.Wait()

	out := &BulkStatusResult{Results: results}
	for _, r := range results {
		if r.Err != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}

	if out.Succeeded > 0 {
		subject := fmt.Sprintf("%d entries -> %s", out.Succeeded, req.Status)
		s.appendActivity(ctx, ActionBulkStatusUpdate, subject, req.Actor.DisplayName)
	}

	return out, nil
}

func (s *service) applyStatusOne(ctx context.Context, id uuid.UUID, status ContentStatus, actor Principal) error {
	content, err := s.repository.GetContent(ctx, id)
	if err != nil {
		return err
	}
	if !canMutate(content.Owner, actor) {
		return &EntryError{ID: id, Op: "bulk_status", Err: ErrPermissionDenied}
	}

	now := time.Now().UTC()
	if err := applyStatusTransition(content, status, now); err != nil {
		return err
	}
	content.UpdatedAt = now

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return &EntryError{ID: id, Op: "bulk_status", Err: err}
	}
	return nil
}
