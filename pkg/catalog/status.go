package catalog

import (
	"fmt"
	"time"
)

// applyStatusTransition sets a new status on a content entry.
//
// The lifecycle is draft -> published -> archived, but both
// draft->archived and archived->draft are permitted when the caller
// asks for them explicitly. The only enforced rule is that PublishedAt
// is written exactly once, on the first transition to published;
// repeated no-op transitions to published never overwrite it.
func applyStatusTransition(content *Content, status ContentStatus, now time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidContentStatus, status)
	}

	if status == ContentStatusPublished && content.PublishedAt == nil {
		published := now
		content.PublishedAt = &published
	}
	content.Status = status
	return nil
}
