package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/portalkit/catalog/pkg/catalog/objectkey"
)

// batchTracker holds the progress of every transfer in one batch and
// publishes full snapshots on each update.
type batchTracker struct {
	mu         sync.Mutex
	transfers  []TransferProgress
	onProgress func(BatchProgress)
}

func newBatchTracker(files []UploadFile, onProgress func(BatchProgress)) *batchTracker {
	t := &batchTracker{
		transfers:  make([]TransferProgress, len(files)),
		onProgress: onProgress,
	}
	for i, f := range files {
		t.transfers[i] = TransferProgress{
			FileName:   f.FileName,
			TotalBytes: f.Size,
			Status:     TransferStatusUploading,
		}
	}
	return t
}

// update mutates one transfer's slot and publishes a snapshot of the
// whole batch. Callers receive a copy; each callback replaces prior
// state for the batch.
func (t *batchTracker) update(i int, fn func(*TransferProgress)) {
	t.mu.Lock()
	fn(&t.transfers[i])
	snapshot := make([]TransferProgress, len(t.transfers))
	copy(snapshot, t.transfers)
	t.mu.Unlock()

	if t.onProgress != nil {
		t.onProgress(BatchProgress{Transfers: snapshot})
	}
}

// progressReader counts bytes flowing to the blob store and reports
// them to the tracker.
type progressReader struct {
	r      io.Reader
	sent   int64
	report func(bytesSent int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent)
	}
	return n, err
}

// UploadBatch runs the upload pipeline: for each file, independently
// and concurrently, probe metadata, move the payload to blob storage,
// then write one asset record and append one activity entry.
//
// Per-file failures are reported per file and do not abort sibling
// transfers. Cancellation of ctx stops outstanding transfers without
// creating records; files that already completed keep theirs.
func (s *service) UploadBatch(ctx context.Context, req UploadBatchRequest) (*BatchResult, error) {
	if len(req.Files) == 0 {
		return nil, ErrEmptyBatch
	}

	backend, err := s.getBackend("")
	if err != nil {
		return nil, err
	}

	tracker := newBatchTracker(req.Files, req.OnProgress)
	results := make([]UploadResult, len(req.Files))

	// Plain group, not WithContext: a failed transfer must not cancel
	// its siblings. Only the caller's ctx cancels the batch.
	var g errgroup.Group
	g.SetLimit(s.maxConcurrentTransfers)

	for i := range req.Files {
		i := i
		file := req.Files[i]
		g.Go(func() error {
			results[i] = s.uploadOne(ctx, backend, file, req.Shared, req.Actor, tracker, i)
			return nil
		})
	}
	_ = g.Wait()

	return &BatchResult{Results: results}, nil
}

// uploadOne moves one payload through transfer, extraction and catalog
// write. The blob write happens-before the catalog write; a catalog
// failure after a successful blob write is surfaced as a
// PersistenceError so the orphaned blob can be reconciled externally.
func (s *service) uploadOne(ctx context.Context, backend BlobStore, file UploadFile, shared SharedMetadata, actor Principal, tracker *batchTracker, slot int) UploadResult {
	result := UploadResult{FileName: file.FileName}

	fail := func(status TransferStatus, err error) UploadResult {
		tracker.update(slot, func(p *TransferProgress) {
			p.Status = status
			p.Err = err
		})
		result.Err = err
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(TransferStatusCancelled, &TransferError{FileName: file.FileName, Err: err})
	}

	payload, err := io.ReadAll(file.Reader)
	if err != nil {
		return fail(TransferStatusError, &TransferError{FileName: file.FileName, Err: err})
	}
	size := int64(len(payload))
	tracker.update(slot, func(p *TransferProgress) {
		p.TotalBytes = size
	})

	// Extraction runs before the transfer and never blocks it:
	// failures leave probe fields absent.
	var probe *MediaProbe
	if s.extractor != nil {
		probe = s.extractor.Probe(payload, file.MimeType)
	}

	assetID := uuid.New()
	storageKey := objectkey.ForAsset(assetID, file.FileName)

	reader := &progressReader{
		r: bytes.NewReader(payload),
		report: func(sent int64) {
			tracker.update(slot, func(p *TransferProgress) {
				p.BytesSent = sent
			})
		},
	}

	if err := backend.UploadWithParams(ctx, reader, UploadParams{ObjectKey: storageKey, MimeType: file.MimeType}); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return fail(TransferStatusCancelled, &TransferError{FileName: file.FileName, Err: err})
		}
		return fail(TransferStatusError, &TransferError{FileName: file.FileName, Err: err})
	}

	now := time.Now().UTC()
	asset := &Asset{
		EntryCore: EntryCore{
			ID:        assetID,
			Title:     file.FileName,
			Category:  shared.Category,
			Tags:      normalizeTags(shared.Tags),
			Owner:     actor.Owner(),
			Public:    shared.Public,
			CreatedAt: now,
			UpdatedAt: now,
		},
		FileName:    file.FileName,
		Description: shared.Description,
		StorageKey:  storageKey,
		ByteSize:    size,
		MimeType:    file.MimeType,
		Probe:       probe,
	}

	if err := s.repository.CreateAsset(ctx, asset); err != nil {
		// Blob write already succeeded: orphan-blob condition.
		return fail(TransferStatusError, &PersistenceError{StorageKey: storageKey, Op: "create_asset", Err: err})
	}

	tracker.update(slot, func(p *TransferProgress) {
		p.BytesSent = size
		p.Status = TransferStatusCompleted
	})

	s.appendActivity(ctx, ActionCreated, file.FileName, actor.DisplayName)

	result.AssetID = assetID
	return result
}
