package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/opengallery/gallery/internal/imagemeta"
	"github.com/opengallery/gallery/internal/storage"
)

const bytesInMB = 1 << 20

const (
	defaultUploadedBy  = "unknown"
	defaultDescription = "Uploaded without a description."
)

// UploadService runs the post-upload completion pipeline: for each item the
// object is fetched back from storage, its metadata extracted, and a record
// constructed; survivors are persisted with a single bulk insert.
type UploadService struct {
	repo    Repository
	store   storage.ObjectStorage
	workers int
}

func NewUploadService(repo Repository, store storage.ObjectStorage, workers int) *UploadService {
	if workers < 1 {
		workers = 1
	}
	return &UploadService{repo: repo, store: store, workers: workers}
}

// Complete processes the batch with bounded concurrency. A failing item is
// logged and dropped without affecting its siblings and is never retried;
// the result reports the dropped items explicitly. The returned error covers
// only the bulk insert itself.
func (s *UploadService) Complete(ctx context.Context, items []FileUploadedItem) (*CompletionResult, error) {
	slog.InfoContext(ctx, "post upload process begin", "items", len(items))

	type itemResult struct {
		rec     *ImageRecord
		failure *UploadFailure
	}
	results := make([]itemResult, len(items))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item FileUploadedItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rec, err := s.processItem(ctx, item)
			if err != nil {
				slog.ErrorContext(ctx, "upload item dropped", "fileName", item.FileName, "error", err)
				results[i] = itemResult{failure: &UploadFailure{FileName: item.FileName, Reason: err.Error()}}
				return
			}
			results[i] = itemResult{rec: rec}
		}(i, item)
	}
	wg.Wait()

	records := make([]ImageRecord, 0, len(items))
	var failures []UploadFailure
	for _, r := range results {
		if r.rec != nil {
			records = append(records, *r.rec)
		} else if r.failure != nil {
			failures = append(failures, *r.failure)
		}
	}

	if err := s.repo.BulkInsert(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to persist upload records: %w", err)
	}

	slog.InfoContext(ctx, "post upload process ended", "persisted", len(records), "dropped", len(failures))
	return &CompletionResult{
		SuccessCount: len(records),
		Records:      records,
		Failures:     failures,
	}, nil
}

func (s *UploadService) processItem(ctx context.Context, item FileUploadedItem) (*ImageRecord, error) {
	body, err := s.store.Get(ctx, item.FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFetch, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFetch, err)
	}

	info, err := imagemeta.Identify(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataExtract, err)
	}

	uploadedBy := item.UploadedBy
	if uploadedBy == "" {
		uploadedBy = defaultUploadedBy
	}
	description := item.Description
	if description == "" {
		description = defaultDescription
	}

	now := time.Now().UTC()
	return &ImageRecord{
		Name:        item.FileName,
		URL:         item.S3Location,
		SizeMB:      float64(len(data)) / bytesInMB,
		CreatedAt:   now,
		UpdatedAt:   now,
		UploadedBy:  uploadedBy,
		Description: description,
		Metadata: Metadata{
			Height:    info.Height,
			Width:     info.Width,
			PixelType: info.PixelType,
		},
	}, nil
}
