package images

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/opengallery/gallery/internal/storage"
	"github.com/opengallery/gallery/utils"
)

// Service serves listings, presigned upload URLs, and record mutations
type Service struct {
	repo     Repository
	store    storage.ObjectStorage
	readTTL  time.Duration
	writeTTL time.Duration
	baseURL  string
}

func NewService(repo Repository, store storage.ObjectStorage, readTTL, writeTTL time.Duration, baseURL string) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		readTTL:  readTTL,
		writeTTL: writeTTL,
		baseURL:  baseURL,
	}
}

// ListParams are the caller-facing listing parameters before normalization
type ListParams struct {
	Page   int
	Limit  int
	SortBy SortField
	Order  SortOrder
	Search string
}

// List returns one page of the sorted, filtered record set. Every returned
// item carries a freshly presigned read URL; URLs are never cached, so two
// concurrent listings may hand out different URLs for the same object.
func (s *Service) List(ctx context.Context, p ListParams) (*ListResult, error) {
	switch p.SortBy {
	case SortByName, SortByDate:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidSortField, p.SortBy)
	}
	// Anything that is not descending sorts ascending.
	if p.Order != OrderDesc {
		p.Order = OrderAsc
	}

	total, err := s.repo.Count(ctx, p.Search)
	if err != nil {
		return nil, err
	}

	skip, _ := utils.PageWindow(p.Page, p.Limit, total)
	recs, err := s.repo.List(ctx, ListQuery{
		Skip:   skip,
		Limit:  p.Limit,
		SortBy: p.SortBy,
		Order:  p.Order,
		Search: p.Search,
	})
	if err != nil {
		return nil, err
	}

	data := make([]RecordWithSignedURL, 0, len(recs))
	for _, rec := range recs {
		signed, err := s.store.PresignGet(ctx, rec.Name, s.readTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to sign url for %q: %w", rec.Name, err)
		}
		data = append(data, RecordWithSignedURL{ImageFile: rec, SignedURL: signed})
	}

	res := &ListResult{
		Data:         data,
		CurrentPage:  p.Page,
		TotalPages:   utils.TotalPages(total, p.Limit),
		Limit:        p.Limit,
		TotalRecords: total,
	}
	// The filtered total is the single source of truth for "has next page".
	if p.Page*p.Limit < total {
		link := s.nextPageLink(p)
		res.NextPageLink = &link
	}
	return res, nil
}

func (s *Service) nextPageLink(p ListParams) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page+1))
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("sortBy", string(p.SortBy))
	q.Set("order", string(p.Order))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return s.baseURL + "/ImageFiles?" + q.Encode()
}

// IssueUploadURLs returns a presigned PUT URL per file name so clients can
// upload bytes directly to storage.
func (s *Service) IssueUploadURLs(ctx context.Context, fileNames []string) ([]PresignedUpload, error) {
	if len(fileNames) == 0 {
		return nil, ErrNoFileNames
	}

	out := make([]PresignedUpload, 0, len(fileNames))
	for _, name := range fileNames {
		signed, err := s.store.PresignPut(ctx, name, s.writeTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to presign upload for %q: %w", name, err)
		}
		out = append(out, PresignedUpload{FileName: name, URL: signed})
	}
	return out, nil
}

// UpdateDescription sets a record's description. Returns ErrNotFound if the
// id is unknown; never creates a record.
func (s *Service) UpdateDescription(ctx context.Context, id, description string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateDescription(ctx, id, description)
}

// Delete removes the storage object and then the record. An unknown id fails
// with ErrNotFound before any storage call. There is no compensating
// transaction: if the record delete fails after the object delete, the
// orphaned record is logged for the reconciliation sweep and the error is
// returned. The object delete itself is idempotent, so the sweep can re-drive
// a half-failed delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, rec.Name); err != nil {
		return fmt.Errorf("failed to delete object %q: %w", rec.Name, err)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		slog.ErrorContext(ctx, "record delete failed after object delete, record is orphaned",
			"id", id,
			"key", rec.Name,
			"error", err,
		)
		return err
	}
	return nil
}
