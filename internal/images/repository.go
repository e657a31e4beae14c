package images

import (
	"context"
)

// SortField selects the listing sort key
type SortField string

const (
	SortByName SortField = "Name"
	SortByDate SortField = "Date"
)

// SortOrder selects the listing sort direction
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListQuery describes one page of a sorted, optionally filtered listing.
// Search, when non-empty, is a case-insensitive substring match on name or
// description applied before pagination.
type ListQuery struct {
	Skip   int
	Limit  int
	SortBy SortField
	Order  SortOrder
	Search string
}

// Repository is the record-store adapter over the image collection
type Repository interface {
	// List returns one sorted page of records
	List(ctx context.Context, q ListQuery) ([]ImageRecord, error)

	// Count returns the number of records matching the search filter
	Count(ctx context.Context, search string) (int, error)

	// GetByID returns the record with the given id or ErrNotFound
	GetByID(ctx context.Context, id string) (*ImageRecord, error)

	// Insert persists a single record, assigning its ID
	Insert(ctx context.Context, rec *ImageRecord) error

	// BulkInsert persists all records in one call, assigning IDs.
	// An empty slice is a no-op.
	BulkInsert(ctx context.Context, recs []ImageRecord) error

	// UpdateDescription sets the description and refreshes the update
	// timestamp. Returns ErrNotFound if no record matches; re-applying the
	// same description is a no-op success.
	UpdateDescription(ctx context.Context, id, description string) error

	// DeleteByID removes the record or returns ErrNotFound
	DeleteByID(ctx context.Context, id string) error
}
