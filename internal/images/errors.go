package images

import "errors"

// Sentinel errors for the images domain. Callers match them with errors.Is.
var (
	// Repository-level errors.
	ErrNotFound = errors.New("image record not found")

	// Request validation errors.
	ErrInvalidSortField = errors.New("unknown sort field")
	ErrNoFileNames      = errors.New("fileNames are required")

	// Per-item upload pipeline errors. Items failing with these are logged
	// and dropped; the batch continues.
	ErrStorageFetch    = errors.New("storage fetch failed")
	ErrMetadataExtract = errors.New("metadata extraction failed")
)
