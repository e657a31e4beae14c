package images

import (
	"time"
)

// Metadata is extracted once at ingestion from the actual object bytes and
// never recomputed afterwards.
type Metadata struct {
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	PixelType string `json:"pixelType"`
}

// ImageRecord is the persisted gallery entry. Name doubles as the storage
// key, so it must match an existing object for reads and deletes to succeed.
type ImageRecord struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"index"`
	URL         string    `json:"url"`
	SizeMB      float64   `json:"sizeMB"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UploadedBy  string    `json:"uploadedBy"`
	Description string    `json:"description"`
	Metadata    Metadata  `json:"metadata" gorm:"embedded;embeddedPrefix:meta_"`
}

// TableName sets the table used by the postgres store
func (ImageRecord) TableName() string {
	return "image_files"
}

// FileUploadedItem is the handoff between the client's direct upload to
// storage and the completion endpoint. UploadedBy and Description are
// optional; empty values fall back to defaults.
type FileUploadedItem struct {
	FileName    string `json:"fileName"`
	S3Location  string `json:"s3Location"`
	UploadedBy  string `json:"uploadedBy,omitempty"`
	Description string `json:"description,omitempty"`
}

// RecordWithSignedURL pairs a record with a freshly presigned read URL
type RecordWithSignedURL struct {
	ImageFile ImageRecord `json:"imageFile"`
	SignedURL string      `json:"signedUrl"`
}

// ListResult is the listing response envelope
type ListResult struct {
	Data         []RecordWithSignedURL `json:"data"`
	CurrentPage  int                   `json:"currentPage"`
	TotalPages   int                   `json:"totalPages"`
	NextPageLink *string               `json:"nextPageLink"`
	Limit        int                   `json:"limit"`
	TotalRecords int                   `json:"totalRecords"`
}

// UploadFailure reports one dropped upload item and why it was dropped
type UploadFailure struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// CompletionResult reports the outcome of an upload-completion batch. A
// partial result is a normal outcome, not an error.
type CompletionResult struct {
	SuccessCount int
	Records      []ImageRecord
	Failures     []UploadFailure
}

// PresignedUpload is one issued upload URL
type PresignedUpload struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}
