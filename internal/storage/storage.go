package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage defines how the gallery talks to the object store holding
// the raw image bytes. Objects are addressed by key; read and write access
// for clients is always granted through time-limited presigned URLs.
type ObjectStorage interface {
	// Get returns a ReadCloser streaming the object's bytes
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing object is not an error,
	// so a previously half-failed delete can be re-driven.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited URL granting read access to the object
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)

	// PresignPut returns a time-limited URL granting write access to the object
	PresignPut(ctx context.Context, key string, expires time.Duration) (string, error)
}
