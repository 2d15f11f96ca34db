package port

import (
	"context"
	"io"
	"time"
)

// UploadInput describes an object to store.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
}

// UploadOutput holds the stored object's location.
type UploadOutput struct {
	Location string
}

// ObjectStorage stores generated report artifacts.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	PresignDownload(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}
