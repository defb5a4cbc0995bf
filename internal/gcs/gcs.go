// Package gcs reads RCA documents out of a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// BlobInfo describes one object in the bucket. ContentHash is the hex MD5
// reported by object metadata, used for change detection without a
// download.
type BlobInfo struct {
	Name        string
	ContentHash string
}

// Source lists and downloads document blobs.
type Source interface {
	ListBlobs(ctx context.Context) ([]BlobInfo, error)
	Download(ctx context.Context, name string) ([]byte, error)
}

// Bucket is a Source backed by a GCS bucket.
type Bucket struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	logger *slog.Logger
}

// NewBucket opens the named bucket. Credentials come from the environment.
func NewBucket(ctx context.Context, name string, logger *slog.Logger) (*Bucket, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &Bucket{
		client: client,
		bucket: client.Bucket(name),
		name:   name,
		logger: logger,
	}, nil
}

// ListBlobs returns every object in the bucket.
func (b *Bucket) ListBlobs(ctx context.Context) ([]BlobInfo, error) {
	var blobs []BlobInfo
	it := b.bucket.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", b.name, err)
		}
		blobs = append(blobs, BlobInfo{
			Name:        attrs.Name,
			ContentHash: hex.EncodeToString(attrs.MD5),
		})
	}
	b.logger.Debug("listed bucket", "bucket", b.name, "objects", len(blobs))
	return blobs, nil
}

// Download reads the full content of one object.
func (b *Bucket) Download(ctx context.Context, name string) ([]byte, error) {
	reader, err := b.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", name, err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", name, err)
	}
	return content, nil
}

// URI returns the gs:// path for an object in this bucket.
func (b *Bucket) URI(name string) string {
	return fmt.Sprintf("gs://%s/%s", b.name, name)
}

// Close releases the underlying client.
func (b *Bucket) Close() error {
	return b.client.Close()
}
