package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Archive keeps uploaded prescription and pill images in an S3-compatible
// bucket. The archive is best-effort audit storage: analysis never depends
// on a successful write.
type S3Archive struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewS3Archive constructs the archive adapter.
func NewS3Archive(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*S3Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := strings.HasPrefix(strings.ToLower(endpoint), "https")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive client: %w", err)
	}
	return &S3Archive{client: client, bucket: bucket, logger: logger.With("component", "imagestore.s3")}, nil
}

func (s *S3Archive) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// Put uploads an image under the given key.
func (s *S3Archive) Put(ctx context.Context, key string, data []byte, mimeType string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType:      mimeType,
		DisableMultipart: len(data) < 5*1024*1024, // small uploads as single part
	})
	return err
}

// Get fetches an archived image for reading.
func (s *S3Archive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// Ensure object exists before returning reader.
	if _, statErr := obj.Stat(); statErr != nil {
		return nil, statErr
	}
	return obj, nil
}

// Delete removes an archived image.
func (s *S3Archive) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		raw = parts[0]
	}
	return raw
}
