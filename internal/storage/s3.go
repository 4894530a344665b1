// Package storage stores blog images in an S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/inkpress/inkpress/internal/config"
)

// ImageStore uploads and removes blog cover images.
type ImageStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
	keyPrefix string
	logger    *slog.Logger
}

// New creates an image store from storage config. Static credentials and a
// custom endpoint keep it compatible with MinIO.
func New(ctx context.Context, log *slog.Logger, cfg config.StorageConfig) (*ImageStore, error) {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ImageStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		keyPrefix: cfg.KeyPrefix,
		logger:    log.With(slog.String("component", "storage")),
	}, nil
}

// NewKey returns a fresh object key for an uploaded image, preserving the
// original file extension.
func (s *ImageStore) NewKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	d := time.Now()
	return fmt.Sprintf("%s%d/%02d/%s%s", s.keyPrefix, d.Year(), d.Month(), uuid.New(), ext)
}

// Upload writes the object and returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	s.logger.Info("image uploaded", slog.String("key", key))
	return s.URL(key), nil
}

// Delete removes the object for the given key. Unknown keys are a no-op.
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	s.logger.Info("image deleted", slog.String("key", key))
	return nil
}

// URL builds the public URL for a stored object.
func (s *ImageStore) URL(key string) string {
	return s.publicURL + "/" + key
}
