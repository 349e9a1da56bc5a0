// Package storage publishes finished decks to S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/thywilljoshua/pdf-to-deck/internal/config"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Driver stores files under keys and resolves their URLs.
type Driver interface {
	Put(ctx context.Context, localPath, key, contentType string) error
	GetURL(key string) (string, error)
}

// Minio is a Driver backed by a MinIO or S3 bucket.
type Minio struct {
	client *minio.Client
	bucket string
	region string
}

func NewMinio(cfg config.StorageConfig) (*Minio, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("storage endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Minio{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// Put uploads localPath, creating the bucket on first use.
func (m *Minio) Put(ctx context.Context, localPath, key, contentType string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", m.bucket, err)
		}
	}
	if _, err := m.client.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (m *Minio) GetURL(key string) (string, error) {
	u := m.client.EndpointURL()
	if u == nil {
		return "", errors.New("minio client has no endpoint")
	}
	return strings.TrimSuffix(u.String(), "/") + "/" + m.bucket + "/" + key, nil
}

// Uploader puts decks under a key prefix.
type Uploader struct {
	driver Driver
	prefix string
	log    zerolog.Logger
}

func NewUploader(d Driver, prefix string, log zerolog.Logger) *Uploader {
	return &Uploader{driver: d, prefix: strings.Trim(prefix, "/"), log: log}
}

// Key returns the object key for a run: prefix/runID/file name.
func (u *Uploader) Key(runID, localPath string) string {
	return path.Join(u.prefix, runID, filepath.Base(localPath))
}

// Upload stores the deck and returns its URL.
func (u *Uploader) Upload(ctx context.Context, localPath, runID string) (string, error) {
	key := u.Key(runID, localPath)
	if err := u.driver.Put(ctx, localPath, key, pptxContentType); err != nil {
		return "", err
	}
	url, err := u.driver.GetURL(key)
	if err != nil {
		return "", err
	}
	u.log.Info().Str("key", key).Str("url", url).Msg("deck uploaded")
	return url, nil
}
