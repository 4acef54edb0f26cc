package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const minioScheme = "minio"

// MinioStorage implements Storage interface for a MinIO server
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage creates a new MinIO storage instance and checks that the bucket exists
func NewMinioStorage(ctx context.Context, cfg StorageConfig) (*MinioStorage, error) {
	if cfg.MinioEndpoint == "" || cfg.MinioBucket == "" {
		return nil, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for minio storage")
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("%w: bucket %s: %v", ErrUnavailable, cfg.MinioBucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: bucket %s does not exist", ErrUnavailable, cfg.MinioBucket)
	}

	return &MinioStorage{
		client: client,
		bucket: cfg.MinioBucket,
	}, nil
}

// Put stores an object in the bucket
func (s *MinioStorage) Put(ctx context.Context, key string, data []byte) (Location, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: getContentType(key),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload to minio: %v", ErrUnavailable, err)
	}

	return remoteLocation(minioScheme, s.bucket, key), nil
}

// Get opens an object from the bucket
func (s *MinioStorage) Get(ctx context.Context, loc Location) (io.ReadCloser, error) {
	key, err := remoteKey(loc, minioScheme, s.bucket)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download from minio: %v", ErrUnavailable, err)
	}

	// GetObject is lazy; Stat surfaces missing keys before the caller reads
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isMinioNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, fmt.Errorf("%w: failed to download from minio: %v", ErrUnavailable, err)
	}

	return obj, nil
}

// Delete removes an object from the bucket
func (s *MinioStorage) Delete(ctx context.Context, loc Location) error {
	key, err := remoteKey(loc, minioScheme, s.bucket)
	if err != nil {
		return err
	}

	err = s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isMinioNotFound(err) {
		return fmt.Errorf("%w: failed to delete from minio: %v", ErrUnavailable, err)
	}

	return nil
}

func isMinioNotFound(err error) bool {
	return string(minio.ToErrorResponse(err).Code) == "NoSuchKey"
}
