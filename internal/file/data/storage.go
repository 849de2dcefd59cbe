package data

import (
	"context"
	"io"
	"time"

	"github.com/lk2023060901/filevault/internal/file/biz"
	pkgminio "github.com/lk2023060901/filevault/internal/pkg/minio"
)

// MinIOObjectStore implements biz.ObjectStore on a single bucket.
type MinIOObjectStore struct {
	client *pkgminio.Client
	bucket string
}

func NewMinIOObjectStore(client *pkgminio.Client, bucket string) biz.ObjectStore {
	return &MinIOObjectStore{
		client: client,
		bucket: bucket,
	}
}

func (s *MinIOObjectStore) Bucket() string {
	return s.bucket
}

func (s *MinIOObjectStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = pkgminio.DetectContentType(key)
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, pkgminio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *MinIOObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, pkgminio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (s *MinIOObjectStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, pkgminio.RemoveObjectOptions{})
}

func (s *MinIOObjectStore) PresignedPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, expiry)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinIOObjectStore) PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
