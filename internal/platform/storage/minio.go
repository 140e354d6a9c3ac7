package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore keeps generated reports.
type ObjectStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type minioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return client, nil
}

// NewMinioStorage creates the bucket when it does not exist yet.
func NewMinioStorage(ctx context.Context, client *minio.Client, bucket string) (ObjectStore, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return &minioStorage{client: client, bucket: bucket}, nil
}

// Upload returns the bucket-qualified object name.
func (m *minioStorage) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", m.bucket, name, err)
	}
	return m.bucket + "/" + name, nil
}
