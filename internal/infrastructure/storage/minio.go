package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MatthijsVer/company-manager/pkg/config"
)

// MinIOClient wraps MinIO operations for document artifacts
type MinIOClient struct {
	client *minio.Client
	bucket string
}

// NewMinIOClient creates a new MinIO client and ensures the bucket exists
func NewMinIOClient(cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return client, nil
}

func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// minutesObjectName returns the object key of a minutes document artifact
func minutesObjectName(documentID uuid.UUID) string {
	return fmt.Sprintf("minutes/%s.html", documentID)
}

// UploadMinutes stores the rendered minutes HTML for a document, overwriting
// any previous version
func (m *MinIOClient) UploadMinutes(ctx context.Context, documentID uuid.UUID, html []byte) error {
	return m.UploadFile(ctx, minutesObjectName(documentID), bytes.NewReader(html), int64(len(html)), "text/html")
}

// GetMinutes streams the stored minutes HTML for a document. The caller
// closes the reader.
func (m *MinIOClient) GetMinutes(ctx context.Context, documentID uuid.UUID) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, minutesObjectName(documentID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch minutes object: %w", err)
	}
	return obj, nil
}

// UploadFile uploads a file to MinIO
func (m *MinIOClient) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}
