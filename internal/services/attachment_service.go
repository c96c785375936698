package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AttachmentService stores receipt scans for ledger entries and hands
// out presigned download links.
type AttachmentService interface {
	UploadReceipt(ctx context.Context, entryID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
	GetReceiptURL(objectKey string, expiry time.Duration) (string, error)
	DeleteReceipt(ctx context.Context, objectKey string) error
	EnsureBucketExists(ctx context.Context) error
}

const receiptBucket = "ledger-receipts"

type minioAttachmentService struct {
	client *minio.Client
}

// NewAttachmentService creates a MinIO-backed attachment service
func NewAttachmentService(endpoint, accessKey, secretKey string, useSSL bool) (AttachmentService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioAttachmentService{client: client}, nil
}

// UploadReceipt stores the file under <entry-id>/<random>-<filename>
// and returns the object key to persist on the ledger entry.
func (m *minioAttachmentService) UploadReceipt(ctx context.Context, entryID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectKey := fmt.Sprintf("%s/%s-%s", entryID, uuid.NewString()[:8], path.Base(filename))

	_, err := m.client.PutObject(ctx, receiptBucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (m *minioAttachmentService) GetReceiptURL(objectKey string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), receiptBucket, objectKey, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioAttachmentService) DeleteReceipt(ctx context.Context, objectKey string) error {
	return m.client.RemoveObject(ctx, receiptBucket, objectKey, minio.RemoveObjectOptions{})
}

func (m *minioAttachmentService) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, receiptBucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, receiptBucket, minio.MakeBucketOptions{})
	}
	return nil
}
