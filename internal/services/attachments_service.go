package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const attachmentsBucket = "grn-attachments"

// Attachment is one delivery-note document stored against a GRN.
type Attachment struct {
	ObjectName string    `json:"object_name"`
	Size       int64     `json:"size"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AttachmentsService stores GRN delivery-note documents in object storage.
type AttachmentsService interface {
	Upload(ctx context.Context, grnID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
	List(ctx context.Context, grnID uuid.UUID) ([]Attachment, error)
	GetPresignedURL(objectName string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, objectName string) error
	EnsureBucketExists(ctx context.Context) error
}

type minioAttachments struct {
	client *minio.Client
}

func NewAttachmentsService(endpoint, accessKey, secretKey string, useSSL bool) (AttachmentsService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioAttachments{client: client}, nil
}

func objectName(grnID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s", grnID, filename)
}

func (m *minioAttachments) Upload(ctx context.Context, grnID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	name := objectName(grnID, filename)
	_, err := m.client.PutObject(ctx, attachmentsBucket, name, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

func (m *minioAttachments) List(ctx context.Context, grnID uuid.UUID) ([]Attachment, error) {
	var attachments []Attachment
	objects := m.client.ListObjects(ctx, attachmentsBucket, minio.ListObjectsOptions{
		Prefix:    grnID.String() + "/",
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return nil, object.Err
		}
		attachments = append(attachments, Attachment{
			ObjectName: object.Key,
			Size:       object.Size,
			UpdatedAt:  object.LastModified,
		})
	}
	return attachments, nil
}

func (m *minioAttachments) GetPresignedURL(objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), attachmentsBucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioAttachments) Delete(ctx context.Context, objectName string) error {
	return m.client.RemoveObject(ctx, attachmentsBucket, objectName, minio.RemoveObjectOptions{})
}

func (m *minioAttachments) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, attachmentsBucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, attachmentsBucket, minio.MakeBucketOptions{})
	}
	return nil
}
