package objectclient

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/markdave123-py/Scholara/internal/core"
)

// MinioClient wraps a MinIO client for publishing papers.
type MinioClient struct {
	client *minio.Client
	bucket string
}

var _ core.ObjectClient = (*MinioClient)(nil)

func NewMinioClient(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioClient, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}
	log.Printf("ObjectStore: using MinIO bucket %s at %s", bucket, endpoint)

	return &MinioClient{client: client, bucket: bucket}, nil
}

// UploadFile stores bytes under key and returns the object URL.
func (c *MinioClient) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio upload failed: %w", err)
	}
	return minioURL(c.client.EndpointURL(), c.bucket, key), nil
}

func minioURL(endpoint *url.URL, bucket, key string) string {
	u := *endpoint
	u.Path = "/" + bucket + "/" + key
	return u.String()
}
