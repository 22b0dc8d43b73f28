// Package objstore publishes finished artifacts to S3-compatible object
// storage and hands back presigned download URLs. It is optional: without
// it, clips are served from the local files tree.
package objstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const presignExpiry = 24 * time.Hour

type Publisher struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

func NewPublisher(endpoint, accessKey, secretKey, bucket string, logger *slog.Logger) (*Publisher, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &Publisher{client: client, bucket: bucket, logger: logger}, nil
}

// Publish uploads one artifact under <jobID>/<filename> and returns a
// presigned GET URL for it.
func (p *Publisher) Publish(ctx context.Context, jobID, localPath string) (string, error) {
	key := jobID + "/" + filepath.Base(localPath)

	_, err := p.client.FPutObject(ctx, p.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentTypeFor(localPath),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}

	presigned, err := p.client.PresignedGetObject(ctx, p.bucket, key, presignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presigned get object: %w", err)
	}

	p.logger.Info("artifact published", "bucket", p.bucket, "key", key)
	return presigned.String(), nil
}

func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".mp4":
		return "video/mp4"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
