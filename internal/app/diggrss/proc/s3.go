package proc

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store publishes the rendered feed to s3-compatible storage.
type S3Store struct {
	Client   *minio.Client
	Location string
	Bucket   string
}

// NewS3Client creates a minio client for the given endpoint.
func NewS3Client(endpoint, key, secret string, ssl bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: ssl,
	})
}

// UploadFeed puts the feed file into the bucket, creating the bucket on first use.
func (s *S3Store) UploadFeed(ctx context.Context, objectName, filePath string) (*minio.UploadInfo, error) {
	return s.uploadFile(ctx, objectName, filePath, "application/rss+xml")
}

func (s *S3Store) uploadFile(ctx context.Context, objectName, filePath, contentType string) (*minio.UploadInfo, error) {
	exists, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return nil, fmt.Errorf("can't check bucket %s: %w", s.Bucket, err)
	}

	if !exists {
		if err := s.Client.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{Region: s.Location}); err != nil {
			return nil, fmt.Errorf("can't create bucket %s: %w", s.Bucket, err)
		}
	}

	uploadInfo, err := s.Client.FPutObject(ctx, s.Bucket, objectName, filePath,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, err
	}

	if uploadInfo.Location == "" {
		location, err := s.getLocation(ctx, objectName)
		if err != nil {
			return nil, fmt.Errorf("can't get location of %s in bucket %s: %w", objectName, s.Bucket, err)
		}
		uploadInfo.Location = location
	}
	return &uploadInfo, nil
}

func (s *S3Store) getLocation(ctx context.Context, objectName string) (string, error) {
	endpoint := s.Client.EndpointURL()

	statInfo, err := s.Client.StatObject(ctx, s.Bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(endpoint.String(), "/"), s.Bucket, statInfo.Key), nil
}
