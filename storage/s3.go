package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/baonq-me/screenberry/config"
	"github.com/baonq-me/screenberry/models"
)

// Uploader publishes a byte blob to durable storage and returns a
// time-limited retrieval link for it.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string, expiry time.Duration) (string, error)
}

// S3Store is an Uploader backed by an S3-compatible object store. Writes
// target the storage backend directly; presigned GET links are generated
// against a separate read/CDN hostname, so the two clients are configured
// independently.
type S3Store struct {
	write   *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// New creates an S3Store from validated storage configuration.
func New(cfg config.StorageConfig) *S3Store {
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.PrivateKey, "")

	// Internal object stores often run with self-signed certificates.
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}

	writeClient := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  creds,
		BaseEndpoint: aws.String(cfg.WriteEndpoint),
		UsePathStyle: true,
		HTTPClient:   httpClient,
	})

	readClient := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  creds,
		BaseEndpoint: aws.String(cfg.ReadScheme + "://" + cfg.ReadHostname),
		UsePathStyle: true,
		HTTPClient:   httpClient,
	})

	return &S3Store{
		write:   writeClient,
		presign: s3.NewPresignClient(readClient),
		bucket:  cfg.Bucket,
	}
}

// Upload puts the object and returns a presigned GET URL valid for expiry.
// No retries: a failed upload surfaces as an UploadError and the caller
// degrades by omitting that artifact's link.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string, expiry time.Duration) (string, error) {
	_, err := s.write.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", models.NewScanError(
			models.ErrCodeUpload,
			fmt.Sprintf("failed to upload %s", key),
			err,
		)
	}
	slog.Info("artifact uploaded", "bucket", s.bucket, "key", key, "bytes", len(data))

	presigned, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", models.NewScanError(
			models.ErrCodeUpload,
			fmt.Sprintf("failed to presign %s", key),
			err,
		)
	}

	return presigned.URL, nil
}

// Key builds the artifact key for one scan: "{kind}_{requestID}.{ext}".
// requestID is minted fresh per scan, so concurrent scans of the same
// domain never collide.
func Key(kind, requestID, ext string) string {
	return fmt.Sprintf("%s_%s.%s", kind, requestID, ext)
}
