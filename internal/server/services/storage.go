package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/outfitcal/daybook/internal/common"
	sc "github.com/outfitcal/daybook/internal/server/config"
)

// ObjectStorage is the storage collaborator the day-record workflow needs:
// byte uploads and short-lived signed display URLs.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Test seams for the AWS SDK constructors.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = s3.NewPresignClient
)

// S3Storage implements ObjectStorage against any S3-compatible backend
// (MinIO in development). Signed URLs are always derived fresh; they expire
// after the configured TTL and must never be stored.
type S3Storage struct {
	config *sc.Config
}

func NewS3Storage(cfg *sc.Config) *S3Storage {
	return &S3Storage{config: cfg}
}

func (s *S3Storage) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	bucket := s.config.S3Bucket
	input := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = &contentType
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	return nil
}

func (s *S3Storage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	presignClient := newS3PresignClient(client)

	bucket := s.config.S3Bucket
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	return req.URL, nil
}
