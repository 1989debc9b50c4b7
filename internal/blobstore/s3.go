package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// putObjectAPI is the slice of the S3 client used by S3Store; tests
// provide a fake.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds settings for an S3-compatible backend (AWS S3, MinIO).
type S3Config struct {
	BaseEndpoint string
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
}

// S3Store is a Store backed by an S3-compatible object storage service.
// Retrieval URLs assume the bucket is publicly readable.
type S3Store struct {
	client putObjectAPI
	cfg    S3Config
}

// NewS3Store builds an S3 client with static credentials against the
// configured base endpoint (path-style, MinIO-friendly).
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, cfg: cfg}, nil
}

// Put uploads the payload and returns its public retrieval URL. The
// underlying SDK error is returned as-is apart from message context, so
// callers can classify it themselves.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, progress ProgressFunc) (string, error) {
	body := newProgressReader(r, size, progress)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.URL(key), nil
}

// URL returns the stable public URL for a stored key.
func (s *S3Store) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.cfg.BaseEndpoint, "/"), s.cfg.Bucket, key)
}

var _ Store = (*S3Store)(nil)
