package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader stores a public object and returns its URL.
type Uploader interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS, set for S3-compatible stores
	AccessKey string
	SecretKey string
	// PublicBaseURL is the prefix objects are served from, e.g. a CDN.
	PublicBaseURL string
}

type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Uploader(cfg S3Config) *S3Uploader {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return &S3Uploader{
		client:  s3.New(opts),
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
	}
}

func publicBaseURL(cfg S3Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

func (u *S3Uploader) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return u.URL(key), nil
}

func (u *S3Uploader) URL(key string) string {
	return u.baseURL + "/" + strings.TrimLeft(key, "/")
}
