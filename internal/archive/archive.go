// Package archive uploads organized content to object storage.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrDisabled is returned by stores when archiving is not configured.
var ErrDisabled = errors.New("archive: not configured")

// Store puts an object and returns its URL.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Put(context.Context, string, []byte, string) (string, error) {
	return "", ErrDisabled
}

type Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the S3 endpoint, for S3-compatible services.
	// Objects are then addressed path-style.
	Endpoint string
}

// New returns an S3 store, or Disabled when no bucket is configured.
func New(ctx context.Context, cfg Config, log *slog.Logger) (Store, error) {
	if cfg.Bucket == "" {
		log.Info("archive disabled, no bucket configured")
		return Disabled{}, nil
	}
	return NewS3(ctx, cfg)
}

// S3 stores objects in a single bucket.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	region   string
	endpoint string
}

func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("archive: AWS_REGION not set")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("archive: AWS credentials incomplete")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: endpoint,
	}, nil
}

// Put uploads data under key and returns the object URL.
func (c *S3) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return c.url(key), nil
}

func (c *S3) url(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

// Key returns the object key for a session artifact.
func Key(sessionID, name string) string {
	return "sessions/" + sessionID + "/" + name
}
