// Package storage hands out presigned upload URLs for profile images kept in
// an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("object storage is not configured")

// ErrUnsupportedType is returned for content types that are not images.
var ErrUnsupportedType = errors.New("unsupported image type")

// PresignExpiry is how long an upload URL stays valid.
const PresignExpiry = 15 * time.Minute

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Presigner issues upload URLs.
type Presigner interface {
	PresignImageUpload(ctx context.Context, userID, contentType string) (Upload, error)
}

// Upload is a presigned PUT plus the URL the object is readable at afterwards.
type Upload struct {
	UploadURL string
	PublicURL string
	Key       string
}

// Options configures S3Storage.
type Options struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
	// PublicURL is the base images are served from; Endpoint when empty.
	PublicURL string
}

// seams for tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// S3Storage presigns PUT requests against a path-style S3 endpoint (MinIO
// or AWS).
type S3Storage struct {
	presign *s3.PresignClient
	opts    Options
	newKey  func(userID, ext string) string
}

// NewS3Storage builds the S3 client. It returns ErrDisabled if opts.Bucket
// is empty.
func NewS3Storage(ctx context.Context, opts Options) (*S3Storage, error) {
	if opts.Bucket == "" {
		return nil, ErrDisabled
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(strings.TrimRight(opts.Endpoint, "/"))
		}
		o.UsePathStyle = true
	})

	return &S3Storage{
		presign: s3.NewPresignClient(client),
		opts:    opts,
		newKey:  RandomImageKey,
	}, nil
}

// RandomImageKey returns avatars/<user>/<uuid><ext>.
func RandomImageKey(userID, ext string) string {
	return fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New(), ext)
}

func (s *S3Storage) PresignImageUpload(ctx context.Context, userID, contentType string) (Upload, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return Upload{}, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}

	bucket := s.opts.Bucket
	key := s.newKey(userID, ext)

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return Upload{}, fmt.Errorf("presign put: %w", err)
	}

	return Upload{UploadURL: req.URL, PublicURL: s.publicURL(key), Key: key}, nil
}

func (s *S3Storage) publicURL(key string) string {
	base := s.opts.PublicURL
	if base == "" {
		base = s.opts.Endpoint
	}
	return strings.TrimRight(base, "/") + "/" + s.opts.Bucket + "/" + key
}
