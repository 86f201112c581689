// Package storage uploads profile pictures to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
)

const pictureFolder = "user-pictures"

// NewClient creates an S3 client.  When cfg.Endpoint is set (LocalStack,
// MinIO) it overrides the endpoint and enables path-style addressing.
func NewClient(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

// PictureStore writes pictures under user-pictures/ and hands back a
// stable public URL.
type PictureStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewPictureStore derives the public base URL from cfg: PublicBaseURL when
// set (CDN), otherwise the virtual-hosted S3 URL of the bucket.
func NewPictureStore(client *s3.Client, cfg config.S3Config) *PictureStore {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &PictureStore{client: client, bucket: cfg.Bucket, baseURL: base}
}

// UploadPicture stores r under a fresh key and returns its URL.
func (s *PictureStore) UploadPicture(ctx context.Context, filename string, r io.Reader, contentType string) (string, error) {
	key := pictureKey(filename)
	if contentType == "" {
		contentType = detectContentType(filename)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// pictureKey keeps the original extension but never the original name.
func pictureKey(filename string) string {
	return pictureFolder + "/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
}

func detectContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
