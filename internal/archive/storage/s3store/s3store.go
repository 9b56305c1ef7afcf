// Package s3store implements the object store on the S3 API. It works with
// AWS S3 and compatible services such as MinIO.
package s3store

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	kerrors "github.com/dm/kbackup/internal/errors"
)

// Config holds S3 connection settings.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PathStyle bool // Use path-style URLs (required for MinIO)
}

// Store implements storage.ObjectStore with the AWS SDK.
type Store struct {
	client *s3.Client
	bucket string
}

// New creates an S3 store. When no static keys are configured the SDK's
// default credential chain is used.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, kerrors.Newf(kerrors.KindInvalidConfig, "archive config", "bucket name is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, kerrors.Newf(kerrors.KindInvalidConfig, "archive config", "access key and secret key must be set together")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	optFns := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), optFns...)
	if err != nil {
		return nil, kerrors.New(kerrors.KindInvalidConfig, "load aws config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
		// Many S3-compatible servers reject the SDK's default trailing checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// PutObject uploads the object body.
func (s *Store) PutObject(ctx context.Context, key string, data io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String("application/gzip"),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return kerrors.New(kerrors.KindRemoteUnavailable, "put object", err).WithPath(key)
	}
	return nil
}

// GetObject streams the object body.
func (s *Store) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, kerrors.Newf(kerrors.KindRemoteUnavailable, "get object", "object %s not found in bucket %s", key, s.bucket).WithPath(key)
		}
		return nil, kerrors.New(kerrors.KindRemoteUnavailable, "get object", err).WithPath(key)
	}
	return output.Body, nil
}

// Location returns an s3:// URI for key.
func (s *Store) Location(key string) string {
	return "s3://" + s.bucket + "/" + key
}

// Type returns "s3".
func (s *Store) Type() string {
	return "s3"
}
