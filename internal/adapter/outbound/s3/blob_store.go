package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
)

// Config holds S3-compatible storage settings.
type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
}

// BlobStore stores generated artifacts in an S3-compatible bucket.
type BlobStore struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewClient builds an S3 client for cfg. Static credentials are used when set,
// otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg *Config) (*s3.Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewBlobStore creates a new S3 blob store.
func NewBlobStore(client *s3.Client, bucket, prefix string) *BlobStore {
	return &BlobStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *BlobStore) objectKey(key string) string {
	return path.Join(s.prefix, key)
}

// Put uploads the asset.
func (s *BlobStore) Put(ctx context.Context, key string, asset *model.Asset) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(asset.Data),
		ContentLength: aws.Int64(int64(len(asset.Data))),
	}
	if asset.MIMEType != "" {
		input.ContentType = aws.String(asset.MIMEType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Get downloads the asset, or returns nil when the object does not exist.
func (s *BlobStore) Get(ctx context.Context, key string) (*model.Asset, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}

	asset := &model.Asset{Data: data}
	if result.ContentType != nil {
		asset.MIMEType = *result.ContentType
	}
	return asset, nil
}

var _ outbound.BlobStorePort = (*BlobStore)(nil)
