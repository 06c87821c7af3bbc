package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// PagePrefix is the key prefix under which page assets are stored in the bucket
const PagePrefix = "pages/"

// S3Config holds configuration for S3 storage
type S3Config struct {
	BucketHost      string
	BucketPort      int
	BucketName      string
	UseSSL          bool
	InsecureTLS     bool
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Storage implements AssetStorage using S3-compatible object storage
type S3Storage struct {
	client     *s3.Client
	bucketName string
}

// NewS3Storage creates a new S3 storage client
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s:%d", scheme, cfg.BucketHost, cfg.BucketPort)

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	}
	if cfg.InsecureTLS {
		opts = append(opts, config.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // Required for MinIO and most S3-compatible stores
	})

	return &S3Storage{
		client:     client,
		bucketName: cfg.BucketName,
	}, nil
}

// objectKey returns the bucket key for an asset
func objectKey(key string) string {
	return PagePrefix + key
}

// Location returns an s3:// URL for key
func (s *S3Storage) Location(key string) string {
	return "s3://" + s.bucketName + "/" + objectKey(key)
}

// Get retrieves the content of an asset
func (s *S3Storage) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, &ErrNotFound{Key: key, Location: s.Location(key)}
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

// List returns the keys stored directly under PagePrefix
func (s *S3Storage) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucketName),
		Prefix:    aws.String(PagePrefix),
		Delimiter: aws.String("/"),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			var nsb *types.NoSuchBucket
			if errors.As(err, &nsb) {
				return nil, &ErrNotFound{Location: "s3://" + s.bucketName}
			}
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), PagePrefix)
			if name == "" {
				continue
			}
			keys = append(keys, name)
		}
	}
	return keys, nil
}

// Put creates or updates an asset
func (s *S3Storage) Put(ctx context.Context, key string, content io.Reader) error {
	// Read all content into memory (required for S3 PutObject)
	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// Ping checks if the bucket is reachable
func (s *S3Storage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		return fmt.Errorf("failed to ping bucket: %w", err)
	}
	return nil
}

// Backend returns "s3"
func (s *S3Storage) Backend() string {
	return "s3"
}

// IsEmpty returns true if no assets are stored
func (s *S3Storage) IsEmpty(ctx context.Context) (bool, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return len(keys) == 0, nil
}
