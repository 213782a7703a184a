package source

import (
	"context"
	"io"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"phddash/internal/errors"
)

// ObjectGetter is the subset of *s3.Client the fetcher uses
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds explicit construction parameters. Credentials come from the
// default AWS chain.
type S3Config struct {
	Region    string
	Endpoint  string // optional; set for MinIO and other S3-compatible stores
	PathStyle bool
}

// S3Fetcher reads s3://bucket/key locations
type S3Fetcher struct {
	client ObjectGetter
}

// NewS3Fetcher builds an S3 client from the default AWS configuration
func NewS3Fetcher(ctx context.Context, cfg S3Config) (*S3Fetcher, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.ExternalServiceError("s3", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Fetcher{client: client}, nil
}

// NewS3FetcherWithClient wraps an existing client
func NewS3FetcherWithClient(client ObjectGetter) *S3Fetcher {
	return &S3Fetcher{client: client}
}

// Fetch implements Fetcher
func (f *S3Fetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, errors.FetchError(location, err)
	}
	return out.Body, nil
}

// ParseS3Location splits s3://bucket/key/path into bucket and key
func ParseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil || !strings.EqualFold(u.Scheme, "s3") {
		return "", "", errors.InvalidInput("not an s3:// location: " + location)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.InvalidInput("s3 location needs a bucket and a key: " + location)
	}
	return bucket, key, nil
}
