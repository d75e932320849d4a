package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// SchemeS3 is the scheme served by S3Store.
const SchemeS3 = "s3"

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store maps namespaces to buckets and keys to object keys.
type S3Store struct {
	client S3API
}

// NewS3Store wraps an S3 client.
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client}
}

// NewS3StoreFromEnv builds a client from the default AWS credential chain.
// An empty region defers to the environment.
func NewS3StoreFromEnv(ctx context.Context, region string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg)), nil
}

// Get downloads the object at loc.
func (s *S3Store) Get(ctx context.Context, loc Locator) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Namespace),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, mapS3Error(loc, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}
	return data, nil
}

// Put uploads data to loc.
func (s *S3Store) Put(ctx context.Context, loc Locator, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(loc.Namespace),
		Key:    aws.String(loc.Key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		mapped := mapS3Error(loc, err)
		if errors.Is(mapped, ErrAccessDenied) {
			return mapped
		}
		return fmt.Errorf("%w: %s: %v", ErrWrite, loc, err)
	}
	return nil
}

func mapS3Error(loc Locator, err error) error {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %s", ErrNotFound, loc)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %s", ErrAccessDenied, loc)
		}
	}
	return fmt.Errorf("s3 %s: %w", loc, err)
}

var _ Store = (*S3Store)(nil)
