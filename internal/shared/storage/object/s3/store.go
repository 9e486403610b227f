package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"docforms-backend/internal/shared/storage/object"
)

// api is the subset of the S3 client the store calls.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store archives exports in a single bucket, optionally below a key prefix.
type Store struct {
	client   api
	bucket   string
	prefix   string
	kmsKeyID string
}

// New loads the default AWS credential chain and returns a bucket-backed store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newStore(s3.NewFromConfig(cfg), bucket, prefix, kmsKeyID), nil
}

func newStore(client api, bucket, prefix, kmsKeyID string) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(strings.TrimSpace(prefix), "/"),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}
}

// Put uploads the whole body in one request. Exports are small, so the body is
// buffered to give S3 an exact content length.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	objectKey, err := s.objectKey(ctx, key)
	if err != nil {
		return 0, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	}
	if s.kmsKeyID != "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		in.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return 0, fmt.Errorf("s3 put %s/%s: %w", s.bucket, objectKey, err)
	}
	return int64(len(body)), nil
}

// Open streams an object. Missing keys map to object.ErrNotFound.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey, err := s.objectKey(ctx, key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: %s", object.ErrNotFound, key)
		}
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// Delete removes an object. S3 treats deleting a missing key as success.
func (s *Store) Delete(ctx context.Context, key string) error {
	objectKey, err := s.objectKey(ctx, key)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

func (s *Store) objectKey(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := object.ValidateKey(key); err != nil {
		return "", err
	}
	if s.prefix == "" {
		return key, nil
	}
	return s.prefix + "/" + key, nil
}

var _ object.Store = (*Store)(nil)
