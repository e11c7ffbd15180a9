package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Store holds each document as one S3 object. The object ETag serves as the
// version tag; conditional writes use If-Match so a stale writer fails with
// ErrVersionMismatch instead of silently clobbering a concurrent edit.
type S3Store struct {
	client  *s3.Client
	timeout time.Duration
}

func NewS3Store(ctx context.Context, timeout time.Duration) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3Store{
		client:  s3.NewFromConfig(awsCfg),
		timeout: timeout,
	}, nil
}

func (s *S3Store) Fetch(ctx context.Context, bucket, key string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, "", fmt.Errorf("fetch %s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, "", fmt.Errorf("fetch %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	// The body arrives as a stream; read it to completion so the caller sees
	// one contiguous document regardless of how the transfer was chunked.
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s/%s body: %w", bucket, key, err)
	}

	return data, aws.ToString(out.ETag), nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, data []byte, ifVersion string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	in := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	if ifVersion != "" {
		in.IfMatch = aws.String(ifVersion)
	}

	out, err := s.client.PutObject(ctx, in)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return "", fmt.Errorf("put %s/%s: %w", bucket, key, ErrVersionMismatch)
		}
		return "", fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}

	return aws.ToString(out.ETag), nil
}
