package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store persists recordings to a bucket, keyed by upload date.
type S3Store struct {
	bucket   string
	s3Client S3API
}

func NewS3Store(s3Client S3API, bucket string) *S3Store {
	if s3Client == nil {
		panic("transcribe: s3 client cannot be nil")
	}
	if bucket == "" {
		panic("transcribe: s3 bucket cannot be empty")
	}
	return &S3Store{bucket: bucket, s3Client: s3Client}
}

func (s *S3Store) Store(ctx context.Context, audio []byte, suggestedName string) (string, error) {
	now := time.Now().UTC()
	key := fmt.Sprintf("recordings/%d/%02d/%02d/%s",
		now.Year(), now.Month(), now.Day(), storedName(suggestedName))

	contentType := mime.TypeByExtension(filepath.Ext(suggestedName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(audio),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: s3 put %s: %w", key, err)
	}
	return key, nil
}

func (s *S3Store) Delete(ctx context.Context, storedPath string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storedPath),
	})
	if err != nil {
		return fmt.Errorf("transcribe: s3 delete %s: %w", storedPath, err)
	}
	return nil
}
