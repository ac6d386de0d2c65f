package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Mover keeps images in a single bucket with path-style addressing.
type S3Mover struct {
	api    s3API
	bucket string
}

// NewS3Mover returns nil when the endpoint, credentials or bucket are missing.
func NewS3Mover(cfg S3Config) *S3Mover {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil
	}
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(strings.TrimRight(cfg.Endpoint, "/")),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})
	return &S3Mover{api: client, bucket: cfg.Bucket}
}

func (m *S3Mover) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	k, err := CleanKey(key)
	if err != nil {
		return err
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(k),
		Body:   body,
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := m.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put %s: %w", k, err)
	}
	return nil
}

// Move copies the object and deletes the source.
func (m *S3Mover) Move(ctx context.Context, from, to string) error {
	src, err := CleanKey(from)
	if err != nil {
		return err
	}
	dst, err := CleanKey(to)
	if err != nil {
		return err
	}

	_, err = m.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(m.bucket),
		Key:        aws.String(dst),
		CopySource: aws.String(m.bucket + "/" + src),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return fmt.Errorf("s3 move %s: %w", src, os.ErrNotExist)
		}
		return fmt.Errorf("s3 copy %s -> %s: %w", src, dst, err)
	}
	return m.Delete(ctx, src)
}

func (m *S3Mover) Delete(ctx context.Context, key string) error {
	k, err := CleanKey(key)
	if err != nil {
		return err
	}
	if _, err := m.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(k),
	}); err != nil {
		return fmt.Errorf("s3 delete %s: %w", k, err)
	}
	return nil
}
