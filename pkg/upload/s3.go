package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores files in an S3 bucket.
//
// Example usage:
//
//	client := upload.NewS3Client(upload.S3ClientOptions{Region: "us-east-1"})
//	store := upload.NewS3Store(client, "gobarber-avatars", "avatars/", 5<<20)
type S3Store struct {
	client    S3API
	presign   *s3.PresignClient
	bucket    string
	prefix    string
	maxSize   int64
	urlExpiry time.Duration
}

// NewS3Store creates a new S3 store.
//
// Parameters:
//   - client: *s3.Client or any S3API implementation
//   - bucket: S3 bucket name
//   - prefix: Key prefix (e.g., "avatars/")
//   - maxSize: Maximum file size in bytes (0 = no limit)
//
// Presigned URLs are only produced when client is an *s3.Client.
func NewS3Store(client S3API, bucket, prefix string, maxSize int64) *S3Store {
	s := &S3Store{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		maxSize:   maxSize,
		urlExpiry: time.Hour,
	}
	if c, ok := client.(*s3.Client); ok {
		s.presign = s3.NewPresignClient(c)
	}
	return s
}

// WithURLExpiry sets how long presigned URLs are valid.
func (s *S3Store) WithURLExpiry(d time.Duration) *S3Store {
	s.urlExpiry = d
	return s
}

func (s *S3Store) key(id string) string {
	return s.prefix + id
}

// Save uploads the file. The body is buffered so the object length is known.
func (s *S3Store) Save(ctx context.Context, filename, contentType string, r io.Reader) (*File, error) {
	var buf bytes.Buffer
	n, err := limitedCopy(&buf, r, s.maxSize)
	if err != nil {
		return nil, err
	}

	id := newID(filename)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(id)),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": filename,
			"upload-time":       time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload failed: %w", err)
	}

	return &File{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        n,
		URL:         s.URL(ctx, id),
	}, nil
}

// Open fetches the object.
func (s *S3Store) Open(ctx context.Context, id string) (*File, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	key := s.key(id)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, notFoundOr(err)
	}
	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, notFoundOr(err)
	}

	filename := id
	if fn, ok := head.Metadata["original-filename"]; ok {
		filename = fn
	}
	contentType := "application/octet-stream"
	if head.ContentType != nil {
		contentType = *head.ContentType
	}
	var size int64
	if head.ContentLength != nil {
		size = *head.ContentLength
	}

	return &File{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		URL:         s.URL(ctx, id),
		Reader:      obj.Body,
	}, nil
}

// Delete removes the object.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil && !errors.Is(notFoundOr(err), ErrNotFound) {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

// URL returns a presigned download link for id, or "" when the store
// cannot presign.
func (s *S3Store) URL(ctx context.Context, id string) string {
	if s.presign == nil {
		return ""
	}
	req, err := s.presign.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(id)),
		},
		s3.WithPresignExpires(s.urlExpiry),
	)
	if err != nil {
		return ""
	}
	return req.URL
}

func notFoundOr(err error) error {
	var nf *types.NotFound
	var nk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nk) {
		return ErrNotFound
	}
	return err
}

// S3ClientOptions configures NewS3Client.
type S3ClientOptions struct {
	Region   string
	Endpoint string

	// UsePathStyle is needed by most S3-compatible servers.
	UsePathStyle bool

	// Static credentials. When empty, AWS_ACCESS_KEY_ID,
	// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN are read on demand.
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an *s3.Client without the shared-config loader.
func NewS3Client(opts S3ClientOptions) *s3.Client {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	o := s3.Options{
		Region:       region,
		UsePathStyle: opts.UsePathStyle,
		Credentials:  aws.NewCredentialsCache(staticOrEnv(opts.AccessKeyID, opts.SecretAccessKey)),
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return s3.New(o)
}

func staticOrEnv(id, secret string) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		if id != "" && secret != "" {
			return aws.Credentials{AccessKeyID: id, SecretAccessKey: secret, Source: "gobarber-config"}, nil
		}
		envID, envSecret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
		if envID == "" || envSecret == "" {
			return aws.Credentials{}, errors.New("upload: no S3 credentials configured")
		}
		return aws.Credentials{
			AccessKeyID:     envID,
			SecretAccessKey: envSecret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}, nil
	})
}
