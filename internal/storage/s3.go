package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // s3-compatible servers; switches to path-style addressing
	PublicURL string // overrides the address returned by Put/URL

	// Static credentials; empty means the default AWS credential chain.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store implements BlobStore on an S3 bucket.
type S3Store struct {
	s3Client  *s3.S3
	uploader  *s3manager.Uploader
	bucket    string
	region    string
	endpoint  string
	publicURL string
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S3 bucket name is required")
	}
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}
	return &S3Store{
		s3Client:  s3.New(sess),
		uploader:  s3manager.NewUploader(sess),
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  cfg.Endpoint,
		publicURL: cfg.PublicURL,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if name == "" {
		return "", errors.New("empty key")
	}
	in := &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
		Body:   r,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.UploadWithContext(ctx, in); err != nil {
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}
	return s.URL(name)
}

func (s *S3Store) URL(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty key")
	}
	switch {
	case s.publicURL != "":
		return joinURL(s.publicURL, name), nil
	case s.endpoint != "":
		return joinURL(strings.TrimSuffix(s.endpoint, "/")+"/"+s.bucket, name), nil
	default:
		return joinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.bucket, s.region), name), nil
	}
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("empty key")
	}
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
