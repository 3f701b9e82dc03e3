package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/camden-git/labelloopbackend/config"
	"github.com/camden-git/labelloopbackend/logging"
)

// S3Store implements ObjectStore on top of minio-go
type S3Store struct {
	client     *minio.Client
	bucket     string
	configured bool
	publicBase *url.URL
	log        *zap.SugaredLogger
}

// NewS3Store builds the client from configuration. No network call is made;
// an incomplete configuration yields a store whose operations all fail.
func NewS3Store(cfg config.Config) (*S3Store, error) {
	s := &S3Store{
		bucket:     cfg.MinioBucket,
		configured: cfg.MinioEndpoint != "" && cfg.MinioAccessKey != "" && cfg.MinioSecretKey != "",
		log:        logging.Named("storage"),
	}

	if cfg.S3PublicEndpoint != "" {
		u, err := url.Parse(cfg.S3PublicEndpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid S3 public endpoint '%s': %w", cfg.S3PublicEndpoint, err)
		}
		s.publicBase = u
	}

	if !s.configured {
		s.log.Warn("object storage is not configured; presigned URLs will be unavailable")
		return s, nil
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSecure,
		// a fixed region keeps presigning offline (no bucket location lookup)
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client for %s: %w", cfg.S3EndpointURL(), err)
	}
	s.client = client

	s.log.Infof("initialized S3 store at %s (bucket: %s)", cfg.S3EndpointURL(), s.bucket)
	return s, nil
}

func (s *S3Store) IsConfigured() bool {
	return s.configured && s.client != nil
}

// rewriteHost swaps scheme and host of a presigned URL for the public endpoint, if one is set
func (s *S3Store) rewriteHost(u *url.URL) string {
	return RewriteHost(u, s.publicBase)
}

// RewriteHost returns u with the scheme and host of base. Path and signed query are untouched.
func RewriteHost(u *url.URL, base *url.URL) string {
	if base == nil || base.Host == "" {
		return u.String()
	}
	out := *u
	out.Scheme = base.Scheme
	out.Host = base.Host
	return out.String()
}

func (s *S3Store) PresignUpload(key, contentType string, ttl time.Duration) (string, bool) {
	if !s.IsConfigured() {
		return "", false
	}
	u, err := s.client.PresignedPutObject(context.Background(), s.bucket, key, ttl)
	if err != nil {
		s.log.Errorw("error generating presigned upload URL", "key", key, "content_type", contentType, "error", err)
		return "", false
	}
	return s.rewriteHost(u), true
}

func (s *S3Store) PresignDownload(key string, ttl time.Duration) (string, bool) {
	if !s.IsConfigured() {
		return "", false
	}
	u, err := s.client.PresignedGetObject(context.Background(), s.bucket, key, ttl, nil)
	if err != nil {
		s.log.Errorw("error generating presigned download URL", "key", key, "error", err)
		return "", false
	}
	return s.rewriteHost(u), true
}

func (s *S3Store) Exists(key string) bool {
	if !s.IsConfigured() {
		return false
	}
	_, err := s.client.StatObject(context.Background(), s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if code := minio.ToErrorResponse(err).Code; code != "NoSuchKey" && code != "NotFound" {
			s.log.Warnw("object existence check failed", "key", key, "error", err)
		}
		return false
	}
	return true
}

func (s *S3Store) Delete(key string) bool {
	if !s.IsConfigured() {
		return false
	}
	if err := s.client.RemoveObject(context.Background(), s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.log.Errorw("error deleting object", "key", key, "error", err)
		return false
	}
	return true
}

// TestConnection lists buckets and checks the configured bucket, timing the round trip
func (s *S3Store) TestConnection() (bool, string, float64) {
	if !s.IsConfigured() {
		return false, "S3 configuration is incomplete", 0
	}

	ctx := context.Background()
	start := time.Now()

	if _, err := s.client.ListBuckets(ctx); err != nil {
		return false, s.classify(err), 0
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return false, s.classify(err), 0
	}
	if !exists {
		return false, fmt.Sprintf("Bucket '%s' does not exist", s.bucket), 0
	}

	latency := float64(time.Since(start).Microseconds()) / 1000.0
	return true, "S3 connection successful", latency
}

// classify maps an S3 error onto a short operator-facing message
func (s *S3Store) classify(err error) string {
	return ClassifyError(err, s.bucket)
}

// ClassifyError turns an S3 error response into a health message
func ClassifyError(err error, bucket string) string {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchBucket":
		return fmt.Sprintf("Bucket '%s' does not exist", bucket)
	case "AccessDenied", "Forbidden":
		return "S3 access forbidden - check credentials"
	case "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return "S3 credentials are invalid"
	case "":
		return fmt.Sprintf("S3 connection failed: %v", err)
	default:
		return fmt.Sprintf("S3 error: %s", resp.Code)
	}
}
