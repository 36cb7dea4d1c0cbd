// Package s3storage is a shared.Storage that keeps one object per key in an S3
// bucket.
package s3storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/shared"
)

// API is the subset of *s3.Client the storage uses.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

var _ shared.Storage = (*Storage)(nil)

type Storage struct {
	client   API
	bucket   string
	prefix   string
	interval time.Duration
	logger   *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func New(client API, bucket, prefix string, pollInterval time.Duration, logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Storage{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		interval: pollInterval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// NewClient builds an S3 client from static settings. Credentials are taken from
// the standard AWS environment variables when set, otherwise requests are anonymous.
func NewClient(region, endpoint, accessKeyID, secretAccessKey string) *s3.Client {
	opts := s3.Options{
		Region:      region,
		Credentials: aws.AnonymousCredentials{},
	}
	if accessKeyID != "" {
		opts.Credentials = aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: accessKeyID, SecretAccessKey: secretAccessKey, Source: "static"}, nil
		})
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func (s *Storage) objectKey(key string) *string {
	return aws.String(s.prefix + key)
}

func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.objectKey(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         s.objectKey(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}

func (s *Storage) etag(ctx context.Context, key string) (string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.objectKey(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return aws.ToString(out.ETag), nil
}

// Subscribe polls the object's ETag.
func (s *Storage) Subscribe(key string, fn func()) func() {
	ctx := context.Background()
	last, err := s.etag(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read object etag", zap.String("key", key), zap.Error(err))
	}
	done := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-done:
				return
			case <-ticker.C:
				tag, err := s.etag(ctx, key)
				if err != nil {
					s.logger.Debug("failed to poll object etag", zap.String("key", key), zap.Error(err))
					continue
				}
				if tag != last {
					last = tag
					fn()
				}
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

func (s *Storage) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
