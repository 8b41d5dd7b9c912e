package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"zimage/internal/pkg/errs"
	"zimage/internal/pkg/logx"
)

// ServiceConfig holds the configuration required to connect to the bucket.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ObjectInfo is the subset of object metadata the exporter cares about.
type ObjectInfo struct {
	Location    string
	ContentType string
	Size        int64
}

// S3Sink uploads exports to an S3-compatible bucket.
type S3Sink struct {
	cfg      ServiceConfig
	client   *s3.Client
	uploader *manager.Uploader
	logger   zerolog.Logger
}

// NewS3Sink initializes the S3 client using a custom configuration that supports S3-compatible endpoints.
func NewS3Sink(ctx context.Context, cfg ServiceConfig) (*S3Sink, error) {
	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, fmt.Errorf("failed to initialize S3 client configuration: %w", err))
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &S3Sink{
		cfg:      cfg,
		client:   client,
		uploader: manager.NewUploader(client),
		logger:   logx.Component("s3").With().Str("bucket", cfg.S3BucketName).Logger(),
	}, nil
}

// Name implements Sink.
func (s *S3Sink) Name() string { return "s3" }

// Put uploads data under key name and returns its s3:// location.
func (s *S3Sink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.S3BucketName),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", name).Msg("S3 upload failed")
		return "", errs.Wrap(errs.ErrStorage, err)
	}

	return s.location(name), nil
}

func (s *S3Sink) location(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.cfg.S3BucketName, key)
}

// Stat returns the object's metadata, or ok=false when it does not exist.
func (s *S3Sink) Stat(ctx context.Context, key string) (ObjectInfo, bool, error) {
	res, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.S3BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return ObjectInfo{}, false, nil
		}
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to get S3 object metadata")
		return ObjectInfo{}, false, errs.Wrap(errs.ErrStorage, err)
	}

	info := ObjectInfo{Location: s.location(key)}
	if res.ContentType != nil {
		info.ContentType = *res.ContentType
	}
	if res.ContentLength != nil {
		info.Size = *res.ContentLength
	}
	return info, true, nil
}

// PresignDownload generates a presigned URL for downloading the specified key.
func (s *S3Sink) PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	res, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.S3BucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", errs.Wrap(errs.ErrStorage, err)
	}

	return res.URL, nil
}
