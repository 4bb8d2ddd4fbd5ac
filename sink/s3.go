package sink

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Uploader is the subset of manager.Uploader used by S3Sink.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput,
		opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink uploads artifacts to s3://Bucket/Prefix/name.
type S3Sink struct {
	uploader Uploader
	bucket   string
	prefix   string
	logger   zerolog.Logger
}

// NewS3Sink returns an S3Sink using the default AWS configuration chain
// (environment, shared config, instance role).
func NewS3Sink(ctx context.Context, bucket, prefix string, logger zerolog.Logger) (*S3Sink, error) {
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}
	uploader := manager.NewUploader(s3.NewFromConfig(cfg))
	return NewS3SinkWithUploader(uploader, bucket, prefix, logger), nil
}

// NewS3SinkWithUploader returns an S3Sink using uploader.
func NewS3SinkWithUploader(uploader Uploader, bucket, prefix string, logger zerolog.Logger) *S3Sink {
	return &S3Sink{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		logger:   logger,
	}
}

// Key returns the object key name is stored under.
func (s *S3Sink) Key(name string) string {
	return path.Join(s.prefix, name)
}

func (s *S3Sink) Store(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	key := s.Key(name)
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "uploading s3://%s/%s", s.bucket, key)
	}
	s.logger.Info().Str("location", out.Location).Msg("artifact uploaded")
	return nil
}
