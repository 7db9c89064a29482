package backup

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // MinIO, LocalStack
	Prefix   string
}

type S3Target struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Target(ctx context.Context, cfg S3Config) (*S3Target, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Target{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3Target) Put(ctx context.Context, name string, data []byte) (string, error) {
	if !validName(name) {
		return "", errors.Errorf("invalid backup name %q", name)
	}
	key := s.prefix + name
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", errors.Wrap(err, "s3 put")
	}
	return "s3://" + s.bucket + "/" + key, nil
}

func (s *S3Target) Get(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, errors.Errorf("invalid backup name %q", name)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + name),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "s3 get %s", name)
	}
	defer func() { _ = out.Body.Close() }()
	return io.ReadAll(out.Body)
}
