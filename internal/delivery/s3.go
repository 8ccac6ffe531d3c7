package delivery

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dln-law/payments-portal/pkg/utils"
)

// PutObjectAPI is the subset of *s3.Client used by S3.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Region        string
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

// S3 uploads exports to a bucket. Keys are unique per upload.
type S3 struct {
	Client        PutObjectAPI
	Bucket        string
	Prefix        string
	PublicBaseURL string

	now func() time.Time
}

// NewS3 loads AWS credentials from the default chain.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3WithClient(s3.NewFromConfig(awsCfg), cfg), nil
}

func NewS3WithClient(client PutObjectAPI, cfg S3Config) *S3 {
	return &S3{
		Client:        client,
		Bucket:        cfg.Bucket,
		Prefix:        strings.Trim(cfg.Prefix, "/"),
		PublicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:           time.Now,
	}
}

func (s *S3) Put(ctx context.Context, name, contentType string, body []byte) (Result, error) {
	key := utils.GenerateObjectKey(s.Prefix, name, s.now())

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.Bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to upload export: %w", err)
	}

	location := "s3://" + s.Bucket + "/" + key
	if s.PublicBaseURL != "" {
		location = s.PublicBaseURL + "/" + key
	}
	return Result{Location: location, Key: key}, nil
}

func (s *S3) String() string { return fmt.Sprintf("s3(%s/%s)", s.Bucket, s.Prefix) }
