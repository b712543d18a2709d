package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/williamokano/r2_uploader/pkg/storage"
)

// Store uploads objects to an S3-compatible endpoint with SigV4-signed
// path-style requests: PUT <endpoint>/<bucket>/<key>.
type Store struct {
	name   string
	client *s3.Client
	bucket string
}

var _ storage.ObjectStore = (*Store)(nil)

// New creates a new S3 store. No request is made until the first Put.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	name := "s3://" + cfg.Bucket

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.GetRegion()),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		),
		config.WithRetryer(func() aws.Retryer {
			return aws.NopRetryer{}
		}),
	)
	if err != nil {
		return nil, storage.WrapError(name, "init", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Store{
		name:   name,
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func (s *Store) Name() string { return s.name }

// Put uploads body under key with a single PutObject call
func (s *Store) Put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(storage.ContentType(contentType)),
	})
	if err != nil {
		if class := classifyError(err); class != nil {
			err = fmt.Errorf("%w: %w", class, err)
		}
		return storage.WrapError(s.name, "upload", fmt.Errorf("%w: %w", storage.ErrUploadFailed, err))
	}

	return nil
}

// classifyError maps SDK failures onto the storage sentinels
func classifyError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken":
			return storage.ErrAuthFailed
		case "AccessDenied", "AllAccessDisabled":
			return storage.ErrPermissionDenied
		}
		return nil
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return storage.ErrConnFailed
	}

	return nil
}
