package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"

	"github.com/billforge/billforge/internal/config"
	ierr "github.com/billforge/billforge/internal/errors"
)

const presignExpiryDuration = 30 * time.Minute

var validContentTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
}

// Service stores module logos. Objects are keyed by the owning module
// price ID so re-uploads replace the previous logo.
type Service interface {
	UploadLogo(ctx context.Context, moduleID string, contentType string, data []byte) (string, error)
	GetPresignedURL(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

type s3Service struct {
	client *s3.Client
	config *config.S3Config
}

func NewService(cfg *config.Configuration) (Service, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.S3.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load aws config").
			Mark(ierr.ErrSystem)
	}

	return &s3Service{
		config: &cfg.S3,
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

func (s *s3Service) objectKey(moduleID string, ext string) string {
	if s.config.KeyPrefix != "" {
		return fmt.Sprintf("%s/%s%s", s.config.KeyPrefix, moduleID, ext)
	}
	return moduleID + ext
}

func (s *s3Service) UploadLogo(ctx context.Context, moduleID string, contentType string, data []byte) (string, error) {
	ext, ok := validContentTypes[contentType]
	if !ok {
		return "", ierr.NewErrorf("unsupported logo content type: %s", contentType).
			WithHint("Logo must be a png, jpeg, or svg image").
			Mark(ierr.ErrValidation)
	}

	key := s.objectKey(moduleID, ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to upload logo").
			WithReportableDetails(map[string]any{
				"bucket": s.config.Bucket,
				"key":    key,
			}).
			Mark(ierr.ErrSystem)
	}

	return key, nil
}

func (s *s3Service) GetPresignedURL(ctx context.Context, key string) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	result, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiryDuration))
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to presign logo url").
			Mark(ierr.ErrSystem)
	}
	return result.URL, nil
}

func (s *s3Service) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHint("Failed to check logo object").
			Mark(ierr.ErrSystem)
	}
	return true, nil
}
