package staging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"slicerlink/internal/config"
	"slicerlink/internal/constants"
	apperrors "slicerlink/internal/errors"
	"slicerlink/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// ObjectsAPI is the subset of the S3 client used by the stager.
// The interface makes the stager easier to test with mock implementations.
type ObjectsAPI interface {
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
	DeleteObject(
		ctx context.Context,
		params *s3.DeleteObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// PresignAPI is the subset of the S3 presign client used by the stager.
type PresignAPI interface {
	PresignGetObject(
		ctx context.Context,
		params *s3.GetObjectInput,
		optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
}

// S3Stager stages artifacts as S3 objects shared through presigned GET URLs.
// The presigned URL expires after the configured share TTL; the object itself
// is removed by the deferred Delete (or a bucket lifecycle rule, if one is
// configured on the bucket).
type S3Stager struct {
	objects ObjectsAPI
	presign PresignAPI
	bucket  string
	prefix  string
	ttl     time.Duration
	logger  *slog.Logger
}

// NewS3Stager creates a stager backed by an S3 bucket.
func NewS3Stager(objects ObjectsAPI, presign PresignAPI, cfg *config.Config, log *slog.Logger) *S3Stager {
	return &S3Stager{
		objects: objects,
		presign: presign,
		bucket:  cfg.S3Bucket,
		prefix:  cfg.S3Prefix,
		ttl:     cfg.ShareTTL,
		logger:  log,
	}
}

// objectKey builds the bucket key for one staged artifact. The original
// filename is kept as the last path segment so the presigned URL ends with
// it; slicers key off the extension in the URL path.
func (s *S3Stager) objectKey(fileID, filename string) string {
	return path.Join(s.prefix, fileID, filename)
}

// Upload puts the artifact into the bucket and presigns a GET URL for it.
// The returned FileID is the full object key, ready for Delete.
func (s *S3Stager) Upload(ctx context.Context, artifact Artifact) (*Share, error) {
	reqLogger := logger.DeriveRequestLogger(ctx, s.logger)

	key := s.objectKey(uuid.NewString(), artifact.Filename)
	contentType := artifact.ContentType
	if contentType == "" {
		contentType = constants.ContentTypeOctetStream
	}

	logArgs := []any{
		"operation", "S3.PutObject",
		"bucket", s.bucket,
		"key", key,
		"bodySize", len(artifact.Data),
	}
	logArgs = append(logArgs, logger.GetDeadlineInfo(ctx)...)
	reqLogger.Debug("calling external service", "context", logger.SliceToMap(logArgs))

	_, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(artifact.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, apperrors.ErrStagingFailed("Staging upload failed",
			fmt.Errorf("failed to upload to S3: %w", err))
	}

	ttl := s.ttl
	if ttl <= 0 {
		ttl = constants.DefaultShareTTL
	}

	presigned, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return nil, apperrors.ErrStagingFailed("Staging upload failed",
			fmt.Errorf("failed to presign download URL: %w", err))
	}

	return &Share{
		DownloadURL: presigned.URL,
		FileID:      key,
		ExpiresAt:   time.Now().UTC().Add(ttl),
	}, nil
}

// Delete removes the staged object. A NoSuchKey error means the object is
// already gone and counts as success.
func (s *S3Stager) Delete(ctx context.Context, fileID string) error {
	reqLogger := logger.DeriveRequestLogger(ctx, s.logger)

	logArgs := []any{
		"operation", "S3.DeleteObject",
		"bucket", s.bucket,
		"key", fileID,
	}
	logArgs = append(logArgs, logger.GetDeadlineInfo(ctx)...)
	reqLogger.Debug("calling external service", "context", logger.SliceToMap(logArgs))

	_, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			reqLogger.Debug("staged object already deleted", "key", fileID)
			return nil
		}
		return fmt.Errorf("failed to delete staged object: %w", err)
	}

	return nil
}
