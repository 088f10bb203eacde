package fallback

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// S3API is the subset of the S3 client used by S3Mirror.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror copies the fallback file to a bucket after each write so leads
// captured on an ephemeral disk survive a restart.
type S3Mirror struct {
	client S3API
	bucket string
	key    string
	logger *logging.Logger
}

// NewS3Mirror returns nil when bucket or client are missing.
func NewS3Mirror(client S3API, bucket, key string, logger *logging.Logger) *S3Mirror {
	if client == nil || bucket == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Mirror{client: client, bucket: bucket, key: key, logger: logger}
}

// Upload puts the file at path to the configured object key.
func (m *S3Mirror) Upload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fallback: read %s: %w", path, err)
	}
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("fallback: s3 put %s: %w", m.key, err)
	}
	return nil
}

// MirroredStore writes locally, then mirrors to S3. A failed upload is logged
// and never fails the write; the local file is the record of truth.
type MirroredStore struct {
	local  *CSVStore
	mirror *S3Mirror
	logger *logging.Logger
}

// NewMirroredStore wraps local with mirror. A nil mirror disables uploads.
func NewMirroredStore(local *CSVStore, mirror *S3Mirror, logger *logging.Logger) *MirroredStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &MirroredStore{local: local, mirror: mirror, logger: logger}
}

// Append implements the fallback store contract.
func (s *MirroredStore) Append(ctx context.Context, rec leads.Record) error {
	if err := s.local.Append(ctx, rec); err != nil {
		return err
	}
	if s.mirror == nil {
		return nil
	}
	if err := s.mirror.Upload(ctx, s.local.Path()); err != nil {
		s.logger.Warn("fallback mirror upload failed", "error", err, "bucket", s.mirror.bucket)
		return nil
	}
	s.logger.Debug("fallback file mirrored", "bucket", s.mirror.bucket, "key", s.mirror.key)
	return nil
}
