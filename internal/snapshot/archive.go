package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the archiver uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config locates the archive bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether an archive bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// NewS3Client builds an S3 client for the configured endpoint. Static
// credentials are used when provided, otherwise the default chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Archiver writes snapshots to object storage.
type Archiver struct {
	client ObjectPutter
	bucket string
}

// NewArchiver constructs an archiver.
func NewArchiver(client ObjectPutter, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket}
}

// ArchiveKey returns the object key of a snapshot.
func ArchiveKey(snap Snapshot) string {
	t := snap.CreatedAt.UTC()
	return fmt.Sprintf("ledger/%04d/%02d/snapshot-%d-%s.json", t.Year(), int(t.Month()), snap.Version, t.Format("20060102T150405Z"))
}

// Archive uploads snap and returns its key.
func (a *Archiver) Archive(ctx context.Context, snap Snapshot) (string, error) {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	key := ArchiveKey(snap)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(snap.Document),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"ledger-version": fmt.Sprint(snap.Version),
		},
	})
	if err != nil {
		return "", fmt.Errorf("snapshot: archive %s: %w", key, err)
	}
	return key, nil
}
