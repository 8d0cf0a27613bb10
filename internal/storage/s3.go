package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"strideworks/plan-engine/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const snapshotKeyPrefix = "ruleset-snapshots/"

// s3Archiver implements the SnapshotArchiver interface using an
// S3-compatible backend.
type s3Archiver struct {
	client     *s3.Client
	bucketName string
}

// NewS3Archiver creates a new S3-backed snapshot archiver.
func NewS3Archiver(cfg config.S3Config) (SnapshotArchiver, error) {
	// Custom resolver for S3-compatible endpoints (like MinIO, DigitalOcean Spaces)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fall back to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		log.Printf("ERROR: Failed to load AWS SDK config for S3: %v", err)
		return nil, err
	}

	// Force path-style addressing required by most S3-compatible services (like MinIO)
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	log.Printf("S3 snapshot archiver initialized for endpoint: %s, bucket: %s", cfg.Endpoint, cfg.BucketName)

	return &s3Archiver{
		client:     s3Client,
		bucketName: cfg.BucketName,
	}, nil
}

// ArchiveSnapshot writes one ruleset revision under a timestamped,
// collision-free key and returns that key.
func (s *s3Archiver) ArchiveSnapshot(ctx context.Context, version string, payload []byte) (string, error) {
	key := snapshotKey(version, time.Now().UTC())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.Printf("ERROR: Failed to archive ruleset snapshot '%s' to bucket '%s': %v", key, s.bucketName, err)
		return "", err
	}

	log.Printf("INFO: Archived ruleset snapshot '%s' to bucket '%s'", key, s.bucketName)
	return key, nil
}

func snapshotKey(version string, now time.Time) string {
	label := strings.TrimSpace(version)
	if label == "" {
		label = "unversioned"
	}
	label = strings.ReplaceAll(label, "/", "-")
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s%s-%s-%s.json", snapshotKeyPrefix, now.Format("20060102T150405Z"), label, suffix)
}
