package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

// SpacesArchiver copies generated documents to a DigitalOcean Spaces bucket
type SpacesArchiver struct {
	client     *s3.S3
	bucketName string
	bucketURL  string
	cdnURL     string
	region     string
	prefix     string
	logger     logging.Logger
}

// NewSpacesArchiver creates an archiver from the archive section
func NewSpacesArchiver(cfg *config.Config, logger logging.Logger) (*SpacesArchiver, error) {
	// Spaces exposes one S3 endpoint per region
	endpoint := fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Archive.Region)
	return newSpacesArchiver(cfg, endpoint, false, logger)
}

func newSpacesArchiver(cfg *config.Config, endpoint string, pathStyle bool, logger logging.Logger) (*SpacesArchiver, error) {
	a := cfg.Archive

	if a.AccessKeyID == "" || a.AccessKeySecret == "" {
		return nil, fmt.Errorf("archive bucket credentials are required")
	}
	if a.BucketName == "" {
		return nil, fmt.Errorf("archive bucket name is required")
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(a.AccessKeyID, a.AccessKeySecret, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(a.Region),
		S3ForcePathStyle: aws.Bool(pathStyle),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive session: %w", err)
	}

	logger.Info("Archive bucket configured", map[string]interface{}{
		"endpoint":    endpoint,
		"bucket_name": a.BucketName,
		"region":      a.Region,
	})

	return &SpacesArchiver{
		client:     s3.New(sess),
		bucketName: a.BucketName,
		bucketURL:  a.BucketURL,
		cdnURL:     a.CDNEndpoint,
		region:     a.Region,
		prefix:     strings.Trim(a.Prefix, "/"),
		logger:     logger,
	}, nil
}

// Archive uploads data under the configured prefix and returns its public URL.
// An existing object with the same key is replaced.
func (sa *SpacesArchiver) Archive(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey := strings.TrimLeft(key, "/")
	if sa.prefix != "" {
		objectKey = sa.prefix + "/" + objectKey
	}

	_, err := sa.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(sa.bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("private"),
	})
	if err != nil {
		sa.logger.Error("Failed to archive object", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("failed to archive %s: %w", objectKey, err)
	}

	url := sa.objectURL(objectKey)
	sa.logger.Info("Object archived", map[string]interface{}{
		"object_key": objectKey,
		"size_bytes": len(data),
		"url":        url,
	})
	return url, nil
}

// objectURL prefers the CDN, then the bucket URL, then the regional host
func (sa *SpacesArchiver) objectURL(objectKey string) string {
	if sa.cdnURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(sa.cdnURL, "/"), objectKey)
	}
	if sa.bucketURL != "" {
		base := strings.TrimRight(sa.bucketURL, "/")
		if !strings.HasPrefix(base, "https://") && !strings.HasPrefix(base, "http://") {
			base = "https://" + base
		}
		return fmt.Sprintf("%s/%s", base, objectKey)
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", sa.bucketName, sa.region, objectKey)
}

// IsHealthy checks that the bucket is reachable
func (sa *SpacesArchiver) IsHealthy(ctx context.Context) bool {
	_, err := sa.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(sa.bucketName),
	})
	if err != nil {
		sa.logger.Error("Archive health check failed", map[string]interface{}{
			"bucket_name": sa.bucketName,
			"error":       err.Error(),
		})
		return false
	}
	return true
}
