// Package aws archives dashboard snapshots in S3.
package aws

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog/log"
)

const presignTTL = 15 * time.Minute

type Client struct {
	session  *session.Session
	bucket   string
	region   string
	uploader *s3manager.Uploader
	s3Client *s3.S3
}

// Snapshot locates an archived dashboard.
type Snapshot struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

type Option func(*aws.Config)

// WithEndpoint targets an S3 compatible endpoint using path style
// addressing.
func WithEndpoint(endpoint string) Option {
	return func(cfg *aws.Config) {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
}

// WithStaticCredentials bypasses the default credential chain.
func WithStaticCredentials(id, secret string) Option {
	return func(cfg *aws.Config) {
		cfg.Credentials = credentials.NewStaticCredentials(id, secret, "")
	}
}

func NewClient(region, bucket string, opts ...Option) (*Client, error) {
	cfg := &aws.Config{
		Region: aws.String(region),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	log.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("AWS session created successfully")

	return &Client{
		session:  sess,
		bucket:   bucket,
		region:   region,
		uploader: s3manager.NewUploader(sess),
		s3Client: s3.New(sess),
	}, nil
}

// UploadDashboard stores a rendered dashboard under a key derived from
// generatedAt and returns a short lived download URL.
func (c *Client) UploadDashboard(ctx context.Context, body []byte, generatedAt time.Time) (Snapshot, error) {
	key := fmt.Sprintf("dashboards/%s.json", generatedAt.UTC().Format("2006/01/02/150405.000000000"))

	log.Info().
		Str("bucket", c.bucket).
		Str("key", key).
		Int("content_size", len(body)).
		Msg("Starting S3 upload")

	result, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("bucket", c.bucket).
			Str("region", c.region).
			Str("key", key).
			Msg("S3 upload failed")
		return Snapshot{}, fmt.Errorf("failed to upload dashboard to S3: %w", err)
	}

	snapshot := Snapshot{Bucket: c.bucket, Key: key, URL: result.Location}

	req, _ := c.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if signed, err := req.Presign(presignTTL); err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("Failed to presign dashboard URL, returning object location")
	} else {
		snapshot.URL = signed
	}

	log.Info().
		Str("s3_location", result.Location).
		Str("key", key).
		Msg("Dashboard uploaded to S3 successfully")

	return snapshot, nil
}
