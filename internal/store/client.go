// Package store wraps the S3 API consumed by the transfer drivers:
// multipart uploads, object reads and listings against a single bucket.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/ravenoss/rot/internal/config"
)

// Part identifies one completed part of a multipart upload. The store hands
// back an ETag per uploaded part and requires the full ordered list, part
// numbers ascending from 1, to finalize the upload.
type Part struct {
	Number int64
	ETag   string
}

// Object describes one stored object as reported by List.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Client is a handle on one bucket of an S3 compatible object store.
//
// The underlying SDK service client is safe for concurrent use, so a single
// Client may serve several transfers at once. Methods keep no state between
// calls; each transfer owns its upload ID and part sequence.
type Client struct {
	api    s3iface.S3API
	bucket string
}

// New dials the object store described by the validated configuration:
// static credentials, fixed region, custom endpoint and path-style
// addressing.
func New(cfg *config.Config) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(cfg.EndpointURL),
		S3ForcePathStyle: aws.Bool(true),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("creating store session: %w", err)
	}

	return &Client{api: s3.New(sess), bucket: cfg.Bucket}, nil
}

// NewWithAPI wraps an existing service client. Tests substitute fakes here.
func NewWithAPI(api s3iface.S3API, bucket string) *Client {
	return &Client{api: api, bucket: bucket}
}

// Begin starts a multipart upload for key and returns its upload ID. A
// non-nil expires is forwarded as the object expiry timestamp.
func (c *Client) Begin(ctx context.Context, key string, expires *time.Time) (string, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if expires != nil {
		input.Expires = expires
	}

	out, err := c.api.CreateMultipartUploadWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("creating multipart upload for %q: %w", key, err)
	}

	return aws.StringValue(out.UploadId), nil
}

// UploadPart sends one numbered part and returns the ETag the store assigned
// to it. Part numbers start at 1.
func (c *Client) UploadPart(ctx context.Context, key, uploadID string, number int64, body []byte) (string, error) {
	out, err := c.api.UploadPartWithContext(ctx, &s3.UploadPartInput{
		Body:       bytes.NewReader(body),
		Bucket:     aws.String(c.bucket),
		Key:        aws.String(key),
		PartNumber: aws.Int64(number),
		UploadId:   aws.String(uploadID),
	})
	if err != nil {
		return "", fmt.Errorf("uploading part %d of %q: %w", number, key, err)
	}

	return aws.StringValue(out.ETag), nil
}

// Complete finalizes the multipart upload with the given parts, submitted
// verbatim in the order provided.
func (c *Client) Complete(ctx context.Context, key, uploadID string, parts []Part) error {
	completed := make([]*s3.CompletedPart, 0, len(parts))
	for _, part := range parts {
		completed = append(completed, &s3.CompletedPart{
			ETag:       aws.String(part.ETag),
			PartNumber: aws.Int64(part.Number),
		})
	}

	_, err := c.api.CompleteMultipartUploadWithContext(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &s3.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		return fmt.Errorf("completing multipart upload for %q: %w", key, err)
	}

	return nil
}

// Abort discards a partial multipart upload so the store does not accumulate
// orphaned parts.
func (c *Client) Abort(ctx context.Context, key, uploadID string) error {
	_, err := c.api.AbortMultipartUploadWithContext(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return fmt.Errorf("aborting multipart upload for %q: %w", key, err)
	}

	return nil
}

// Get opens a stored object for reading and reports its declared content
// length. The caller owns the returned body.
func (c *Client) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	out, err := c.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("getting %q: %w", key, err)
	}

	return out.Body, aws.Int64Value(out.ContentLength), nil
}

// List returns up to max objects under prefix and whether the listing was
// truncated. A max of 0 leaves the page size to the store.
func (c *Client) List(ctx context.Context, prefix string, max int64) ([]Object, bool, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if max > 0 {
		input.MaxKeys = aws.Int64(max)
	}

	out, err := c.api.ListObjectsV2WithContext(ctx, input)
	if err != nil {
		return nil, false, fmt.Errorf("listing %q: %w", prefix, err)
	}

	objects := make([]Object, 0, len(out.Contents))
	for _, content := range out.Contents {
		objects = append(objects, Object{
			Key:          aws.StringValue(content.Key),
			Size:         aws.Int64Value(content.Size),
			LastModified: aws.TimeValue(content.LastModified),
		})
	}

	return objects, aws.BoolValue(out.IsTruncated), nil
}
