// Package storage publishes rendered heatmaps to S3 next to a JSON manifest.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

// S3API is the part of the S3 client the publisher uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Publisher uploads images and manifests under a key prefix
type Publisher struct {
	client S3API
	bucket string
	prefix string
}

// NewPublisher creates a publisher on an existing client
func NewPublisher(client S3API, bucket, prefix string) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// NewPublisherFromConfig creates a publisher using the default AWS configuration
func NewPublisherFromConfig(ctx context.Context, region, bucket, prefix string) (*Publisher, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewPublisher(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// ObjectKey joins the publisher prefix and key
func (p *Publisher) ObjectKey(key string) string {
	if p.prefix == "" {
		return strings.TrimPrefix(key, "/")
	}
	return path.Join(p.prefix, key)
}

// ManifestKey is the key of the manifest stored next to an image
func ManifestKey(imageKey string) string {
	return strings.TrimSuffix(imageKey, path.Ext(imageKey)) + ".json"
}

// Publish uploads the PNG image and its manifest. The returned manifest
// carries the final object key.
func (p *Publisher) Publish(ctx context.Context, key string, image []byte, manifest Manifest) (*Manifest, error) {
	if p.bucket == "" {
		return nil, fmt.Errorf("no bucket configured")
	}
	objectKey := p.ObjectKey(key)
	manifest.Key = objectKey
	if manifest.Checksum == "" {
		manifest.Checksum = Checksum(image)
		manifest.Size = len(image)
	}

	data, err := manifest.Marshal()
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.put(gctx, objectKey, "image/png", image)
	})
	g.Go(func() error {
		return p.put(gctx, ManifestKey(objectKey), "application/json", data)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("Published s3://%s/%s (%d bytes)", p.bucket, objectKey, len(image))
	return &manifest, nil
}

func (p *Publisher) put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", p.bucket, key, err)
	}
	return nil
}

// Manifest downloads the manifest stored next to an image key
func (p *Publisher) Manifest(ctx context.Context, imageKey string) (*Manifest, error) {
	key := ManifestKey(imageKey)
	result, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", p.bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", p.bucket, key, err)
	}
	return ParseManifest(data)
}
