// Package s3 implements the object store port against any S3-compatible
// backend. File bytes never pass through the API server; clients upload
// and download directly with presigned URLs.
package s3

import (
	"context"
	"fmt"

	appconfig "pyra-workspace/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore implements ports.ObjectStore.
type ObjectStore struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	cfg           appconfig.StorageConfig
}

// NewObjectStore builds the S3 client and its presigner from config.
func NewObjectStore(ctx context.Context, cfg appconfig.StorageConfig) (*ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ObjectStore{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		cfg:           cfg,
	}, nil
}

// PresignUpload returns a PUT URL the browser uploads the file body to.
func (o *ObjectStore) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := o.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(o.cfg.PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload for %q: %w", key, err)
	}
	return req.URL, nil
}

// PresignDownload returns a time-limited GET URL for an object.
func (o *ObjectStore) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := o.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(o.cfg.PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign download for %q: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes an object from the bucket.
func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}
