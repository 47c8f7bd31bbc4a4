// Package storage uploads user-submitted images (avatars, message
// attachments) to an S3-compatible object store.
//
// The client is configured MinIO-style: static credentials plus a base
// endpoint override, so the same code talks to AWS S3 proper or to a local
// MinIO container. Clients submit images as base64 data URLs; this package
// decodes them, stores the bytes, and hands back a public URL that goes into
// the database instead of the payload.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/xid"
)

// Config holds the object-store connection settings.
type Config struct {
	Region        string
	Endpoint      string // base endpoint, e.g. "http://localhost:9000" for MinIO
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string // prefix of the URLs handed to clients
}

// S3 implements image upload against one bucket.
type S3 struct {
	client *s3.Client
	cfg    Config
}

// New builds the S3 client. Call once at startup.
func New(ctx context.Context, cfg Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO serves buckets on the path, not a subdomain.
			o.UsePathStyle = true
		}
	})

	return &S3{client: client, cfg: cfg}, nil
}

// UploadDataURL decodes a base64 data URL, stores the bytes under a fresh
// key, and returns the public URL.
func (s *S3) UploadDataURL(ctx context.Context, dataURL string) (string, error) {
	mediaType, data, err := parseDataURL(dataURL)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("images/%s%s", xid.New(), extensionFor(mediaType))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mediaType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: uploading %s: %w", key, err)
	}

	return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + key, nil
}

// parseDataURL splits a "data:image/png;base64,...." URL into its media type
// and decoded bytes. Only base64-encoded image payloads are accepted.
func parseDataURL(dataURL string) (mediaType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("storage: not a data URL")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("storage: malformed data URL")
	}

	mediaType, found := strings.CutSuffix(meta, ";base64")
	if !found {
		return "", nil, fmt.Errorf("storage: data URL is not base64-encoded")
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", nil, fmt.Errorf("storage: unsupported media type %q", mediaType)
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("storage: decoding payload: %w", err)
	}
	return mediaType, data, nil
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
