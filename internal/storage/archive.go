package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/jeevithdev/spotq/internal/config"
)

var ErrNotConfigured = errors.New("backup storage not configured")

// Archive stores gzip JSON snapshots of record collections in an
// S3-compatible bucket.
type Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArchive builds an S3-compatible client for the backup config.
// Returns nil, nil if cfg is nil or the bucket is empty.
func NewArchive(cfg *config.StorageConfig) (*Archive, error) {
	if cfg == nil || cfg.Backup == nil || cfg.Backup.Bucket == "" {
		return nil, nil
	}
	b := cfg.Backup
	region := b.Region
	if region == "" {
		region = "us-east-1"
	}
	prefix := strings.Trim(b.Prefix, "/")
	if prefix == "" {
		prefix = "backups"
	}
	awsCfg := aws.Config{Region: region}
	if b.AccessKey != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(b.AccessKey, b.SecretKey, ""))
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if b.Endpoint != "" {
			o.BaseEndpoint = aws.String(b.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &Archive{client: client, bucket: b.Bucket, prefix: prefix}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	if a == nil {
		return ErrNotConfigured
	}
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}
	_, createErr := a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if createErr != nil {
		var apiErr smithy.APIError
		if errors.As(createErr, &apiErr) {
			switch apiErr.ErrorCode() {
			case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
				return nil
			}
		}
		return createErr
	}
	return nil
}

// KeyFor returns the object key of a new snapshot of collection taken at now,
// e.g. backups/melting_logs/2024/02/17/<uuid>.json.gz.
func KeyFor(prefix, collection string, now time.Time) string {
	return path.Join(prefix, collection, now.UTC().Format("2006/01/02"), uuid.NewString()+".json.gz")
}

// PutSnapshot uploads docs as one gzip JSON array and returns its key.
func (a *Archive) PutSnapshot(ctx context.Context, collection string, docs []json.RawMessage) (string, error) {
	if a == nil {
		return "", ErrNotConfigured
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("json: %w", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("gzip: %w", err)
	}

	key := KeyFor(a.prefix, collection, time.Now())
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// ObjectInfo describes a stored snapshot.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// List returns snapshots under the archive prefix, optionally narrowed to
// one collection.
func (a *Archive) List(ctx context.Context, collection string) ([]ObjectInfo, error) {
	if a == nil {
		return nil, ErrNotConfigured
	}
	prefix := a.prefix + "/"
	if collection != "" {
		prefix += collection + "/"
	}
	result := []ObjectInfo{}
	p := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, o := range out.Contents {
			info := ObjectInfo{Key: aws.ToString(o.Key), Size: aws.ToInt64(o.Size)}
			if o.LastModified != nil {
				info.LastModified = *o.LastModified
			}
			result = append(result, info)
		}
	}
	return result, nil
}

// GetSnapshot downloads a snapshot by key and returns its documents.
func (a *Archive) GetSnapshot(ctx context.Context, key string) ([]json.RawMessage, error) {
	if a == nil {
		return nil, ErrNotConfigured
	}
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return decodeSnapshot(out.Body)
}

func decodeSnapshot(r io.Reader) ([]json.RawMessage, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()
	var docs []json.RawMessage
	if err := json.NewDecoder(zr).Decode(&docs); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return docs, nil
}
