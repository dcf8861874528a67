package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"gatehouse/internal/logger"
)

// RemoteConfig holds the connection settings for an S3-compatible object
// store.
type RemoteConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Folder    string
	UseSSL    bool
}

// RemoteBackend stores objects in an S3-compatible object store. Uploads
// stream directly without local buffering; the store aborts incomplete
// multipart uploads itself, so a failed Store leaves nothing visible.
type RemoteBackend struct {
	client *minio.Client
	cfg    RemoteConfig
	logger *logger.Logger
}

// NewRemoteBackend connects to the object store, creates the bucket if it
// does not exist, and applies a public-read policy so stored objects are
// directly downloadable.
func NewRemoteBackend(ctx context.Context, cfg RemoteConfig, log *logger.Logger) (*RemoteBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	b := &RemoteBackend{client: client, cfg: cfg, logger: log}
	// Best effort. Some deployments manage bucket policy externally.
	if err := b.applyPublicReadPolicy(ctx); err != nil {
		log.Warn("Storage: could not apply public-read policy to bucket %s: %v", cfg.Bucket, err)
	}
	return b, nil
}

func (b *RemoteBackend) applyPublicReadPolicy(ctx context.Context) error {
	prefix := b.cfg.Folder
	if prefix != "" {
		prefix += "/"
	}
	policy := fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/%s*"]
  }]
}`, b.cfg.Bucket, prefix)
	return b.client.SetBucketPolicy(ctx, b.cfg.Bucket, policy)
}

// objectName maps a storage key to its object name inside the bucket.
func (b *RemoteBackend) objectName(key string) string {
	if b.cfg.Folder == "" {
		return key
	}
	return path.Join(b.cfg.Folder, key)
}

func (b *RemoteBackend) Store(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	// Size -1 streams via multipart upload. The client aborts the
	// multipart upload on error, so nothing partial stays behind.
	_, err := b.client.PutObject(ctx, b.cfg.Bucket, b.objectName(key), r, -1,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return b.publicURL(key), nil
}

func (b *RemoteBackend) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	name := b.objectName(key)
	// RemoveObject succeeds on missing keys, so existence is checked
	// first to honor the not-found contract.
	if _, err := b.client.StatObject(ctx, b.cfg.Bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrNotFound
		}
		return fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	if err := b.client.RemoveObject(ctx, b.cfg.Bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (b *RemoteBackend) List(ctx context.Context) ([]ObjectInfo, error) {
	prefix := b.cfg.Folder
	if prefix != "" {
		prefix += "/"
	}

	var objects []ObjectInfo
	for obj := range b.client.ListObjects(ctx, b.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		key := strings.TrimPrefix(obj.Key, prefix)
		if ValidateKey(key) != nil {
			// Foreign object outside the bucket/filename layout.
			continue
		}
		objects = append(objects, ObjectInfo{Key: key, Size: obj.Size})
	}
	return objects, nil
}

func (b *RemoteBackend) publicURL(key string) string {
	scheme := "http"
	if b.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, b.cfg.Endpoint, b.cfg.Bucket, b.objectName(key))
}
