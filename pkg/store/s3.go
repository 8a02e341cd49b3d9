package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/config"
	errs "github.com/matzehuels/skillcat/pkg/errors"
)

// objectAPI is the subset of *minio.Client the mirror uses.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

var _ objectAPI = (*minio.Client)(nil)

// S3Mirror uploads the index and detail documents to an S3-compatible
// bucket using the same names as the local output directory, below a key
// prefix. Detail objects for slugs no longer published are removed.
type S3Mirror struct {
	client    objectAPI
	bucket    string
	region    string
	prefix    string
	index     string
	detailDir string

	initOnce sync.Once
	initErr  error
}

// NewS3Mirror connects to the bucket described by cfg.
func NewS3Mirror(cfg config.S3Config, out config.OutputConfig) (*S3Mirror, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" || cfg.Bucket == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "s3 endpoint and bucket are required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "s3 access key and secret key are required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "init s3 client")
	}
	return newS3Mirror(client, cfg.Bucket, region, cfg.Prefix, out), nil
}

func newS3Mirror(client objectAPI, bucket, region, prefix string, out config.OutputConfig) *S3Mirror {
	return &S3Mirror{
		client:    client,
		bucket:    bucket,
		region:    region,
		prefix:    strings.Trim(prefix, "/"),
		index:     out.Index,
		detailDir: out.DetailDir,
	}
}

// Name implements [Mirror].
func (m *S3Mirror) Name() string { return "s3://" + path.Join(m.bucket, m.prefix) }

func (m *S3Mirror) ensureBucket(ctx context.Context) error {
	m.initOnce.Do(func() {
		exists, err := m.client.BucketExists(ctx, m.bucket)
		if err != nil {
			m.initErr = err
			return
		}
		if !exists {
			m.initErr = m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region})
		}
	})
	return m.initErr
}

func (m *S3Mirror) key(name string) string {
	if m.prefix == "" {
		return name
	}
	return m.prefix + "/" + name
}

func (m *S3Mirror) detailKey(slug string) string {
	return m.key(path.Join(m.detailDir, slug+detailExt))
}

// Publish implements [Mirror]. The index is uploaded last so a reader
// following it never finds a missing detail object.
func (m *S3Mirror) Publish(ctx context.Context, snap *catalog.Snapshot, details []*catalog.Detail) error {
	if err := m.ensureBucket(ctx); err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "ensure bucket %s", m.bucket)
	}

	keep := make(map[string]bool, len(details))
	for _, d := range details {
		k := m.detailKey(d.Slug)
		if err := m.put(ctx, k, d); err != nil {
			return err
		}
		keep[k] = true
	}
	if err := m.put(ctx, m.key(m.index), snap); err != nil {
		return err
	}
	return m.prune(ctx, keep)
}

func (m *S3Mirror) put(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode %s", key)
	}
	_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "upload %s", key)
	}
	return nil
}

func (m *S3Mirror) prune(ctx context.Context, keep map[string]bool) error {
	prefix := m.key(m.detailDir) + "/"
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return errs.Wrap(errs.ErrCodeNetwork, obj.Err, "list %s", prefix)
		}
		if obj.Key == "" || keep[obj.Key] || !strings.HasSuffix(obj.Key, detailExt) {
			continue
		}
		if err := m.client.RemoveObject(ctx, m.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return errs.Wrap(errs.ErrCodeNetwork, err, "remove %s", obj.Key)
		}
	}
	return nil
}

// Close implements [Mirror].
func (m *S3Mirror) Close(context.Context) error { return nil }
