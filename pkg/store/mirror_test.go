package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/config"
	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/snapshot"
)

type fakeBucket struct {
	exists  bool
	made    int
	objects map[string][]byte
	order   []string
	putErr  error
}

func newFakeBucket() *fakeBucket { return &fakeBucket{objects: map[string][]byte{}} }

func (f *fakeBucket) BucketExists(context.Context, string) (bool, error) { return f.exists, nil }

func (f *fakeBucket) MakeBucket(context.Context, string, minio.MakeBucketOptions) error {
	f.made++
	f.exists = true
	return nil
}

func (f *fakeBucket) PutObject(_ context.Context, _, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if int64(len(data)) != size || opts.ContentType != "application/json" {
		return minio.UploadInfo{}, errors.New("bad upload")
	}
	f.objects[object] = data
	f.order = append(f.order, object)
	return minio.UploadInfo{Key: object, Size: size}, nil
}

func (f *fakeBucket) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	var keys []string
	for k := range f.objects {
		if len(k) >= len(opts.Prefix) && k[:len(opts.Prefix)] == opts.Prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func (f *fakeBucket) RemoveObject(_ context.Context, _, object string, _ minio.RemoveObjectOptions) error {
	delete(f.objects, object)
	return nil
}

var testLayout = config.OutputConfig{Index: "skills-index.json", DetailDir: "skills"}

func testSnapshot() (*catalog.Snapshot, []*catalog.Detail) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := testEntries()
	d := catalog.NewDetail(entries[0])
	return snapshot.Build(entries, at, at), []*catalog.Detail{&d}
}

func TestS3MirrorPublish(t *testing.T) {
	bucket := newFakeBucket()
	bucket.objects["catalog/skills/gone.json"] = []byte("{}")
	bucket.objects["catalog/other.txt"] = []byte("x")

	m := newS3Mirror(bucket, "skills", "us-east-1", "/catalog/", testLayout)
	require.Equal(t, "s3://skills/catalog", m.Name())

	snap, details := testSnapshot()
	require.NoError(t, m.Publish(context.Background(), snap, details))
	require.Equal(t, 1, bucket.made)

	require.Equal(t, []string{"catalog/skills/pdf.json", "catalog/skills-index.json"}, bucket.order,
		"details are uploaded before the index")
	require.NotContains(t, bucket.objects, "catalog/skills/gone.json")
	require.Contains(t, bucket.objects, "catalog/other.txt")

	var got catalog.Snapshot
	require.NoError(t, json.Unmarshal(bucket.objects["catalog/skills-index.json"], &got))
	require.Equal(t, 2, got.Total)

	// The bucket check runs once per mirror.
	require.NoError(t, m.Publish(context.Background(), snap, details))
	require.Equal(t, 1, bucket.made)
}

func TestS3MirrorUploadFailure(t *testing.T) {
	bucket := newFakeBucket()
	bucket.exists = true
	bucket.putErr = errors.New("connection refused")

	snap, details := testSnapshot()
	err := newS3Mirror(bucket, "b", "", "", testLayout).Publish(context.Background(), snap, details)
	require.Error(t, err)
	require.Equal(t, errs.ErrCodeNetwork, errs.GetCode(err))
}

func TestNewS3MirrorValidation(t *testing.T) {
	_, err := NewS3Mirror(config.S3Config{Endpoint: "localhost:9000", Bucket: "b"}, testLayout)
	require.Equal(t, errs.ErrCodeInvalidConfig, errs.GetCode(err))

	m, err := NewS3Mirror(config.S3Config{
		Endpoint: "localhost:9000", Bucket: "b", Prefix: "p", AccessKey: "k", SecretKey: "s",
	}, testLayout)
	require.NoError(t, err)
	require.Equal(t, "s3://b/p", m.Name())
}

type fakeCollection struct {
	upserts map[string]mongoEntry
	deleted bson.D
	bulkErr error
}

func (f *fakeCollection) BulkWrite(_ context.Context, models []mongo.WriteModel, _ ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	if f.upserts == nil {
		f.upserts = map[string]mongoEntry{}
	}
	for _, m := range models {
		r := m.(*mongo.ReplaceOneModel)
		if r.Upsert == nil || !*r.Upsert {
			return nil, errors.New("replace without upsert")
		}
		doc := r.Replacement.(mongoEntry)
		f.upserts[doc.ID] = doc
	}
	return &mongo.BulkWriteResult{UpsertedCount: int64(len(models))}, nil
}

func (f *fakeCollection) DeleteMany(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.deleted = filter.(bson.D)
	return &mongo.DeleteResult{}, nil
}

func TestMongoMirrorPublish(t *testing.T) {
	coll := &fakeCollection{}
	m := newMongoMirror(coll, "skillcat.skills")
	published := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return published }

	snap, details := testSnapshot()
	require.NoError(t, m.Publish(context.Background(), snap, details))

	require.Len(t, coll.upserts, 2)
	pdf := coll.upserts["1111"]
	require.Equal(t, "pdf", pdf.Slug)
	require.Equal(t, published, pdf.PublishedAt)
	require.NotNil(t, pdf.Detail)
	require.Equal(t, "https://github.com/", pdf.Detail.AuthorURL)
	require.Nil(t, coll.upserts["2222"].Detail)

	nin := coll.deleted[0].Value.(bson.D)[0]
	require.Equal(t, "$nin", nin.Key)
	require.Equal(t, []string{"1111", "2222"}, nin.Value)
}

func TestMongoMirrorEmptySnapshot(t *testing.T) {
	coll := &fakeCollection{bulkErr: errors.New("must not be called")}
	snap := snapshot.Build(nil, time.Now(), time.Now())

	require.NoError(t, newMongoMirror(coll, "db.c").Publish(context.Background(), snap, nil))
	require.NotNil(t, coll.deleted, "stale documents are still removed")
}

type stubMirror struct {
	name   string
	err    error
	closed bool
}

func (s *stubMirror) Name() string { return s.name }

func (s *stubMirror) Publish(context.Context, *catalog.Snapshot, []*catalog.Detail) error {
	return s.err
}

func (s *stubMirror) Close(context.Context) error {
	s.closed = true
	return nil
}

func TestPublisherRecordsFailures(t *testing.T) {
	ok := &stubMirror{name: "ok"}
	bad := &stubMirror{name: "bad", err: errors.New("boom")}
	p := NewPublisher(log.New(io.Discard), bad, ok)

	snap, details := testSnapshot()
	reports := p.Publish(context.Background(), snap, details)

	require.Equal(t, []catalog.PublishReport{{Target: "bad", Err: "boom"}, {Target: "ok"}}, reports)
	require.NoError(t, p.Close(context.Background()))
	require.True(t, ok.closed)
	require.True(t, bad.closed)
}

func TestNewFromConfig(t *testing.T) {
	p := NewFromConfig(context.Background(), config.PublishConfig{}, testLayout, log.New(io.Discard))
	require.Equal(t, 0, p.Len())

	cfg := config.PublishConfig{S3: config.S3Config{Endpoint: "localhost:9000", Bucket: "b"}}
	p = NewFromConfig(context.Background(), cfg, testLayout, log.New(io.Discard))
	require.Equal(t, 1, p.Len())

	snap, details := testSnapshot()
	reports := p.Publish(context.Background(), snap, details)
	require.Len(t, reports, 1)
	require.Equal(t, "s3://b", reports[0].Target)
	require.Contains(t, reports[0].Err, "access key")
}
