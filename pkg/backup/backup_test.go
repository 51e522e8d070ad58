package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/owlgraph/pkg/metrics"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

// memBucket is an in-memory ObjectAPI.
type memBucket struct {
	objects map[string][]byte
	failPut error
}

func newMemBucket() *memBucket {
	return &memBucket{objects: make(map[string][]byte)}
}

func (m *memBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.failPut != nil {
		return nil, m.failPut
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memBucket) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("not found")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func snapshotStore(t *testing.T, dir string, compress bool) {
	t.Helper()

	gs, err := storage.NewGraphStorageWithConfig(storage.StorageConfig{DataDir: dir, CompressSnapshots: compress})
	require.NoError(t, err)
	_, err = gs.CreateNode([]string{"Root"}, map[string]storage.Value{"key": storage.StringValue("owl:Thing")})
	require.NoError(t, err)
	require.NoError(t, gs.Snapshot())
	require.NoError(t, gs.Close())
}

func TestPushPullRoundTrip(t *testing.T) {
	src := t.TempDir()
	snapshotStore(t, src, true)

	bucket := newMemBucket()
	reg := metrics.NewRegistry()
	c := NewWithAPI(bucket, "graphs", "owlgraph/", nil, reg)

	key, err := c.Push(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "owlgraph/"+storage.CompressedSnapshotFile, key)
	assert.Contains(t, bucket.objects, "graphs/owlgraph/"+storage.CompressedSnapshotFile)

	dst := t.TempDir()
	// A stale uncompressed snapshot must not shadow the pulled one.
	require.NoError(t, os.WriteFile(filepath.Join(dst, storage.SnapshotFile), []byte("{}"), 0644))

	written, err := c.Pull(context.Background(), dst)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dst, storage.CompressedSnapshotFile), written)
	assert.NoFileExists(t, filepath.Join(dst, storage.SnapshotFile))

	gs, err := storage.NewGraphStorage(dst)
	require.NoError(t, err)
	defer gs.Close()
	root, err := gs.GetNodeByKey("owl:Thing")
	require.NoError(t, err)
	assert.True(t, root.HasLabel("Root"))

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ExportRowsTotal.WithLabelValues("s3", "push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ExportRowsTotal.WithLabelValues("s3", "pull")))
}

func TestPushUncompressed(t *testing.T) {
	src := t.TempDir()
	snapshotStore(t, src, false)

	bucket := newMemBucket()
	key, err := NewWithAPI(bucket, "b", "", nil, nil).Push(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, storage.SnapshotFile, key)
}

func TestPushWithoutSnapshot(t *testing.T) {
	_, err := NewWithAPI(newMemBucket(), "b", "p", nil, nil).Push(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestPushUploadFailure(t *testing.T) {
	src := t.TempDir()
	snapshotStore(t, src, true)

	bucket := newMemBucket()
	bucket.failPut = errors.New("access denied")
	_, err := NewWithAPI(bucket, "b", "p", nil, nil).Push(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestPullMissing(t *testing.T) {
	_, err := NewWithAPI(newMemBucket(), "b", "p", nil, nil).Pull(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "a/b/snapshot.json", NewWithAPI(nil, "x", "a/b/", nil, nil).Key("snapshot.json"))
	assert.Equal(t, "snapshot.json", NewWithAPI(nil, "x", "", nil, nil).Key("snapshot.json"))
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil, nil)
	assert.ErrorIs(t, err, ErrNoBucket)
}
