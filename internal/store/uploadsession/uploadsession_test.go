package uploadsession

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/multipart"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return &Tracker{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func TestTrackerSaveAndLoad(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	s := &multipart.Session{
		UploadID:  "upload-1",
		BinaryID:  "bin-1",
		MimeType:  "image/png",
		Partition: "repo",
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Parts:     map[int]multipart.PartState{1: {PartNumber: 1, ETag: "abc", Size: 10}},
	}
	require.NoError(t, tr.Save(ctx, s))

	loaded, err := tr.Load(ctx, "upload-1")
	require.NoError(t, err)
	assert.Equal(t, s.BinaryID, loaded.BinaryID)
	assert.Equal(t, s.Partition, loaded.Partition)
	assert.Equal(t, "abc", loaded.Parts[1].ETag)
}

func TestTrackerLoadMissing(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.Load(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, 404, apierror.As(err).Status)
}

func TestTrackerDelete(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	s := &multipart.Session{UploadID: "upload-2", Parts: map[int]multipart.PartState{}}
	require.NoError(t, tr.Save(ctx, s))
	require.NoError(t, tr.Delete(ctx, "upload-2"))

	_, err := tr.Load(ctx, "upload-2")
	require.Error(t, err)
}
