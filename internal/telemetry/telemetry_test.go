package telemetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecorder_Counts(t *testing.T) {
	dir := t.TempDir()
	rec := NewFileRecorder(dir, nil)
	ctx := context.Background()

	rec.Record(ctx, "add")
	rec.Record(ctx, "add")
	rec.Record(ctx, "undo")

	assert.Equal(t, map[string]int{"add": 2, "undo": 1}, rec.Counts())

	reopened := NewFileRecorder(dir, nil)
	assert.Equal(t, 2, reopened.Counts()["add"])
}

func TestFileRecorder_CorruptFileStartsOver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "telemetry.json"), []byte("[1,2"), 0o644))

	rec := NewFileRecorder(dir, nil)
	rec.Record(context.Background(), "stats")
	assert.Equal(t, map[string]int{"stats": 1}, rec.Counts())
}

func TestFileRecorder_WriteFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	rec := NewFileRecorder(blocker, nil)
	assert.NotPanics(t, func() { rec.Record(context.Background(), "add") })
	assert.Empty(t, rec.Counts())
}

type fakeHash struct {
	counts map[string]int64
	err    error
	calls  int
}

func (f *fakeHash) HIncrBy(_ context.Context, _, field string, incr int64) *goredis.IntCmd {
	f.calls++
	if f.err != nil {
		return goredis.NewIntResult(0, f.err)
	}
	f.counts[field] += incr
	return goredis.NewIntResult(f.counts[field], nil)
}

func TestRedisRecorder(t *testing.T) {
	h := &fakeHash{counts: map[string]int64{}}
	rec := NewRedisRecorder(h, "abook:telemetry:commands", nil)

	rec.Record(context.Background(), "add")
	rec.Record(context.Background(), "add")
	assert.Equal(t, int64(2), h.counts["add"])
}

func TestRedisRecorder_BreakerStopsCalls(t *testing.T) {
	h := &fakeHash{counts: map[string]int64{}, err: errors.New("connection refused")}
	rec := NewRedisRecorder(h, "k", nil)

	for i := 0; i < 10; i++ {
		rec.Record(context.Background(), "add")
	}
	assert.Equal(t, 3, h.calls)
}

func TestNew(t *testing.T) {
	assert.IsType(t, Nop{}, New(false, t.TempDir(), nil, nil))
	assert.IsType(t, &FileRecorder{}, New(true, t.TempDir(), nil, nil))
}
