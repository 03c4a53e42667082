package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mapBackend struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMapBackend() *mapBackend {
	return &mapBackend{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (b *mapBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.entries[key]
	return v, ok, nil
}

func (b *mapBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = value
	b.ttls[key] = ttl
	return nil
}

func (b *mapBackend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.entries, k)
	}
	return nil
}

func (b *mapBackend) Keys(_ context.Context, pattern string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for k := range b.entries {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (b *mapBackend) Ping(context.Context) error { return nil }

type brokenBackend struct{}

var errBroken = errors.New("connection refused")

func (brokenBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBroken
}

func (brokenBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errBroken
}

func (brokenBackend) Delete(context.Context, ...string) error { return errBroken }

func (brokenBackend) Keys(context.Context, string) ([]string, error) { return nil, errBroken }

func (brokenBackend) Ping(context.Context) error { return errBroken }

type recordedOp struct{ op, result string }

type fakeRecorder struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (r *fakeRecorder) Observe(op, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, recordedOp{op, result})
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type topicEntry struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

func TestAside_ReadMissThenHit(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		backend := newMapBackend()
		rec := &fakeRecorder{}
		aside := NewAside(backend, codec, Config{}, rec, newTestLogger())
		ctx := context.Background()

		var got topicEntry
		require.False(t, aside.Read(ctx, TopicByIDKey("7"), &got))

		aside.Write(ctx, TopicByIDKey("7"), topicEntry{ID: 7, Slug: "algebra"}, aside.CatalogTTL())
		require.True(t, aside.Read(ctx, TopicByIDKey("7"), &got))
		require.Equal(t, topicEntry{ID: 7, Slug: "algebra"}, got)
		require.Equal(t, DefaultCatalogTTL, backend.ttls[TopicByIDKey("7")])

		require.Equal(t, []recordedOp{{"read", "miss"}, {"write", "ok"}, {"read", "hit"}}, rec.ops)
	}
}

func TestAside_CorruptPayloadIsDropped(t *testing.T) {
	backend := newMapBackend()
	aside := NewAside(backend, JSONCodec{}, Config{}, nil, newTestLogger())
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "topics:all", []byte("{not json"), 0))

	var got []topicEntry
	require.False(t, aside.Read(ctx, "topics:all", &got))
	_, ok, _ := backend.Get(ctx, "topics:all")
	require.False(t, ok)
}

func TestAside_BrokenBackendIsFailSoft(t *testing.T) {
	rec := &fakeRecorder{}
	aside := NewAside(brokenBackend{}, nil, Config{OpTimeout: 10 * time.Millisecond}, rec, newTestLogger())
	ctx := context.Background()

	var got topicEntry
	require.NotPanics(t, func() {
		require.False(t, aside.Read(ctx, "topics:id:1", &got))
		aside.Write(ctx, "topics:id:1", topicEntry{ID: 1}, time.Minute)
		aside.Invalidate(ctx, "topics:id:1")
		aside.InvalidatePattern(ctx, TopicsPattern)
	})
	require.Error(t, aside.Ping(ctx))
	for _, op := range rec.ops {
		require.Equal(t, "error", op.result)
	}
	require.Len(t, rec.ops, 4)

	value, found, err := Fetch(ctx, aside, "topics:id:1", time.Minute, func(context.Context) (topicEntry, bool, error) {
		return topicEntry{ID: 1, Slug: "geometry"}, true, nil
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "geometry", value.Slug)
}

func TestAside_InvalidatePattern(t *testing.T) {
	backend := newMapBackend()
	aside := NewAside(backend, nil, Config{}, nil, newTestLogger())
	ctx := context.Background()

	aside.Write(ctx, QuestionPageKey("algebra", 1, 1), []int{1}, time.Minute)
	aside.Write(ctx, QuestionPageKey("algebra", 2, 1), []int{2}, time.Minute)
	aside.Write(ctx, TopicsAllKey(), []int{3}, time.Minute)

	aside.InvalidatePatterns(ctx, QuestionsPattern, "nothing:*")

	keys, err := backend.Keys(ctx, "*")
	require.NoError(t, err)
	require.Equal(t, []string{TopicsAllKey()}, keys)
}

func TestFetch_PopulatesOnlyWhenFound(t *testing.T) {
	backend := newMapBackend()
	aside := NewAside(backend, nil, Config{}, nil, newTestLogger())
	ctx := context.Background()
	calls := 0
	load := func(found bool) func(context.Context) (topicEntry, bool, error) {
		return func(context.Context) (topicEntry, bool, error) {
			calls++
			if !found {
				return topicEntry{}, false, nil
			}
			return topicEntry{ID: 9, Slug: "calculus"}, true, nil
		}
	}

	_, found, err := Fetch(ctx, aside, TopicByIDKey("9"), time.Minute, load(false))
	require.NoError(t, err)
	require.False(t, found)
	_, ok, _ := backend.Get(ctx, TopicByIDKey("9"))
	require.False(t, ok)

	v, found, err := Fetch(ctx, aside, TopicByIDKey("9"), time.Minute, load(true))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(9), v.ID)

	v, found, err = Fetch(ctx, aside, TopicByIDKey("9"), time.Minute, load(true))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "calculus", v.Slug)
	require.Equal(t, 2, calls)

	loadErr := errors.New("db down")
	_, _, err = Fetch(ctx, aside, TopicByIDKey("10"), time.Minute, func(context.Context) (topicEntry, bool, error) {
		return topicEntry{}, false, loadErr
	})
	require.ErrorIs(t, err, loadErr)
}
