package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/pixaro/internal/repository"
)

func newTestTimeline(t *testing.T) (*RedisTimeline, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTimeline(client, "test:timeline"), mr
}

func load(entries ...repository.TimelineEntry) LoadFunc {
	return func() ([]repository.TimelineEntry, error) {
		return entries, nil
	}
}

func TestScoreOrdersByCreationTime(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Less(t, Score(base), Score(base.Add(time.Millisecond)))
	assert.Equal(t, float64(base.UnixMilli()), Score(base))
	assert.Equal(t, Score(base), Score(base.In(time.FixedZone("CEST", 2*3600))))
}

func TestNewRedisTimelineRejectsBadURL(t *testing.T) {
	_, err := NewRedisTimeline(t.Context(), "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid REDIS_URL")
}

func TestNewTimelineUsesKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	tl := NewTimeline(client, "test:timeline")
	assert.Equal(t, "test:timeline", tl.key)
	assert.Equal(t, "test:timeline:warm", tl.markerKey)
	assert.Equal(t, MarkerTTL, tl.markerTTL)
}

func TestPageMissesUntilRebuilt(t *testing.T) {
	tl, mr := newTestTimeline(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// posts added after a flush are not the whole feed
	require.NoError(t, tl.Add(ctx, "p2", base.Add(time.Second)))
	_, err := tl.Page(ctx, 10, 0)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, tl.Rebuild(ctx, load(
		repository.TimelineEntry{ID: "p1", CreatedAt: base},
		repository.TimelineEntry{ID: "p2", CreatedAt: base.Add(time.Second)},
	)))
	assert.True(t, mr.Exists("test:timeline:warm"))

	ids, err := tl.Page(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)
}

func TestPageOrdersNewestFirstWithIDTieBreak(t *testing.T) {
	tl, _ := newTestTimeline(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tl.Rebuild(ctx, load(
		repository.TimelineEntry{ID: "a", CreatedAt: base},
		repository.TimelineEntry{ID: "c", CreatedAt: base},
		repository.TimelineEntry{ID: "b", CreatedAt: base},
		repository.TimelineEntry{ID: "old", CreatedAt: base.Add(-time.Hour)},
	)))
	require.NoError(t, tl.Add(ctx, "new", base.Add(time.Minute)))

	ids, err := tl.Page(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "c"}, ids)

	ids, err = tl.Page(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	ids, err = tl.Page(ctx, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, ids)

	ids, err = tl.Page(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRemove(t *testing.T) {
	tl, mr := newTestTimeline(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tl.Rebuild(ctx, load(
		repository.TimelineEntry{ID: "p1", CreatedAt: base},
		repository.TimelineEntry{ID: "p2", CreatedAt: base.Add(time.Second)},
	)))
	require.NoError(t, tl.Remove(ctx, "p2"))
	require.NoError(t, tl.Remove(ctx, "unknown"))

	members, err := mr.ZMembers("test:timeline")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, members)
}

func TestRebuildReplacesStaleMembers(t *testing.T) {
	tl, mr := newTestTimeline(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := mr.ZAdd("test:timeline", Score(base), "deleted")
	require.NoError(t, err)

	require.NoError(t, tl.Rebuild(ctx, load(repository.TimelineEntry{ID: "kept", CreatedAt: base})))

	members, err := mr.ZMembers("test:timeline")
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, members)

	score, err := mr.ZScore("test:timeline", "kept")
	require.NoError(t, err)
	assert.Equal(t, Score(base), score)

	// an empty database leaves an empty but warm timeline
	require.NoError(t, tl.Rebuild(ctx, load()))
	ids, err := tl.Page(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMarkerExpiresAndInvalidates(t *testing.T) {
	tl, mr := newTestTimeline(t)
	ctx := context.Background()

	require.NoError(t, tl.Rebuild(ctx, load()))
	assert.Equal(t, MarkerTTL, mr.TTL("test:timeline:warm"))

	mr.FastForward(MarkerTTL)
	_, err := tl.Page(ctx, 10, 0)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, tl.Rebuild(ctx, load()))
	require.NoError(t, tl.Invalidate(ctx))
	_, err = tl.Page(ctx, 10, 0)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRebuildAbortsWhenTimelineChanges(t *testing.T) {
	tl, mr := newTestTimeline(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// a post created after the database snapshot was read
	err := tl.Rebuild(ctx, func() ([]repository.TimelineEntry, error) {
		require.NoError(t, tl.Add(ctx, "fresh", base.Add(time.Second)))
		return []repository.TimelineEntry{{ID: "old", CreatedAt: base}}, nil
	})
	assert.ErrorIs(t, err, ErrRebuildConflict)
	assert.False(t, mr.Exists("test:timeline:warm"))

	members, err := mr.ZMembers("test:timeline")
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, members)

	require.NoError(t, tl.Rebuild(ctx, load(
		repository.TimelineEntry{ID: "old", CreatedAt: base},
		repository.TimelineEntry{ID: "fresh", CreatedAt: base.Add(time.Second)},
	)))
	ids, err := tl.Page(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "old"}, ids)
}

func TestRebuildReturnsLoadError(t *testing.T) {
	tl, mr := newTestTimeline(t)
	boom := errors.New("database is locked")

	err := tl.Rebuild(context.Background(), func() ([]repository.TimelineEntry, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("test:timeline:warm"))
}
