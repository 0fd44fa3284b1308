package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/templui/pixaro/internal/repository"
)

const TimelineKey = "pixaro:timeline"

// MarkerTTL bounds how long a rebuilt timeline is trusted. Writes lost by
// another instance are repaired by the next rebuild at the latest.
const MarkerTTL = 10 * time.Minute

var (
	// ErrMiss means the timeline is empty and should be rebuilt from the database.
	ErrMiss = errors.New("timeline cache miss")
	// ErrRebuildConflict means the timeline changed while it was being rebuilt.
	ErrRebuildConflict = errors.New("timeline changed during rebuild")
)

// LoadFunc reads the current timeline from the database.
type LoadFunc func() ([]repository.TimelineEntry, error)

// Timeline keeps the ids of all posts ordered by creation time.
type Timeline interface {
	Add(ctx context.Context, postID string, createdAt time.Time) error
	Remove(ctx context.Context, postID string) error
	Page(ctx context.Context, limit, offset int) ([]string, error)
	Rebuild(ctx context.Context, load LoadFunc) error
	Invalidate(ctx context.Context) error
}

// RedisTimeline stores the timeline as a sorted set scored by creation time
// in milliseconds. Equal scores fall back to member order, which matches the
// id DESC tie-break of the database feed query.
//
// A separate marker key is set by Rebuild and expires after MarkerTTL.
// Without it the set may hold only posts added since a flush, so Page
// reports a miss.
type RedisTimeline struct {
	client    *redis.Client
	key       string
	markerKey string
	markerTTL time.Duration
}

// NewRedisTimeline connects to url (redis://...) and checks the connection.
func NewRedisTimeline(ctx context.Context, url string) (*RedisTimeline, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewTimeline(client, TimelineKey), nil
}

func NewTimeline(client *redis.Client, key string) *RedisTimeline {
	return &RedisTimeline{client: client, key: key, markerKey: key + ":warm", markerTTL: MarkerTTL}
}

func (t *RedisTimeline) Add(ctx context.Context, postID string, createdAt time.Time) error {
	return t.client.ZAdd(ctx, t.key, redis.Z{
		Score:  Score(createdAt),
		Member: postID,
	}).Err()
}

func (t *RedisTimeline) Remove(ctx context.Context, postID string) error {
	return t.client.ZRem(ctx, t.key, postID).Err()
}

// Page returns post ids newest first. A timeline that was never rebuilt
// is reported as ErrMiss.
func (t *RedisTimeline) Page(ctx context.Context, limit, offset int) ([]string, error) {
	warm, err := t.client.Exists(ctx, t.markerKey).Result()
	if err != nil {
		return nil, err
	}
	if warm == 0 {
		return nil, ErrMiss
	}

	start := int64(offset)
	stop := start + int64(limit) - 1
	return t.client.ZRevRange(ctx, t.key, start, stop).Result()
}

// Rebuild replaces the whole timeline with what load returns. Both keys are
// watched before load runs, so an Add, Remove or Invalidate that lands
// between reading the database and writing the set aborts the rebuild
// with ErrRebuildConflict instead of being overwritten.
func (t *RedisTimeline) Rebuild(ctx context.Context, load LoadFunc) error {
	err := t.client.Watch(ctx, func(tx *redis.Tx) error {
		entries, err := load()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, t.key)
			if len(entries) > 0 {
				members := make([]redis.Z, len(entries))
				for i, e := range entries {
					members[i] = redis.Z{Score: Score(e.CreatedAt), Member: e.ID}
				}
				pipe.ZAdd(ctx, t.key, members...)
			}
			pipe.Set(ctx, t.markerKey, time.Now().UTC().Format(time.RFC3339), t.markerTTL)
			return nil
		})
		return err
	}, t.key, t.markerKey)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrRebuildConflict
	}
	return err
}

// Invalidate drops the marker so the next Page reports a miss.
func (t *RedisTimeline) Invalidate(ctx context.Context) error {
	return t.client.Del(ctx, t.markerKey).Err()
}

func (t *RedisTimeline) Close() error {
	return t.client.Close()
}

// Score converts a creation time to a sorted-set score.
func Score(createdAt time.Time) float64 {
	return float64(createdAt.UnixMilli())
}
