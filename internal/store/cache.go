package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// generationKey is bumped by every submission. A fill only lands when the
// generation it read before querying SQLite is still current, so a board
// read before a submission cannot be cached after its invalidation.
const generationKey = "leaderboard:generation"

var errStaleFill = errors.New("leaderboard changed during fill")

// CachedLeaderboard serves leaderboard reads from Redis and falls through to
// the Store when Redis is unavailable. Each scene has one hash keyed by
// limit; a submission drops the hash of its scene and the all-scenes hash.
type CachedLeaderboard struct {
	store  *Store
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedLeaderboard(store *Store, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedLeaderboard {
	return &CachedLeaderboard{store: store, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(sceneID string) string {
	if sceneID == "" {
		return "leaderboard:all"
	}
	return "leaderboard:scene:" + sceneID
}

func (c *CachedLeaderboard) Leaderboard(ctx context.Context, sceneID string, limit int) ([]Entry, error) {
	key, field := cacheKey(sceneID), strconv.Itoa(limit)

	raw, err := c.rdb.HGet(ctx, key, field).Bytes()
	switch {
	case err == nil:
		var entries []Entry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
		c.logger.Warn("discarding corrupt leaderboard cache", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("leaderboard cache read failed", "key", key, "error", err)
	}

	gen, genErr := c.generation(ctx)

	entries, err := c.store.Leaderboard(ctx, sceneID, limit)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return entries, nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return entries, nil
	}
	if err := c.fill(ctx, key, field, gen, data); err != nil && !errors.Is(err, errStaleFill) {
		c.logger.Warn("leaderboard cache write failed", "key", key, "error", err)
	}
	return entries, nil
}

// generation returns the current submission generation, 0 when unset.
func (c *CachedLeaderboard) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// fill caches data under key and field if no submission happened since gen
// was read.
func (c *CachedLeaderboard) fill(ctx context.Context, key, field string, gen int64, data []byte) error {
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, generationKey).Int64()
		if errors.Is(err, redis.Nil) {
			cur, err = 0, nil
		}
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, field, data)
			p.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return errStaleFill
	}
	return err
}

// SubmitResult stores res and invalidates the cached boards it appears on.
func (c *CachedLeaderboard) SubmitResult(ctx context.Context, res hunt.Result) error {
	if err := c.store.SubmitResult(ctx, res); err != nil {
		return err
	}
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, generationKey)
		p.Del(ctx, cacheKey(res.SceneID), cacheKey(""))
		return nil
	})
	if err != nil {
		c.logger.Warn("leaderboard cache invalidation failed", "scene", res.SceneID, "error", err)
	}
	return nil
}
