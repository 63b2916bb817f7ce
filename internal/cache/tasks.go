// Package cache keeps per-user task list results in Redis.
//
// All list variants of one user live in a single hash, so any write by that
// user drops them together with one DEL. Each user also has a generation
// counter bumped on every invalidation; Set writes only if the generation
// read before the store query is still current, so a slow reader cannot
// put back rows older than a confirmed write. Redis failures are logged and
// treated as misses; they never fail the request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

type TaskCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

func NewTaskCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *TaskCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TaskCache{
		rdb:    rdb,
		ttl:    ttl,
		prefix: "tasks",
		logger: logger,
	}
}

var errStale = errors.New("cache generation changed")

func (c *TaskCache) key(userID int64) string {
	return c.prefix + ":" + strconv.FormatInt(userID, 10)
}

func (c *TaskCache) genKey(userID int64) string {
	return c.key(userID) + ":gen"
}

// field кодирует фильтр с длиной приоритета, чтобы "a|b"+"c" и "a"+"b|c" не совпали
func field(filter model.TaskFilter) string {
	priority := filter.Priority
	if priority == "" {
		priority = model.PriorityAll
	}
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(priority)))
	sb.WriteString(":")
	sb.WriteString(priority)
	sb.WriteString("|")
	sb.WriteString(filter.Search)
	return sb.String()
}

// Generation returns the user's current generation. ok is false when Redis
// cannot be read; the caller must then skip Set.
func (c *TaskCache) Generation(ctx context.Context, userID int64) (int64, bool) {
	gen, err := c.rdb.Get(ctx, c.genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		c.logger.Warn("task cache generation read failed", zap.Int64("user_id", userID), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (c *TaskCache) Get(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, bool) {
	raw, err := c.rdb.HGet(ctx, c.key(userID), field(filter)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("task cache get failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, false
	}

	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		c.logger.Warn("task cache entry corrupt", zap.Int64("user_id", userID), zap.Error(err))
		return nil, false
	}
	return tasks, true
}

// Set stores tasks read at generation gen. It is a no-op when an
// invalidation happened since gen was read.
func (c *TaskCache) Set(ctx context.Context, userID, gen int64, filter model.TaskFilter, tasks []model.Task) {
	raw, err := json.Marshal(tasks)
	if err != nil {
		return
	}

	key, genKey := c.key(userID), c.genKey(userID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field(filter), raw)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("task cache set skipped, list changed meanwhile", zap.Int64("user_id", userID))
	default:
		c.logger.Warn("task cache set failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (c *TaskCache) Invalidate(ctx context.Context, userID int64) {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(userID))
		pipe.Del(ctx, c.key(userID))
		return nil
	})
	if err != nil {
		c.logger.Warn("task cache invalidate failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
