package ratelimit

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Tonooka01/sistema-analise/pkg/metrics"
	"github.com/Tonooka01/sistema-analise/pkg/redis"
)

const redisKeyPrefix = "sistema:login:"

// Redis keeps one sorted set of attempt timestamps per key, so every server
// process shares the same window.
type Redis struct {
	rdb    *goredis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedis(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{rdb: client.Redis(), limit: int64(limit), window: window, now: time.Now}
}

// Allow records the attempt, then counts the window. A rejected attempt is
// removed again so it does not extend the lockout.
func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	now := r.now()
	k := redisKeyPrefix + key
	member := strconv.FormatInt(now.UnixNano(), 10)

	var count *goredis.IntCmd
	var oldest *goredis.ZSliceCmd
	_, err := r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, k, "-inf", strconv.FormatInt(now.Add(-r.window).UnixMilli(), 10))
		p.ZAdd(ctx, k, goredis.Z{Score: float64(now.UnixMilli()), Member: member})
		count = p.ZCard(ctx, k)
		oldest = p.ZRangeWithScores(ctx, k, 0, 0)
		p.PExpire(ctx, k, r.window)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if count.Val() <= r.limit {
		return Result{Allowed: true}, nil
	}

	if err := r.rdb.ZRem(ctx, k, member).Err(); err != nil {
		return Result{}, err
	}
	metrics.RateLimitRejections.WithLabelValues("redis").Inc()

	res := Result{Allowed: false, RetryIn: r.window}
	if z := oldest.Val(); len(z) > 0 {
		res.RetryIn = time.UnixMilli(int64(z[0].Score)).Add(r.window).Sub(now)
	}
	return res, nil
}
