package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActivityTracker 电话/短信活动计数（按 recruiter × 日的 redis 计数器），供 coach 榜单聚合
type ActivityTracker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewActivityTracker(rdb *redis.Client) *ActivityTracker {
	return &ActivityTracker{rdb: rdb, ttl: 45 * 24 * time.Hour}
}

func (t *ActivityTracker) IncrCall(ctx context.Context, recruiterID string, day time.Time) error {
	return t.incr(ctx, "calls", recruiterID, day)
}

func (t *ActivityTracker) IncrText(ctx context.Context, recruiterID string, day time.Time) error {
	return t.incr(ctx, "texts", recruiterID, day)
}

func (t *ActivityTracker) incr(ctx context.Context, kind, recruiterID string, day time.Time) error {
	key := activityKey(kind, recruiterID, day)
	pipe := t.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// CallsInRange 区间内通话数合计
func (t *ActivityTracker) CallsInRange(ctx context.Context, recruiterID string, from, to time.Time) (int64, error) {
	return t.sum(ctx, "calls", recruiterID, from, to)
}

// TextsInRange 区间内短信数合计
func (t *ActivityTracker) TextsInRange(ctx context.Context, recruiterID string, from, to time.Time) (int64, error) {
	return t.sum(ctx, "texts", recruiterID, from, to)
}

func (t *ActivityTracker) sum(ctx context.Context, kind, recruiterID string, from, to time.Time) (int64, error) {
	var total int64
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		v, err := t.rdb.Get(ctx, activityKey(kind, recruiterID, d)).Int64()
		if err != nil && err != redis.Nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

func activityKey(kind, recruiterID string, day time.Time) string {
	return fmt.Sprintf("activity:%s:%s:%s", kind, recruiterID, day.Format("20060102"))
}
