package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const reminderQueueKey = "reminders:due"

// ReminderQueue 面试提醒队列：redis ZSET，score 为触发时间戳，member 前缀含 sendout id 以便按 sendout 撤销
type ReminderQueue struct {
	rdb *redis.Client
}

func NewReminderQueue(rdb *redis.Client) *ReminderQueue { return &ReminderQueue{rdb: rdb} }

// Schedule 批量入队
func (q *ReminderQueue) Schedule(ctx context.Context, reminders []Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(reminders))
	for _, r := range reminders {
		payload, err := json.Marshal(r)
		if err != nil {
			return err
		}
		members = append(members, redis.Z{
			Score:  float64(r.FireAt.Unix()),
			Member: memberKey(r.SendoutID, r.InterviewID, r.Role, r.Offset) + "|" + string(payload),
		})
	}
	return q.rdb.ZAdd(ctx, reminderQueueKey, members...).Err()
}

// CancelForSendout 撤销某 sendout 的全部待触发提醒，返回撤销条数
func (q *ReminderQueue) CancelForSendout(ctx context.Context, sendoutID string) (int64, error) {
	return q.cancelByPrefix(ctx, sendoutID+":")
}

// CancelForInterview 撤销某面试的待触发提醒（面试改期时旧提醒换新）
func (q *ReminderQueue) CancelForInterview(ctx context.Context, sendoutID, interviewID string) (int64, error) {
	return q.cancelByPrefix(ctx, sendoutID+":"+interviewID+":")
}

func (q *ReminderQueue) cancelByPrefix(ctx context.Context, prefix string) (int64, error) {
	members, err := q.rdb.ZRange(ctx, reminderQueueKey, 0, -1).Result()
	if err != nil {
		return 0, err
	}
	var doomed []interface{}
	for _, m := range members {
		if strings.HasPrefix(m, prefix) {
			doomed = append(doomed, m)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	return q.rdb.ZRem(ctx, reminderQueueKey, doomed...).Result()
}

// PendingCount 队列中某 sendout 的待触发提醒数
func (q *ReminderQueue) PendingCount(ctx context.Context, sendoutID string) (int, error) {
	members, err := q.rdb.ZRange(ctx, reminderQueueKey, 0, -1).Result()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range members {
		if strings.HasPrefix(m, sendoutID+":") {
			n++
		}
	}
	return n, nil
}

func memberKey(sendoutID, interviewID, role, offset string) string {
	return fmt.Sprintf("%s:%s:%s:%s", sendoutID, interviewID, role, offset)
}
