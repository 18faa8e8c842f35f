package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/staffing-ats/internal/model"
)

func testInterview(at time.Time) *model.SendoutInterview {
	return &model.SendoutInterview{
		ID:             "iv1",
		SendoutID:      "so1",
		InterviewDate:  at,
		Timezone:       "UTC",
		RecipientEmail: "ha@client.com",
		RecipientName:  "Pat Boss",
	}
}

func singleRecipient() []ReminderRecipient {
	return []ReminderRecipient{{Role: RoleCandidate, Email: "cand@example.com", Name: "Sam Doe"}}
}

func TestBuildReminderPlan_Gaps(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	// 30 小时后的面试：-24h 与 -1h 各一轮
	plan := BuildReminderPlan(now, testInterview(now.Add(30*time.Hour)), singleRecipient())
	require.Len(t, plan, 2)
	assert.Equal(t, now.Add(6*time.Hour), plan[0].FireAt)
	assert.Equal(t, now.Add(29*time.Hour), plan[1].FireAt)

	// 5 小时后的面试：仅 -1h
	plan = BuildReminderPlan(now, testInterview(now.Add(5*time.Hour)), singleRecipient())
	require.Len(t, plan, 1)
	assert.Equal(t, "1h", plan[0].Offset)

	// 已过期的面试不产生提醒
	assert.Empty(t, BuildReminderPlan(now, testInterview(now.Add(-time.Hour)), singleRecipient()))

	// 已带固定 interview_schedule 的跳过
	iv := testInterview(now.Add(30 * time.Hour))
	sched := int64(3)
	iv.InterviewSchedule = &sched
	assert.Empty(t, BuildReminderPlan(now, iv, singleRecipient()))
}

func TestBuildReminderPlan_DedupeRecruiters(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	recipients := []ReminderRecipient{
		{Role: RoleCandidate, Email: "cand@example.com"},
		{Role: RoleJobOrderRecruiter, Email: "rec@agency.com"},
		{Role: RoleCandidateRecruiter, Email: "REC@agency.com"}, // 与职位单侧同邮箱，去重
	}
	plan := BuildReminderPlan(now, testInterview(now.Add(5*time.Hour)), recipients)
	require.Len(t, plan, 2)
	for _, r := range plan {
		assert.NotEqual(t, RoleCandidateRecruiter, r.Role)
	}
}

func setupReminderQueue(t *testing.T) (*ReminderQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewReminderQueue(rdb), mr
}

func TestReminderQueue_ScheduleAndCancel(t *testing.T) {
	q, _ := setupReminderQueue(t)
	ctx := context.Background()
	now := time.Now()

	reminders := []Reminder{
		{SendoutID: "so1", InterviewID: "iv1", Role: RoleCandidate, Email: "a@x.com", FireAt: now.Add(time.Hour), Offset: "1h"},
		{SendoutID: "so1", InterviewID: "iv2", Role: RoleCandidate, Email: "a@x.com", FireAt: now.Add(23 * time.Hour), Offset: "1h"},
		{SendoutID: "so2", InterviewID: "iv3", Role: RoleCandidate, Email: "b@x.com", FireAt: now.Add(time.Hour), Offset: "1h"},
	}
	require.NoError(t, q.Schedule(ctx, reminders))

	n, err := q.PendingCount(ctx, "so1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// 按面试撤销只影响该面试
	removed, err := q.CancelForInterview(ctx, "so1", "iv1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	// 按 sendout 撤销清空剩余，不影响其他 sendout
	_, err = q.CancelForSendout(ctx, "so1")
	require.NoError(t, err)
	n, _ = q.PendingCount(ctx, "so1")
	assert.Zero(t, n)
	n, _ = q.PendingCount(ctx, "so2")
	assert.Equal(t, 1, n)
}

// 重复排期同一 member 只覆盖 score，不产生重复提醒
func TestReminderQueue_Idempotent(t *testing.T) {
	q, _ := setupReminderQueue(t)
	ctx := context.Background()
	r := Reminder{SendoutID: "so1", InterviewID: "iv1", Role: RoleCandidate, Email: "a@x.com", FireAt: time.Now().Add(time.Hour), Offset: "1h"}
	require.NoError(t, q.Schedule(ctx, []Reminder{r}))
	require.NoError(t, q.Schedule(ctx, []Reminder{r}))
	n, err := q.PendingCount(ctx, "so1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
