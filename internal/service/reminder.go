package service

import (
	"strings"
	"time"

	"github.com/d60-Lab/staffing-ats/internal/model"
)

// ReminderRole 提醒收件角色
const (
	RoleHiringAuthority    = "hiring_authority"
	RoleCandidate          = "candidate"
	RoleJobOrderRecruiter  = "job_order_recruiter"
	RoleCandidateRecruiter = "candidate_recruiter"
)

// ReminderRecipient 提醒收件人
type ReminderRecipient struct {
	Role  string
	Email string
	Name  string
}

// Reminder 面试提醒：何时、提醒谁（派发机制由队列承担）
type Reminder struct {
	SendoutID   string    `json:"sendout_id"`
	InterviewID string    `json:"interview_id"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	FireAt      time.Time `json:"fire_at"`
	Offset      string    `json:"offset"` // 24h / 1h
}

// BuildReminderPlan 计算单个面试的提醒计划：
// 距面试 ≥24h 发两条（-24h、-1h）；0<gap<24h 发一条（-1h）；已过期不发。
// 面试已带固定 interview_schedule 的跳过。候选人侧 recruiter 邮箱与职位单侧相同时去重。
func BuildReminderPlan(now time.Time, iv *model.SendoutInterview, recipients []ReminderRecipient) []Reminder {
	if iv.InterviewSchedule != nil {
		return nil
	}
	at := iv.InterviewDate
	if loc, err := time.LoadLocation(iv.Timezone); err == nil && iv.Timezone != "" {
		at = at.In(loc)
	}
	gap := at.Sub(now)
	if gap <= 0 {
		return nil
	}
	var offsets []struct {
		d     time.Duration
		label string
	}
	if gap >= 24*time.Hour {
		offsets = append(offsets, struct {
			d     time.Duration
			label string
		}{24 * time.Hour, "24h"})
	}
	offsets = append(offsets, struct {
		d     time.Duration
		label string
	}{time.Hour, "1h"})

	deduped := dedupeRecipients(recipients)
	plan := make([]Reminder, 0, len(offsets)*len(deduped))
	for _, off := range offsets {
		for _, rcp := range deduped {
			plan = append(plan, Reminder{
				SendoutID:   iv.SendoutID,
				InterviewID: iv.ID,
				Role:        rcp.Role,
				Email:       rcp.Email,
				Name:        rcp.Name,
				FireAt:      at.Add(-off.d),
				Offset:      off.label,
			})
		}
	}
	return plan
}

// dedupeRecipients 候选人侧 recruiter 与职位单侧 recruiter 邮箱相同则只保留职位单侧
func dedupeRecipients(recipients []ReminderRecipient) []ReminderRecipient {
	var joEmail string
	for _, r := range recipients {
		if r.Role == RoleJobOrderRecruiter {
			joEmail = strings.ToLower(r.Email)
		}
	}
	out := make([]ReminderRecipient, 0, len(recipients))
	for _, r := range recipients {
		if r.Email == "" {
			continue
		}
		if r.Role == RoleCandidateRecruiter && joEmail != "" && strings.ToLower(r.Email) == joEmail {
			continue
		}
		out = append(out, r)
	}
	return out
}
