package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/staffing-ats/internal/mailer"
	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/internal/repository"
	"github.com/d60-Lab/staffing-ats/pkg/logger"
)

// NewReminderListener 提交后的提醒排期消费者。
// member key 确定性生成，重复分发只会覆盖同一成员，天然幂等。
func NewReminderListener(
	sendouts repository.SendoutRepository,
	candidates repository.CandidateRepository,
	users repository.UserRepository,
	queue *ReminderQueue,
) EventHandler {
	return func(ctx context.Context, evt Event) error {
		if evt.Type != EventSendoutCreated && evt.Type != EventSendoutUpdated && evt.Type != EventSendoutConverted {
			return nil
		}
		so, err := sendouts.FindByIDWithRelations(ctx, evt.SendoutID)
		if err != nil {
			return err
		}
		if so.StatusID != model.StatusActive || so.Deleted {
			return nil
		}
		recipients := buildRecipients(ctx, so, candidates, users)
		now := time.Now()
		var plan []Reminder
		for i := range so.Interviews {
			iv := so.Interviews[i]
			rcp := append([]ReminderRecipient{{
				Role:  RoleHiringAuthority,
				Email: iv.RecipientEmail,
				Name:  iv.RecipientName,
			}}, recipients...)
			plan = append(plan, BuildReminderPlan(now, &iv, rcp)...)
		}
		if len(plan) == 0 {
			return nil
		}
		return queue.Schedule(ctx, plan)
	}
}

func buildRecipients(ctx context.Context, so *model.Sendout, candidates repository.CandidateRepository, users repository.UserRepository) []ReminderRecipient {
	var out []ReminderRecipient
	if ca, err := candidates.FindByID(ctx, so.CandidateID); err == nil {
		out = append(out, ReminderRecipient{Role: RoleCandidate, Email: ca.Email, Name: ca.FullName()})
	}
	if u, err := users.FindByID(ctx, so.JobOrderAccountableID); err == nil {
		out = append(out, ReminderRecipient{Role: RoleJobOrderRecruiter, Email: u.Email, Name: u.FullName()})
	}
	if u, err := users.FindByID(ctx, so.CandidateAccountableID); err == nil {
		out = append(out, ReminderRecipient{Role: RoleCandidateRecruiter, Email: u.Email, Name: u.FullName()})
	}
	return out
}

// NewOpsNoticeListener 创建/转正后的运营通知邮件消费者（尽力而为）
func NewOpsNoticeListener(
	sendouts repository.SendoutRepository,
	jobOrders repository.JobOrderRepository,
	candidates repository.CandidateRepository,
	composer *NotificationComposer,
	sender mailer.Sender,
) EventHandler {
	return func(ctx context.Context, evt Event) error {
		if evt.Type != EventSendoutCreated && evt.Type != EventSendoutConverted {
			return nil
		}
		so, err := sendouts.FindByIDWithRelations(ctx, evt.SendoutID)
		if err != nil {
			return err
		}
		jo, err := jobOrders.FindByID(ctx, so.JobOrderID)
		if err != nil {
			return err
		}
		ca, err := candidates.FindByID(ctx, so.CandidateID)
		if err != nil {
			return err
		}
		return sender.Send(ctx, composer.BuildOperationsNotice(ctx, so, jo, ca))
	}
}

// NewActivityLogListener 下游活动时间线写入方的边界；此处仅结构化落日志
func NewActivityLogListener() EventHandler {
	return func(ctx context.Context, evt Event) error {
		logger.Info("sendout activity",
			zap.String("event", evt.Type),
			zap.String("sendout", evt.SendoutID),
			zap.ByteString("payload", evt.Payload),
		)
		return nil
	}
}
