package service

import (
	"context"
	"time"

	"github.com/d60-Lab/staffing-ats/internal/mailer"
	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/internal/repository"
)

// CoachDigestService 战队榜单摘要：按 coach 汇总团队成员区间内的
// sendout/sendover 计数与电话短信活动，组装后经 Sender 投递
type CoachDigestService struct {
	users    repository.UserRepository
	sendouts repository.SendoutRepository
	activity *ActivityTracker
	composer *NotificationComposer
	sender   mailer.Sender
}

func NewCoachDigestService(
	users repository.UserRepository,
	sendouts repository.SendoutRepository,
	activity *ActivityTracker,
	composer *NotificationComposer,
	sender mailer.Sender,
) *CoachDigestService {
	return &CoachDigestService{
		users:    users,
		sendouts: sendouts,
		activity: activity,
		composer: composer,
		sender:   sender,
	}
}

// BuildRows 按团队成员顺序组装每人的区间指标行
func (s *CoachDigestService) BuildRows(ctx context.Context, coachID string, from, to time.Time) ([]DigestRow, error) {
	team, err := s.users.ListTeam(ctx, coachID)
	if err != nil {
		return nil, err
	}
	rows := make([]DigestRow, 0, len(team))
	for _, rec := range team {
		items, err := s.sendouts.ListByFilter(ctx, repository.SendoutFilter{
			RecruiterIDs: []string{rec.ID},
			StartDate:    &from,
			EndDate:      &to,
		})
		if err != nil {
			return nil, err
		}
		row := DigestRow{RecruiterID: rec.ID, RecruiterName: rec.FullName()}
		for _, so := range items {
			if so.TypeID == model.TypeSendover {
				row.Sendovers++
			} else {
				row.Sendouts++
			}
		}
		if row.Calls, err = s.activity.CallsInRange(ctx, rec.ID, from, to); err != nil {
			return nil, err
		}
		if row.Texts, err = s.activity.TextsInRange(ctx, rec.ID, from, to); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Send 组装并投递某 coach 的团队摘要邮件
func (s *CoachDigestService) Send(ctx context.Context, coachID string, from, to time.Time) error {
	coach, err := s.users.FindByID(ctx, coachID)
	if err != nil {
		return err
	}
	rows, err := s.BuildRows(ctx, coachID, from, to)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, s.composer.BuildCoachDigest(coach, rows))
}
