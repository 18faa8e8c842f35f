package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/pkg/logger"
)

// UpdateSendoutRequest 更新入参；nil 字段表示不变
type UpdateSendoutRequest struct {
	StatusID               *int64              `json:"status_id,omitempty" binding:"omitempty,oneof=1 2 3 4 5 6 7"`
	FeeAmount              *float64            `json:"fee_amount,omitempty" binding:"omitempty,gte=0"`
	JobOrderAccountableID  *string             `json:"job_order_accountable_id,omitempty"`
	CandidateAccountableID *string             `json:"candidate_accountable_id,omitempty"`
	DeclinationDetails     *DeclinationDetails `json:"declination_details,omitempty"`
	SendEmailHiring        *bool               `json:"send_email_hiring,omitempty"`
	CcEmails               *string             `json:"cc_emails,omitempty"`
	BccEmails              *string             `json:"bcc_emails,omitempty"`
	Subject                *string             `json:"subject,omitempty"`
	TemplateID             *string             `json:"template_id,omitempty"`
	TemplateBody           *string             `json:"template_body,omitempty"`
	Interviews             []InterviewInput    `json:"interviews,omitempty"`
}

// Update 更新 sendout：责任变更、状态迁移、费用调整各自产生独立审计流水。
// 软删除的记录拒绝编辑。
func (s *SendoutService) Update(ctx context.Context, id string, req *UpdateSendoutRequest, userID, timezone string) *Result {
	so, err := s.sendouts.FindByIDWithRelations(ctx, id)
	if err != nil {
		return s.failure(ErrSendoutNotFound)
	}
	if so.Deleted {
		return s.failure(ErrSendoutNotFound)
	}
	jo, err := s.jobOrders.FindByID(ctx, so.JobOrderID)
	if err != nil {
		return s.failure(ErrJobOrderNotFound)
	}
	ca, err := s.candidates.FindByID(ctx, so.CandidateID)
	if err != nil {
		return s.failure(ErrCandidateNotFound)
	}

	prevStatus := so.StatusID
	var replacedInterviews []string

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, side := range []struct {
			name     string
			override *string
			current  *string
		}{
			{sideJobOrder, req.JobOrderAccountableID, &so.JobOrderAccountableID},
			{sideCandidate, req.CandidateAccountableID, &so.CandidateAccountableID},
		} {
			resolved := resolveAccountable(side.override, "", *side.current)
			change := detectAccountableChange(ctx, s.users, side.name, *side.current, resolved)
			if change == nil {
				continue
			}
			if err := s.appendLog(tx, so.ID, change.eventType(), change, userID); err != nil {
				return err
			}
			*side.current = resolved
		}

		if req.StatusID != nil && *req.StatusID != prevStatus {
			newStatus := *req.StatusID
			switch {
			case model.IsDeclinedStatus(newStatus):
				if req.DeclinationDetails != nil {
					so.DeclinationDetails = marshalPtr(req.DeclinationDetails)
				}
				if err := s.appendLog(tx, so.ID, model.EventDeclined, map[string]any{
					"old_status": prevStatus, "new_status": newStatus,
					"declination_details": req.DeclinationDetails,
				}, userID); err != nil {
					return err
				}
			case newStatus == model.StatusPlaced:
				if err := s.appendLog(tx, so.ID, model.EventPlaced, map[string]any{
					"old_status": prevStatus, "fee_amount": fmtCurrency(so.FeeAmount),
				}, userID); err != nil {
					return err
				}
			default:
				if err := s.appendLog(tx, so.ID, model.EventStatusChanged, map[string]any{
					"old_status": prevStatus, "new_status": newStatus,
				}, userID); err != nil {
					return err
				}
			}
			so.StatusID = newStatus
			if err := s.applyEntityStatuses(tx, so); err != nil {
				return err
			}
			if newStatus != model.StatusActive {
				if err := s.appendLog(tx, so.ID, model.EventRemindersDeleted,
					map[string]any{"reason": "status left active"}, userID); err != nil {
					return err
				}
			}
		}

		if req.FeeAmount != nil && *req.FeeAmount != so.FeeAmount {
			if so.TypeID == model.TypeSendout {
				if err := s.appendLog(tx, so.ID, model.EventFeeAmountEdited, map[string]any{
					"old": fmtCurrency(so.FeeAmount), "new": fmtCurrency(*req.FeeAmount),
				}, userID); err != nil {
					return err
				}
			}
			so.FeeAmount = *req.FeeAmount
		}

		if err := s.updateEmailDetail(tx, so, req); err != nil {
			return err
		}

		if so.StatusID == model.StatusActive {
			var added []InterviewInput
			for _, in := range req.Interviews {
				if in.ID == "" {
					added = append(added, in)
					continue
				}
				if err := tx.Model(&model.SendoutInterview{}).
					Where("id = ? AND sendout_id = ?", in.ID, so.ID).
					Updates(map[string]any{
						"interview_type_id": in.TypeID,
						"interview_date":    in.Date,
						"timezone":          in.Timezone,
						"interview_range":   in.Range,
						"recipient_email":   in.RecipientEmail,
						"recipient_name":    in.RecipientName,
						"cc_emails":         in.CcEmails,
					}).Error; err != nil {
					return err
				}
				replacedInterviews = append(replacedInterviews, in.ID)
			}
			if err := s.createInterviews(tx, so, added); err != nil {
				return err
			}
		}

		if req.SendEmailHiring != nil && *req.SendEmailHiring && so.EmailSentAt == nil {
			so.SendEmailHiring = true
			if err := s.sendHiringEmail(ctx, tx, so, jo, ca, userID); err != nil {
				return err
			}
		}

		if err := tx.Model(&model.Sendout{}).Where("id = ?", so.ID).Updates(map[string]any{
			"status_id":                so.StatusID,
			"fee_amount":               so.FeeAmount,
			"job_order_accountable_id": so.JobOrderAccountableID,
			"candidate_accountable_id": so.CandidateAccountableID,
			"declination_details":      so.DeclinationDetails,
			"send_email_hiring":        so.SendEmailHiring,
		}).Error; err != nil {
			return err
		}
		return s.writeOutbox(tx, so.ID, EventSendoutUpdated, map[string]any{
			"old_status": prevStatus,
			"new_status": so.StatusID,
		})
	})
	if err != nil {
		return s.failure(err)
	}

	// 提交后的尽力而为撤销：失败不影响已提交的更新
	if so.StatusID != model.StatusActive && prevStatus == model.StatusActive {
		if _, err := s.reminders.CancelForSendout(ctx, so.ID); err != nil {
			logger.Warn("cancel reminders failed", zap.String("sendout", so.ID), zap.Error(err))
		}
	}
	for _, ivID := range replacedInterviews {
		if _, err := s.reminders.CancelForInterview(ctx, so.ID, ivID); err != nil {
			logger.Warn("cancel interview reminders failed", zap.String("interview", ivID), zap.Error(err))
		}
	}

	updated, err := s.sendouts.FindByIDWithRelations(ctx, so.ID)
	if err != nil {
		return s.failure(err)
	}
	return &Result{Success: true, Code: http.StatusOK, Sendout: updated}
}

func (s *SendoutService) updateEmailDetail(tx *gorm.DB, so *model.Sendout, req *UpdateSendoutRequest) error {
	updates := map[string]any{}
	if req.CcEmails != nil {
		updates["cc_emails"] = *req.CcEmails
	}
	if req.BccEmails != nil {
		updates["bcc_emails"] = *req.BccEmails
	}
	if req.Subject != nil {
		updates["subject"] = *req.Subject
	}
	if req.TemplateID != nil {
		updates["template_id"] = *req.TemplateID
	}
	if req.TemplateBody != nil {
		updates["template_body"] = *req.TemplateBody
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&model.SendoutEmailDetail{}).
		Where("sendout_id = ?", so.ID).
		Updates(updates).Error
}

// ConvertSendoverRequest sendover 转正入参
type ConvertSendoverRequest struct {
	FeeAmount              *float64          `json:"fee_amount,omitempty" binding:"omitempty,gte=0"`
	JobOrderAccountableID  *string           `json:"job_order_accountable_id,omitempty"`
	CandidateAccountableID *string           `json:"candidate_accountable_id,omitempty"`
	SendEmailHiring        bool              `json:"send_email_hiring"`
	CcEmails               *string           `json:"cc_emails,omitempty"`
	BccEmails              *string           `json:"bcc_emails,omitempty"`
	Subject                *string           `json:"subject,omitempty"`
	TemplateID             *string           `json:"template_id,omitempty"`
	TemplateBody           *string           `json:"template_body,omitempty"`
	Interviews             []InterviewInput  `json:"interviews,omitempty"`
	Attachments            []AttachmentInput `json:"attachments,omitempty"`
}

// ConvertSendoverToSendout sendover 转正：类型改写、日期重推、共享邮件明细原地更新，
// 邮件发送失败回滚整个转换。提交后发布 converted 事件供活动时间线消费。
func (s *SendoutService) ConvertSendoverToSendout(ctx context.Context, id string, req *ConvertSendoverRequest, userID, timezone string) *Result {
	so, err := s.sendouts.FindByIDWithRelations(ctx, id)
	if err != nil {
		return s.failure(ErrSendoutNotFound)
	}
	if so.Deleted {
		return s.failure(ErrSendoutNotFound)
	}
	if so.TypeID != model.TypeSendover {
		return s.failure(ErrNotSendover)
	}
	jo, err := s.jobOrders.FindByID(ctx, so.JobOrderID)
	if err != nil {
		return s.failure(ErrJobOrderNotFound)
	}
	ca, err := s.candidates.FindByID(ctx, so.CandidateID)
	if err != nil {
		return s.failure(ErrCandidateNotFound)
	}

	now := nowIn(timezone)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, side := range []struct {
			name     string
			override *string
			current  *string
		}{
			{sideJobOrder, req.JobOrderAccountableID, &so.JobOrderAccountableID},
			{sideCandidate, req.CandidateAccountableID, &so.CandidateAccountableID},
		} {
			resolved := resolveAccountable(side.override, "", *side.current)
			change := detectAccountableChange(ctx, s.users, side.name, *side.current, resolved)
			if change == nil {
				continue
			}
			if err := s.appendLog(tx, so.ID, change.eventType(), change, userID); err != nil {
				return err
			}
			*side.current = resolved
		}

		so.TypeID = model.TypeSendout
		so.StatusID = model.StatusActive
		so.Converted = true
		so.TrackingDate = now
		so.BoardDate = s.cal.GetBoardDate(now)
		if req.FeeAmount != nil {
			so.FeeAmount = *req.FeeAmount
		}
		so.SendEmailHiring = req.SendEmailHiring

		if err := s.updateEmailDetail(tx, so, &UpdateSendoutRequest{
			CcEmails: req.CcEmails, BccEmails: req.BccEmails, Subject: req.Subject,
			TemplateID: req.TemplateID, TemplateBody: req.TemplateBody,
		}); err != nil {
			return err
		}
		if err := s.createInterviews(tx, so, req.Interviews); err != nil {
			return err
		}
		if err := s.createAttachments(tx, so, req.Attachments); err != nil {
			return err
		}
		if err := tx.Model(&model.Sendout{}).Where("id = ?", so.ID).Updates(map[string]any{
			"type_id":                  so.TypeID,
			"status_id":                so.StatusID,
			"converted":                true,
			"tracking_date":            so.TrackingDate,
			"board_date":               so.BoardDate,
			"fee_amount":               so.FeeAmount,
			"job_order_accountable_id": so.JobOrderAccountableID,
			"candidate_accountable_id": so.CandidateAccountableID,
			"send_email_hiring":        so.SendEmailHiring,
		}).Error; err != nil {
			return err
		}
		if err := s.applyEntityStatuses(tx, so); err != nil {
			return err
		}
		if err := s.appendLog(tx, so.ID, model.EventConverted,
			map[string]any{"converted": true}, userID); err != nil {
			return err
		}
		if req.SendEmailHiring && so.EmailSentAt == nil {
			if err := s.sendHiringEmail(ctx, tx, so, jo, ca, userID); err != nil {
				return err
			}
		}
		return s.writeOutbox(tx, so.ID, EventSendoutConverted, map[string]any{"converted": true})
	})
	if err != nil {
		return s.failure(err)
	}

	converted, err := s.sendouts.FindByIDWithRelations(ctx, so.ID)
	if err != nil {
		return s.failure(err)
	}
	return &Result{Success: true, Code: http.StatusOK, Sendout: converted}
}

// Remove 软删除；仅 Operations 角色，且不存在关联成单
func (s *SendoutService) Remove(ctx context.Context, id, userID string) *Result {
	actor, err := s.users.FindByID(ctx, userID)
	if err != nil || actor.RoleID != model.RoleOperations {
		return s.failure(ErrOperationsOnly)
	}
	so, err := s.sendouts.FindByID(ctx, id)
	if err != nil || so.Deleted {
		return s.failure(ErrSendoutNotFound)
	}
	placed, err := s.placements.ExistsForSendout(ctx, id)
	if err != nil {
		return s.failure(err)
	}
	if placed {
		return s.failure(ErrHasPlacement)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Sendout{}).Where("id = ?", id).
			Update("deleted", true).Error; err != nil {
			return err
		}
		if err := s.appendLog(tx, id, model.EventDeleted, map[string]any{"deleted": true}, userID); err != nil {
			return err
		}
		return s.writeOutbox(tx, id, EventSendoutDeleted, map[string]any{"type_id": so.TypeID})
	})
	if err != nil {
		return s.failure(err)
	}

	if so.TypeID == model.TypeSendout {
		if _, err := s.reminders.CancelForSendout(ctx, id); err != nil {
			logger.Warn("cancel reminders failed", zap.String("sendout", id), zap.Error(err))
		}
	}
	return &Result{Success: true, Code: http.StatusOK}
}

// Details 详情：全关联 + 双侧 coach 链
func (s *SendoutService) Details(ctx context.Context, id string) *Result {
	so, err := s.sendouts.FindByIDWithRelations(ctx, id)
	if err != nil {
		return s.failure(ErrSendoutNotFound)
	}
	jo, err := s.jobOrders.FindByID(ctx, so.JobOrderID)
	if err != nil {
		return s.failure(ErrJobOrderNotFound)
	}
	ca, err := s.candidates.FindByID(ctx, so.CandidateID)
	if err != nil {
		return s.failure(ErrCandidateNotFound)
	}
	details := &SendoutDetails{Sendout: so, JobOrder: jo, Candidate: ca}
	if info, err := s.users.GetCoachInfoByRecruiterID(ctx, so.JobOrderAccountableID); err == nil {
		details.JobOrderCoach = info
	}
	if info, err := s.users.GetCoachInfoByRecruiterID(ctx, so.CandidateAccountableID); err == nil {
		details.CandidateCoach = info
	}
	return &Result{Success: true, Code: http.StatusOK, Details: details}
}

// Timeline 审计流水，按发生时间正序
func (s *SendoutService) Timeline(ctx context.Context, id string) *Result {
	if _, err := s.sendouts.FindByID(ctx, id); err != nil {
		return s.failure(ErrSendoutNotFound)
	}
	logs, err := s.eventLogs.ListBySendout(ctx, id)
	if err != nil {
		return s.failure(err)
	}
	return &Result{Success: true, Code: http.StatusOK, Logs: logs}
}
