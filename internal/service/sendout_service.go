package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/staffing-ats/internal/mailer"
	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/internal/repository"
	"github.com/d60-Lab/staffing-ats/internal/storage"
	"github.com/d60-Lab/staffing-ats/internal/telemetry"
)

var (
	ErrSendoutNotFound    = errors.New("sendout not found")
	ErrJobOrderNotFound   = errors.New("job order not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrNotSendover        = errors.New("record is not a sendover")
	ErrTypeStatusMismatch = errors.New("sendout type does not match initial status")
	ErrHasPlacement       = errors.New("sendout with a placement can't be deleted")
	ErrOperationsOnly     = errors.New("only operations can delete sendouts")
	ErrEmailSendFailed    = errors.New("hiring authority email could not be sent")
	ErrAttachmentCopy     = errors.New("attachment copy failed")
)

// Result 引擎公开方法的统一返回；异常不外漏，统一折叠为失败码
type Result struct {
	Success bool                     `json:"success"`
	Code    int                      `json:"code"`
	Message string                   `json:"message,omitempty"`
	Sendout *model.Sendout           `json:"sendout,omitempty"`
	Details *SendoutDetails          `json:"details,omitempty"`
	Logs    []*model.SendoutEventLog `json:"logs,omitempty"`
}

// SendoutDetails 详情视图：sendout 全关联 + 双侧责任 recruiter 的 coach 链
type SendoutDetails struct {
	Sendout        *model.Sendout        `json:"sendout"`
	JobOrder       *model.JobOrder       `json:"job_order"`
	Candidate      *model.Candidate      `json:"candidate"`
	JobOrderCoach  *repository.CoachInfo `json:"job_order_coach,omitempty"`
	CandidateCoach *repository.CoachInfo `json:"candidate_coach,omitempty"`
}

// InterviewInput 面试入参；带 ID 表示更新既有面试
type InterviewInput struct {
	ID             string    `json:"id,omitempty"`
	TypeID         int64     `json:"type_id"`
	Date           time.Time `json:"date" binding:"required"`
	Timezone       string    `json:"timezone" binding:"omitempty,timezone"`
	Range          *string   `json:"range,omitempty"`
	RecipientEmail string    `json:"recipient_email" binding:"omitempty,email"`
	RecipientName  string    `json:"recipient_name"`
	CcEmails       string    `json:"cc_emails"`
}

type AttachmentInput struct {
	FileName  string `json:"file_name" binding:"required"`
	SourceURL string `json:"source_url" binding:"required"`
}

type HiringAuthorityInput struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// DeclinationDetails 拒绝原因结构
type DeclinationDetails struct {
	ReasonIDs []int64 `json:"reason_ids"`
	Notes     string  `json:"notes,omitempty"`
}

// CreateSendoutRequest 创建入参
type CreateSendoutRequest struct {
	TypeID                 int64                  `json:"type_id" binding:"required,oneof=1 2"`
	StatusID               int64                  `json:"status_id" binding:"required,oneof=1 5"`
	JobOrderID             string                 `json:"job_order_id" binding:"required"`
	CandidateID            string                 `json:"candidate_id" binding:"required"`
	FeeAmount              float64                `json:"fee_amount" binding:"gte=0"`
	JobOrderAccountableID  *string                `json:"job_order_accountable_id,omitempty"`
	CandidateAccountableID *string                `json:"candidate_accountable_id,omitempty"`
	DeclinationDetails     *DeclinationDetails    `json:"declination_details,omitempty"`
	SendEmailHiring        bool                   `json:"send_email_hiring"`
	CcEmails               string                 `json:"cc_emails"`
	BccEmails              string                 `json:"bcc_emails"`
	Subject                string                 `json:"subject"`
	TemplateID             *string                `json:"template_id,omitempty"`
	TemplateBody           string                 `json:"template_body"`
	Attachments            []AttachmentInput      `json:"attachments,omitempty"`
	Interviews             []InterviewInput       `json:"interviews,omitempty"`
	HiringAuthorities      []HiringAuthorityInput `json:"hiring_authorities,omitempty"`
}

// SendoutService sendout/sendover 状态与责任引擎
type SendoutService struct {
	db         *gorm.DB
	sendouts   repository.SendoutRepository
	eventLogs  repository.EventLogRepository
	jobOrders  repository.JobOrderRepository
	candidates repository.CandidateRepository
	placements repository.PlacementRepository
	users      repository.UserRepository
	cal        *BoardCalendar
	composer   *NotificationComposer
	sender     mailer.Sender
	files      storage.FileMover
	reminders  *ReminderQueue
}

func NewSendoutService(
	db *gorm.DB,
	sendouts repository.SendoutRepository,
	eventLogs repository.EventLogRepository,
	jobOrders repository.JobOrderRepository,
	candidates repository.CandidateRepository,
	placements repository.PlacementRepository,
	users repository.UserRepository,
	cal *BoardCalendar,
	composer *NotificationComposer,
	sender mailer.Sender,
	files storage.FileMover,
	reminders *ReminderQueue,
) *SendoutService {
	return &SendoutService{
		db:         db,
		sendouts:   sendouts,
		eventLogs:  eventLogs,
		jobOrders:  jobOrders,
		candidates: candidates,
		placements: placements,
		users:      users,
		cal:        cal,
		composer:   composer,
		sender:     sender,
		files:      files,
		reminders:  reminders,
	}
}

// Create 创建 sendout/sendover：子表、审计流水、实体状态推导、用人方邮件全部在一个事务内；
// 邮件发送失败回滚整个创建。提醒与运营通知经 outbox 在提交后分发。
func (s *SendoutService) Create(ctx context.Context, req *CreateSendoutRequest, userID, timezone string) *Result {
	// sendout 只能以 Active 起步，sendover 只能以 Sendover 起步
	if (req.TypeID == model.TypeSendout && req.StatusID != model.StatusActive) ||
		(req.TypeID == model.TypeSendover && req.StatusID != model.StatusSendover) {
		return s.failure(ErrTypeStatusMismatch)
	}
	jo, err := s.jobOrders.FindByID(ctx, req.JobOrderID)
	if err != nil {
		return s.failure(ErrJobOrderNotFound)
	}
	ca, err := s.candidates.FindByID(ctx, req.CandidateID)
	if err != nil {
		return s.failure(ErrCandidateNotFound)
	}

	now := nowIn(timezone)
	soID := uuid.New().String()
	so := &model.Sendout{
		ID:                     soID,
		TypeID:                 req.TypeID,
		StatusID:               req.StatusID,
		CandidateID:            req.CandidateID,
		JobOrderID:             req.JobOrderID,
		FeeAmount:              req.FeeAmount,
		JobOrderAccountableID:  resolveAccountable(req.JobOrderAccountableID, jo.RecruiterID, ""),
		CandidateAccountableID: resolveAccountable(req.CandidateAccountableID, ca.RecruiterID, ""),
		TrackingDate:           now,
		BoardDate:              s.cal.GetBoardDate(now),
		SendEmailHiring:        req.SendEmailHiring,
		CreatedBy:              userID,
	}
	if req.StatusID == model.StatusSendover && req.DeclinationDetails != nil {
		so.DeclinationDetails = marshalPtr(req.DeclinationDetails)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(so).Error; err != nil {
			return err
		}
		detail := &model.SendoutEmailDetail{
			ID:           uuid.New().String(),
			SendoutID:    soID,
			CcEmails:     req.CcEmails,
			BccEmails:    req.BccEmails,
			Subject:      req.Subject,
			TemplateID:   req.TemplateID,
			TemplateBody: req.TemplateBody,
		}
		if err := tx.Create(detail).Error; err != nil {
			return err
		}
		so.EmailDetail = detail

		if err := s.createAttachments(tx, so, req.Attachments); err != nil {
			return err
		}
		for _, ha := range req.HiringAuthorities {
			row := &model.SendoutHasHiringAuthority{
				ID:                uuid.New().String(),
				SendoutID:         soID,
				HiringAuthorityID: ha.ID,
				FullName:          ha.FullName,
				Email:             ha.Email,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			so.HiringAuthorities = append(so.HiringAuthorities, *row)
		}
		// 面试仅在 Active 状态下创建；sendover 转正后另行补建
		if req.StatusID == model.StatusActive {
			if err := s.createInterviews(tx, so, req.Interviews); err != nil {
				return err
			}
		}

		if err := s.appendLog(tx, soID, model.EventCreated, so, userID); err != nil {
			return err
		}
		if err := s.applyEntityStatuses(tx, so); err != nil {
			return err
		}
		// 仅 Active/Sendover 状态下随创建发送用人方邮件；失败回滚整个创建
		if req.SendEmailHiring && (so.StatusID == model.StatusActive || model.IsSendoverStatus(so.StatusID)) {
			if err := s.sendHiringEmail(ctx, tx, so, jo, ca, userID); err != nil {
				return err
			}
		}
		return s.writeOutbox(tx, soID, EventSendoutCreated, map[string]any{
			"status_id": so.StatusID,
			"type_id":   so.TypeID,
		})
	})
	if err != nil {
		return s.failure(err)
	}

	created, err := s.sendouts.FindByIDWithRelations(ctx, soID)
	if err != nil {
		return s.failure(err)
	}
	return &Result{Success: true, Code: http.StatusOK, Sendout: created}
}

func (s *SendoutService) createAttachments(tx *gorm.DB, so *model.Sendout, inputs []AttachmentInput) error {
	for _, in := range inputs {
		res := s.files.CopyFile(in.SourceURL, "sendouts/"+so.ID, in.FileName)
		if !res.Success {
			return fmt.Errorf("%w: %s", ErrAttachmentCopy, res.Error)
		}
		row := &model.SendoutAttachment{
			ID:        uuid.New().String(),
			SendoutID: so.ID,
			FileName:  in.FileName,
			URL:       res.URL,
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		so.Attachments = append(so.Attachments, *row)
	}
	return nil
}

func (s *SendoutService) createInterviews(tx *gorm.DB, so *model.Sendout, inputs []InterviewInput) error {
	for _, in := range inputs {
		row := &model.SendoutInterview{
			ID:              uuid.New().String(),
			SendoutID:       so.ID,
			InterviewTypeID: in.TypeID,
			InterviewDate:   in.Date,
			Timezone:        in.Timezone,
			InterviewRange:  in.Range,
			RecipientEmail:  in.RecipientEmail,
			RecipientName:   in.RecipientName,
			CcEmails:        in.CcEmails,
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		so.Interviews = append(so.Interviews, *row)
	}
	if len(inputs) > 0 {
		return s.appendLog(tx, so.ID, model.EventRemindersScheduled,
			map[string]any{"interviews": len(inputs)}, so.CreatedBy)
	}
	return nil
}

// applyEntityStatuses 按优先级表重算职位单与候选人聚合状态。
// 已 Placed 的实体冻结，职位单缺失时静默跳过。
func (s *SendoutService) applyEntityStatuses(tx *gorm.DB, so *model.Sendout) error {
	if err := s.applyOneEntityStatus(tx, so, so.JobOrderID, ""); err != nil {
		return err
	}
	return s.applyOneEntityStatus(tx, so, "", so.CandidateID)
}

func (s *SendoutService) applyOneEntityStatus(tx *gorm.DB, so *model.Sendout, jobOrderID, candidateID string) error {
	var siblings []int64
	q := tx.Model(&model.Sendout{}).Where("deleted = ?", false).Where("id <> ?", so.ID)
	if jobOrderID != "" {
		q = q.Where("job_order_id = ?", jobOrderID)
	} else {
		q = q.Where("candidate_id = ?", candidateID)
	}
	if err := q.Pluck("status_id", &siblings).Error; err != nil {
		return err
	}
	mapped := MapEntityStatus(ResolveEntityStatus(so.StatusID, siblings))

	if jobOrderID != "" {
		var jo model.JobOrder
		if err := tx.Where("id = ?", jobOrderID).First(&jo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if jo.StatusID == model.EntityStatusPlaced {
			return nil
		}
		return tx.Model(&model.JobOrder{}).Where("id = ?", jobOrderID).
			Update("status_id", mapped).Error
	}
	var ca model.Candidate
	if err := tx.Where("id = ?", candidateID).First(&ca).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if ca.StatusID == model.EntityStatusPlaced {
		return nil
	}
	return tx.Model(&model.Candidate{}).Where("id = ?", candidateID).
		Update("status_id", mapped).Error
}

func (s *SendoutService) sendHiringEmail(ctx context.Context, tx *gorm.DB, so *model.Sendout, jo *model.JobOrder, ca *model.Candidate, userID string) error {
	payload := s.composer.BuildHiringAuthorityEmail(so, jo, ca)
	if err := s.sender.Send(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}
	now := time.Now()
	so.EmailSentAt = &now
	if err := tx.Model(&model.Sendout{}).Where("id = ?", so.ID).
		Update("email_sent_at", now).Error; err != nil {
		return err
	}
	return s.appendLog(tx, so.ID, model.EventEmailSent,
		map[string]any{"to": payload.To, "subject": payload.Subject}, userID)
}

func (s *SendoutService) appendLog(tx *gorm.DB, sendoutID string, eventType int64, details any, userID string) error {
	body, err := json.Marshal(details)
	if err != nil {
		return err
	}
	row := &model.SendoutEventLog{
		ID:           uuid.New().String(),
		SendoutID:    sendoutID,
		EventTypeID:  eventType,
		EventDetails: string(body),
		TriggeredBy:  userID,
	}
	return tx.Create(row).Error
}

func (s *SendoutService) writeOutbox(tx *gorm.DB, sendoutID, eventType string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	row := &model.DomainOutbox{
		ID:        uuid.New().String(),
		SendoutID: sendoutID,
		EventType: eventType,
		Payload:   string(body),
		Status:    model.OutboxPending,
	}
	return tx.Create(row).Error
}

// failure 错误分类：已知业务错误映射为 4xx，其余上报 telemetry 并折叠为 500
func (s *SendoutService) failure(err error) *Result {
	switch {
	case errors.Is(err, ErrSendoutNotFound),
		errors.Is(err, ErrJobOrderNotFound),
		errors.Is(err, ErrCandidateNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return &Result{Code: http.StatusNotFound, Message: notFoundMessage(err)}
	case errors.Is(err, ErrOperationsOnly),
		errors.Is(err, ErrHasPlacement):
		return &Result{Code: http.StatusForbidden, Message: err.Error()}
	case errors.Is(err, ErrNotSendover),
		errors.Is(err, ErrTypeStatusMismatch):
		return &Result{Code: http.StatusBadRequest, Message: err.Error()}
	default:
		telemetry.TrackException(err)
		return &Result{Code: http.StatusInternalServerError, Message: "something went wrong"}
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSendoutNotFound.Error()
	}
	return err.Error()
}

func nowIn(timezone string) time.Time {
	if loc, err := time.LoadLocation(timezone); err == nil && timezone != "" {
		return time.Now().In(loc)
	}
	return time.Now().UTC()
}

func marshalPtr(v any) *string {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func fmtCurrency(v float64) string { return fmt.Sprintf("$%.2f", v) }
