package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/staffing-ats/internal/model"
)

// SendoutFilter 列表查询过滤条件（全部可选）
type SendoutFilter struct {
	RegionalIDs   []string
	CoachIDs      []string
	RecruiterIDs  []string
	SpecialtyIDs  []string
	StatusIDs     []int64
	TypeID        *int64
	StartDate     *time.Time
	EndDate       *time.Time
	Keyword       string
}

type SendoutRepository interface {
	FindByID(ctx context.Context, id string) (*model.Sendout, error)
	// FindByIDWithRelations 预加载面试/附件/用人方联系人/邮件明细
	FindByIDWithRelations(ctx context.Context, id string) (*model.Sendout, error)
	List(ctx context.Context, f SendoutFilter, offset, limit int) ([]*model.Sendout, int64, error)
	ListByFilter(ctx context.Context, f SendoutFilter) ([]*model.Sendout, error)
}

type sendoutRepository struct {
	db *gorm.DB
}

func NewSendoutRepository(db *gorm.DB) SendoutRepository { return &sendoutRepository{db: db} }

func (r *sendoutRepository) FindByID(ctx context.Context, id string) (*model.Sendout, error) {
	var so model.Sendout
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&so).Error; err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *sendoutRepository) FindByIDWithRelations(ctx context.Context, id string) (*model.Sendout, error) {
	var so model.Sendout
	err := r.db.WithContext(ctx).
		Preload("Interviews", func(db *gorm.DB) *gorm.DB { return db.Order("interview_date ASC") }).
		Preload("Attachments").
		Preload("HiringAuthorities").
		Preload("EmailDetail").
		Where("id = ?", id).
		First(&so).Error
	if err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *sendoutRepository) List(ctx context.Context, f SendoutFilter, offset, limit int) ([]*model.Sendout, int64, error) {
	q := r.applyFilter(ctx, f)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.Sendout
	err := q.Order("sendouts.board_date DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, total, err
}

func (r *sendoutRepository) ListByFilter(ctx context.Context, f SendoutFilter) ([]*model.Sendout, error) {
	var res []*model.Sendout
	err := r.applyFilter(ctx, f).Find(&res).Error
	return res, err
}

func (r *sendoutRepository) applyFilter(ctx context.Context, f SendoutFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Sendout{}).Where("sendouts.deleted = ?", false)
	if f.TypeID != nil {
		q = q.Where("sendouts.type_id = ?", *f.TypeID)
	}
	if len(f.StatusIDs) > 0 {
		q = q.Where("sendouts.status_id IN ?", f.StatusIDs)
	}
	if f.StartDate != nil {
		q = q.Where("sendouts.board_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("sendouts.board_date <= ?", *f.EndDate)
	}
	needsAccountable := len(f.RecruiterIDs) > 0 || len(f.CoachIDs) > 0 || len(f.RegionalIDs) > 0 || f.Keyword != ""
	if needsAccountable {
		q = q.Joins("LEFT JOIN users jo_acc ON jo_acc.id = sendouts.job_order_accountable_id").
			Joins("LEFT JOIN users ca_acc ON ca_acc.id = sendouts.candidate_accountable_id")
	}
	if len(f.RecruiterIDs) > 0 {
		q = q.Where("jo_acc.id IN ? OR ca_acc.id IN ?", f.RecruiterIDs, f.RecruiterIDs)
	}
	if len(f.CoachIDs) > 0 {
		q = q.Where("jo_acc.coach_id IN ? OR ca_acc.coach_id IN ?", f.CoachIDs, f.CoachIDs)
	}
	if len(f.RegionalIDs) > 0 {
		q = q.Where("jo_acc.regional_id IN ? OR ca_acc.regional_id IN ?", f.RegionalIDs, f.RegionalIDs)
	}
	if len(f.SpecialtyIDs) > 0 {
		q = q.Joins("LEFT JOIN job_orders jo ON jo.id = sendouts.job_order_id").
			Where("jo.specialty_id IN ?", f.SpecialtyIDs)
	}
	if f.Keyword != "" {
		kw := "%" + f.Keyword + "%"
		q = q.Joins("LEFT JOIN job_orders jok ON jok.id = sendouts.job_order_id").
			Joins("LEFT JOIN candidates ck ON ck.id = sendouts.candidate_id").
			Where(
				"jok.company_name LIKE ? OR ck.first_name LIKE ? OR ck.last_name LIKE ? OR jo_acc.first_name LIKE ? OR jo_acc.last_name LIKE ? OR ca_acc.first_name LIKE ? OR ca_acc.last_name LIKE ?",
				kw, kw, kw, kw, kw, kw, kw,
			)
	}
	return q
}
