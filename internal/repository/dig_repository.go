package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/staffing-ats/internal/model"
)

var ErrDigDuplicate = errors.New("dig assignment already exists")

type DigRepository interface {
	Assign(ctx context.Context, recruiterID, industryID, specialtyID, state string) (*model.Dig, error)
	Unassign(ctx context.Context, id string) error
	ListByRecruiter(ctx context.Context, recruiterID string) ([]*model.Dig, error)
	ListByState(ctx context.Context, state string) ([]*model.Dig, error)
}

type digRepository struct{ db *gorm.DB }

func NewDigRepository(db *gorm.DB) DigRepository { return &digRepository{db: db} }

func (r *digRepository) Assign(ctx context.Context, recruiterID, industryID, specialtyID, state string) (*model.Dig, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Dig{}).
		Where("recruiter_id = ? AND industry_id = ? AND specialty_id = ? AND state = ?",
			recruiterID, industryID, specialtyID, state).
		Count(&cnt).Error
	if err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, ErrDigDuplicate
	}
	d := &model.Dig{
		ID:          uuid.New().String(),
		RecruiterID: recruiterID,
		IndustryID:  industryID,
		SpecialtyID: specialtyID,
		State:       state,
	}
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *digRepository) Unassign(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Dig{}).Error
}

func (r *digRepository) ListByRecruiter(ctx context.Context, recruiterID string) ([]*model.Dig, error) {
	var res []*model.Dig
	err := r.db.WithContext(ctx).Where("recruiter_id = ?", recruiterID).Find(&res).Error
	return res, err
}

func (r *digRepository) ListByState(ctx context.Context, state string) ([]*model.Dig, error) {
	var res []*model.Dig
	err := r.db.WithContext(ctx).Where("state = ?", state).Find(&res).Error
	return res, err
}
