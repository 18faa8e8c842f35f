package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/staffing-ats/internal/model"
)

// CoachInfo 某 recruiter 的上级链（coach / regional director）
type CoachInfo struct {
	Recruiter *model.User `json:"recruiter"`
	Coach     *model.User `json:"coach,omitempty"`
	Regional  *model.User `json:"regional,omitempty"`
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FullName 查不到用户时返回空串而非报错（审计流水容忍悬挂引用）
	FullName(ctx context.Context, id string) string
	GetCoachInfoByRecruiterID(ctx context.Context, recruiterID string) (*CoachInfo, error)
	ListTeam(ctx context.Context, coachID string) ([]*model.User, error)
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FullName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	return u.FullName()
}

func (r *userRepository) GetCoachInfoByRecruiterID(ctx context.Context, recruiterID string) (*CoachInfo, error) {
	rec, err := r.FindByID(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	info := &CoachInfo{Recruiter: rec}
	if rec.CoachID != nil {
		if coach, err := r.FindByID(ctx, *rec.CoachID); err == nil {
			info.Coach = coach
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if rec.RegionalID != nil {
		if reg, err := r.FindByID(ctx, *rec.RegionalID); err == nil {
			info.Regional = reg
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return info, nil
}

func (r *userRepository) ListTeam(ctx context.Context, coachID string) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Where("coach_id = ?", coachID).
		Order("last_name ASC").
		Find(&res).Error
	return res, err
}
