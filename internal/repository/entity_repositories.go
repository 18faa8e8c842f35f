package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/staffing-ats/internal/model"
)

type JobOrderRepository interface {
	FindByID(ctx context.Context, id string) (*model.JobOrder, error)
}

type jobOrderRepository struct{ db *gorm.DB }

func NewJobOrderRepository(db *gorm.DB) JobOrderRepository { return &jobOrderRepository{db: db} }

func (r *jobOrderRepository) FindByID(ctx context.Context, id string) (*model.JobOrder, error) {
	var jo model.JobOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&jo).Error; err != nil {
		return nil, err
	}
	return &jo, nil
}

type CandidateRepository interface {
	FindByID(ctx context.Context, id string) (*model.Candidate, error)
}

type candidateRepository struct{ db *gorm.DB }

func NewCandidateRepository(db *gorm.DB) CandidateRepository { return &candidateRepository{db: db} }

func (r *candidateRepository) FindByID(ctx context.Context, id string) (*model.Candidate, error) {
	var ca model.Candidate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ca).Error; err != nil {
		return nil, err
	}
	return &ca, nil
}

type PlacementRepository interface {
	ExistsForSendout(ctx context.Context, sendoutID string) (bool, error)
}

type placementRepository struct{ db *gorm.DB }

func NewPlacementRepository(db *gorm.DB) PlacementRepository { return &placementRepository{db: db} }

func (r *placementRepository) ExistsForSendout(ctx context.Context, sendoutID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Placement{}).
		Where("sendout_id = ?", sendoutID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
