package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/staffing-ats/internal/model"
)

// EventLogRepository 审计流水读取侧；写入始终在引擎事务内进行
type EventLogRepository interface {
	ListBySendout(ctx context.Context, sendoutID string) ([]*model.SendoutEventLog, error)
}

type eventLogRepository struct {
	db *gorm.DB
}

func NewEventLogRepository(db *gorm.DB) EventLogRepository { return &eventLogRepository{db: db} }

func (r *eventLogRepository) ListBySendout(ctx context.Context, sendoutID string) ([]*model.SendoutEventLog, error) {
	var res []*model.SendoutEventLog
	err := r.db.WithContext(ctx).
		Where("sendout_id = ?", sendoutID).
		Order("created_at ASC").
		Find(&res).Error
	return res, err
}
