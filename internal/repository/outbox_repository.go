package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/staffing-ats/internal/model"
)

type OutboxRepository interface {
	// ClaimPending 认领一批 pending 事件并置为 processing
	ClaimPending(ctx context.Context, limit int) ([]*model.DomainOutbox, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

type outboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) OutboxRepository { return &outboxRepository{db: db} }

func (r *outboxRepository) ClaimPending(ctx context.Context, limit int) ([]*model.DomainOutbox, error) {
	var batch []*model.DomainOutbox
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("status = ?", model.OutboxPending)
		// postgres 下多 worker 并发认领需行级锁跳过已锁行；sqlite 不支持该子句，单写者无此竞争
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := q.
			Order("created_at ASC").
			Limit(limit).
			Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.DomainOutbox{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":   model.OutboxProcessing,
				"attempts": gorm.Expr("attempts + 1"),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *outboxRepository) MarkDone(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.DomainOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxDone, "processed_at": now}).Error
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.DomainOutbox{}).
		Where("id = ?", id).
		Update("status", model.OutboxFailed).Error
}
