package model

import "time"

// DomainOutbox 领域事件外发盒：与主事务同写，由 worker 提交后分发（至少一次）
type DomainOutbox struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SendoutID   string     `json:"sendout_id" gorm:"type:varchar(36);index:idx_outbox_sendout"`
	EventType   string     `json:"event_type" gorm:"type:varchar(64);index"`
	Payload     string     `json:"payload" gorm:"type:text"`
	Status      string     `json:"status" gorm:"type:varchar(16);index"` // pending, processing, done, failed
	Attempts    int        `json:"attempts" gorm:"not null;default:0"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
}

func (DomainOutbox) TableName() string { return "domain_outbox" }

// Outbox 状态常量
const (
	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxDone       = "done"
	OutboxFailed     = "failed"
)
