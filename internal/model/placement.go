package model

import "time"

// Placement 成单记录；存在成单的 sendout 不允许删除
type Placement struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SendoutID string    `json:"sendout_id" gorm:"type:varchar(36);index:idx_placement_sendout;not null"`
	FeeAmount float64   `json:"fee_amount" gorm:"type:decimal(12,2)"`
	StartDate time.Time `json:"start_date"`
	CreatedAt time.Time `json:"created_at"`
}

func (Placement) TableName() string { return "placements" }
