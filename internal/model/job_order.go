package model

import "time"

// JobOrder 职位单（库存方，状态由 sendout 推导，不独立权威）
type JobOrder struct {
	ID                   string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title                string    `json:"title" gorm:"type:varchar(255);not null"`
	CompanyName          string    `json:"company_name" gorm:"type:varchar(255);index:idx_joborder_company"`
	RecruiterID          string    `json:"recruiter_id" gorm:"type:varchar(36);index"`
	StatusID             int64     `json:"status_id" gorm:"index;not null;default:1"`
	SpecialtyID          string    `json:"specialty_id" gorm:"type:varchar(36);index"`
	PositionID           string    `json:"position_id" gorm:"type:varchar(36);index"`
	State                string    `json:"state" gorm:"type:varchar(8);index"`
	City                 string    `json:"city" gorm:"type:varchar(128)"`
	HiringAuthorityEmail string    `json:"hiring_authority_email" gorm:"type:varchar(255)"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (JobOrder) TableName() string { return "job_orders" }
