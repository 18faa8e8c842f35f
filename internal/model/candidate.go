package model

import "time"

// Candidate 候选人（库存方，状态由 sendout 推导）
type Candidate struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName   string    `json:"first_name" gorm:"type:varchar(128)"`
	LastName    string    `json:"last_name" gorm:"type:varchar(128)"`
	Email       string    `json:"email" gorm:"type:varchar(255);index"`
	RecruiterID string    `json:"recruiter_id" gorm:"type:varchar(36);index"`
	StatusID    int64     `json:"status_id" gorm:"index;not null;default:1"`
	SpecialtyID string    `json:"specialty_id" gorm:"type:varchar(36);index"`
	State       string    `json:"state" gorm:"type:varchar(8)"`
	ResumeURL   string    `json:"resume_url" gorm:"type:varchar(1024)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Candidate) TableName() string { return "candidates" }

// FullName 候选人姓名
func (c *Candidate) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	return c.FirstName + " " + c.LastName
}
