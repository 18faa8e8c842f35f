package model

import "time"

// Dig 招聘顾问领地分配（industry × specialty × state），用于看板/地图视图
type Dig struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecruiterID string    `json:"recruiter_id" gorm:"type:varchar(36);index:idx_dig_recruiter;uniqueIndex:ux_dig_assignment;not null"`
	IndustryID  string    `json:"industry_id" gorm:"type:varchar(36);uniqueIndex:ux_dig_assignment;not null"`
	SpecialtyID string    `json:"specialty_id" gorm:"type:varchar(36);uniqueIndex:ux_dig_assignment;not null"`
	State       string    `json:"state" gorm:"type:varchar(8);index:idx_dig_state;uniqueIndex:ux_dig_assignment;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Dig) TableName() string { return "digs" }
