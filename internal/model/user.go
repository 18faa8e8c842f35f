package model

import "time"

// User 招聘团队成员（recruiter/coach/regional director/operations）
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email      string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password   string    `json:"-" gorm:"type:varchar(255);not null"`
	FirstName  string    `json:"first_name" gorm:"type:varchar(128)"`
	LastName   string    `json:"last_name" gorm:"type:varchar(128)"`
	RoleID     int64     `json:"role_id" gorm:"index;not null;default:1"`
	CoachID    *string   `json:"coach_id,omitempty" gorm:"type:varchar(36);index"`
	RegionalID *string   `json:"regional_id,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Role 角色常量
const (
	RoleRecruiter        int64 = 1
	RoleCoach            int64 = 2
	RoleRegionalDirector int64 = 3
	RoleOperations       int64 = 4
)

// FullName 展示用全名
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}
