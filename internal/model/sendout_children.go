package model

import "time"

// SendoutInterview 面试安排（可多条，独立于父事务维护，用于提醒计算）
type SendoutInterview struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SendoutID         string    `json:"sendout_id" gorm:"type:varchar(36);index:idx_interview_sendout;not null"`
	InterviewTypeID   int64     `json:"interview_type_id"`
	InterviewDate     time.Time `json:"interview_date" gorm:"index"`
	Timezone          string    `json:"timezone" gorm:"type:varchar(64)"`
	InterviewRange    *string   `json:"interview_range,omitempty" gorm:"type:varchar(64)"`
	InterviewSchedule *int64    `json:"interview_schedule,omitempty"`
	RecipientEmail    string    `json:"recipient_email" gorm:"type:varchar(255)"`
	RecipientName     string    `json:"recipient_name" gorm:"type:varchar(255)"`
	CcEmails          string    `json:"cc_emails" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (SendoutInterview) TableName() string { return "sendout_interviews" }

// SendoutEmailDetail 通知邮件明细，与 sendout 一对一
type SendoutEmailDetail struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SendoutID    string    `json:"sendout_id" gorm:"type:varchar(36);uniqueIndex:ux_email_detail_sendout"`
	CcEmails     string    `json:"cc_emails" gorm:"type:text"`
	BccEmails    string    `json:"bcc_emails" gorm:"type:text"`
	Subject      string    `json:"subject" gorm:"type:varchar(512)"`
	TemplateID   *string   `json:"template_id,omitempty" gorm:"type:varchar(36)"`
	TemplateBody string    `json:"template_body" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (SendoutEmailDetail) TableName() string { return "sendout_email_details" }

// SendoutAttachment 附件，创建时拷贝到 sendout 作用域路径后不可变（转换时可追加）
type SendoutAttachment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SendoutID string    `json:"sendout_id" gorm:"type:varchar(36);index:idx_attachment_sendout;not null"`
	FileName  string    `json:"file_name" gorm:"type:varchar(255)"`
	URL       string    `json:"url" gorm:"type:varchar(1024)"`
	CreatedAt time.Time `json:"created_at"`
}

func (SendoutAttachment) TableName() string { return "sendout_attachments" }

// SendoutHasHiringAuthority 用人方联系人关联
type SendoutHasHiringAuthority struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SendoutID         string    `json:"sendout_id" gorm:"type:varchar(36);index:idx_ha_sendout;not null"`
	HiringAuthorityID string    `json:"hiring_authority_id" gorm:"type:varchar(36)"`
	FullName          string    `json:"full_name" gorm:"type:varchar(255)"`
	Email             string    `json:"email" gorm:"type:varchar(255)"`
	CreatedAt         time.Time `json:"created_at"`
}

func (SendoutHasHiringAuthority) TableName() string { return "sendout_has_hiring_authorities" }
