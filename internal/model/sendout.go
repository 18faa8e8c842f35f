package model

import "time"

// Sendout 派遣记录（候选人 → 职位单的正式推荐；Sendover 为同一实体的弱推荐形态）
type Sendout struct {
	ID                     string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TypeID                 int64      `json:"type_id" gorm:"index;not null"`
	StatusID               int64      `json:"status_id" gorm:"index;not null"`
	CandidateID            string     `json:"candidate_id" gorm:"type:varchar(36);index:idx_sendout_candidate;not null"`
	JobOrderID             string     `json:"job_order_id" gorm:"type:varchar(36);index:idx_sendout_joborder;not null"`
	FeeAmount              float64    `json:"fee_amount" gorm:"type:decimal(12,2);not null;default:0"`
	JobOrderAccountableID  string     `json:"job_order_accountable_id" gorm:"type:varchar(36)"`
	CandidateAccountableID string     `json:"candidate_accountable_id" gorm:"type:varchar(36)"`
	TrackingDate           time.Time  `json:"tracking_date"`
	BoardDate              time.Time  `json:"board_date" gorm:"index"`
	DeclinationDetails     *string    `json:"declination_details,omitempty" gorm:"type:text"`
	SendEmailHiring        bool       `json:"send_email_hiring"`
	EmailSentAt            *time.Time `json:"email_sent_at,omitempty"`
	Converted              bool       `json:"converted" gorm:"not null;default:false"`
	Deleted                bool       `json:"deleted" gorm:"index;not null;default:false"`
	CreatedBy              string     `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`

	Interviews        []SendoutInterview          `json:"interviews,omitempty" gorm:"foreignKey:SendoutID"`
	Attachments       []SendoutAttachment         `json:"attachments,omitempty" gorm:"foreignKey:SendoutID"`
	HiringAuthorities []SendoutHasHiringAuthority `json:"hiring_authorities,omitempty" gorm:"foreignKey:SendoutID"`
	EmailDetail       *SendoutEmailDetail         `json:"email_detail,omitempty" gorm:"foreignKey:SendoutID"`
}

func (Sendout) TableName() string { return "sendouts" }

// SendoutType 类型常量
const (
	TypeSendout  int64 = 1
	TypeSendover int64 = 2
)

// SendoutStatus 状态常量
const (
	StatusActive           int64 = 1
	StatusPlaced           int64 = 2
	StatusNoOffer          int64 = 3
	StatusDeclined         int64 = 4
	StatusSendover         int64 = 5
	StatusSendoverNoOffer  int64 = 6
	StatusSendoverDeclined int64 = 7
)

// EntityStatus 职位单/候选人聚合状态常量（由 sendout 状态推导）
const (
	EntityStatusOngoing  int64 = 1
	EntityStatusSendout  int64 = 2
	EntityStatusSendover int64 = 3
	EntityStatusPlaced   int64 = 4
)

// IsSendoverStatus 是否属于 sendover 族状态
func IsSendoverStatus(s int64) bool {
	return s == StatusSendover || s == StatusSendoverNoOffer || s == StatusSendoverDeclined
}

// IsDeclinedStatus 是否属于终态（拒绝/无 offer）族状态
func IsDeclinedStatus(s int64) bool {
	return s == StatusDeclined || s == StatusNoOffer || s == StatusSendoverNoOffer || s == StatusSendoverDeclined
}
