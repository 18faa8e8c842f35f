package model

import "time"

// SendoutEventLog 仅追加的审计流水：每个领域事件一行，不更新不删除
type SendoutEventLog struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SendoutID    string    `json:"sendout_id" gorm:"type:varchar(36);index:idx_eventlog_sendout;not null"`
	EventTypeID  int64     `json:"event_type_id" gorm:"index;not null"`
	EventDetails string    `json:"event_details" gorm:"type:text"`
	TriggeredBy  string    `json:"triggered_by" gorm:"type:varchar(36)"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

func (SendoutEventLog) TableName() string { return "sendout_event_logs" }

// SendoutEventType 事件类型常量
const (
	EventCreated                    int64 = 1
	EventStatusChanged              int64 = 2
	EventDeclined                   int64 = 3
	EventPlaced                     int64 = 4
	EventJobOrderAccountableEdited  int64 = 5
	EventCandidateAccountableEdited int64 = 6
	EventFeeAmountEdited            int64 = 7
	EventEmailSent                  int64 = 8
	EventRemindersScheduled         int64 = 9
	EventRemindersDeleted           int64 = 10
	EventConverted                  int64 = 11
	EventDeleted                    int64 = 12
)
