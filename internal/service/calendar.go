package service

import "time"

// BoardCalendar 业务日历：sendout 计入的看板日期受截稿时间/周末/节假日影响
type BoardCalendar struct {
	cutoffHour int
	holidays   map[string]bool // YYYY-MM-DD
}

func NewBoardCalendar(cutoffHour int, holidays []string) *BoardCalendar {
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		set[h] = true
	}
	if cutoffHour <= 0 || cutoffHour > 23 {
		cutoffHour = 15
	}
	return &BoardCalendar{cutoffHour: cutoffHour, holidays: set}
}

// GetBoardDate 计算看板日期：超过截稿时间滚动到下一个工作日，落在周末/节假日继续顺延
func (c *BoardCalendar) GetBoardDate(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if t.Hour() >= c.cutoffHour {
		d = d.AddDate(0, 0, 1)
	}
	for !c.isBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// IsMonday 判断日期是否周一（周报/周看板重置用）
func (c *BoardCalendar) IsMonday(t time.Time) bool {
	return t.Weekday() == time.Monday
}

func (c *BoardCalendar) isBusinessDay(d time.Time) bool {
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	return !c.holidays[d.Format("2006-01-02")]
}
