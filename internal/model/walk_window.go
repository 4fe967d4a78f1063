package model

import "time"

// ClientWalkWindow 客户每周遛狗时间窗 — 对应 client_walk_windows
// DayOfWeek 0=周日 … 6=周六；生效区间两端闭合，缺省端视为无界
type ClientWalkWindow struct {
	WindowID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"window_id"`
	UserID         string     `gorm:"type:uuid;not null"                             json:"user_id"`
	DayOfWeek      int        `gorm:"type:smallint;not null"                         json:"day_of_week"`
	WindowStart    string     `gorm:"type:time;not null"                             json:"window_start"`
	WindowEnd      string     `gorm:"type:time;not null"                             json:"window_end"`
	EffectiveStart *time.Time `gorm:"type:date"                                      json:"effective_start,omitempty"`
	EffectiveEnd   *time.Time `gorm:"type:date"                                      json:"effective_end,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ClientWalkWindow) TableName() string { return "client_walk_windows" }

// ActiveOn 判断给定日期是否落在生效区间内（按日历日比较）
func (w *ClientWalkWindow) ActiveOn(d time.Time) bool {
	day := dateKey(d)
	if w.EffectiveStart != nil && day < dateKey(*w.EffectiveStart) {
		return false
	}
	if w.EffectiveEnd != nil && day > dateKey(*w.EffectiveEnd) {
		return false
	}
	return true
}

// OverlapsRange 判断生效区间与 [from, to] 是否有交集
func (w *ClientWalkWindow) OverlapsRange(from, to time.Time) bool {
	if w.EffectiveStart != nil && dateKey(*w.EffectiveStart) > dateKey(to) {
		return false
	}
	if w.EffectiveEnd != nil && dateKey(*w.EffectiveEnd) < dateKey(from) {
		return false
	}
	return true
}

// 待确认遛狗状态
const (
	PendingWalkStatusPending = "pending"
)

// PendingWalk 待确认遛狗 — 对应 pending_walks
// (user_id, walk_date, window_start, window_end) 唯一，重复播种不会产生新行
type PendingWalk struct {
	PendingWalkID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pending_walk_id"`
	UserID        string    `gorm:"type:uuid;not null"                             json:"user_id"`
	WindowID      *string   `gorm:"type:uuid"                                      json:"window_id,omitempty"`
	WalkDate      time.Time `gorm:"type:date;not null"                             json:"walk_date"`
	WindowStart   string    `gorm:"type:time;not null"                             json:"window_start"`
	WindowEnd     string    `gorm:"type:time;not null"                             json:"window_end"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (PendingWalk) TableName() string { return "pending_walks" }

// SlotKey 唯一性键，与表上的唯一约束一致
func (p *PendingWalk) SlotKey() string {
	return p.UserID + "|" + p.WalkDate.Format(DateLayout) + "|" + p.WindowStart + "|" + p.WindowEnd
}

// dateKey 将日期折算为可比较的 YYYYMMDD 整数，忽略时区与时刻
func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
