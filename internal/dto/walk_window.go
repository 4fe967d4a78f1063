package dto

// ── 遛狗时间窗模块 DTO ──

// WalkWindowListRequest 时间窗列表查询参数
type WalkWindowListRequest struct {
	WeekStart string `form:"week_start" binding:"omitempty,datetime=2006-01-02"`
}

// CreateWalkWindowRequest 创建时间窗请求
// day_of_week 0=周日 … 6=周六
type CreateWalkWindowRequest struct {
	DayOfWeek      *int    `json:"day_of_week"     binding:"required,min=0,max=6"`
	WindowStart    string  `json:"window_start"    binding:"required,hhmm"`
	WindowEnd      string  `json:"window_end"      binding:"required,hhmm"`
	EffectiveStart *string `json:"effective_start" binding:"omitempty,datetime=2006-01-02"`
	EffectiveEnd   *string `json:"effective_end"   binding:"omitempty,datetime=2006-01-02"`
}

// UpdateWalkWindowRequest 更新时间窗请求（部分更新，合并后整体重新校验）
type UpdateWalkWindowRequest struct {
	DayOfWeek      *int    `json:"day_of_week"     binding:"omitempty,min=0,max=6"`
	WindowStart    *string `json:"window_start"    binding:"omitempty,hhmm"`
	WindowEnd      *string `json:"window_end"      binding:"omitempty,hhmm"`
	EffectiveStart *string `json:"effective_start" binding:"omitempty,datetime=2006-01-02"`
	EffectiveEnd   *string `json:"effective_end"   binding:"omitempty,datetime=2006-01-02"`
}

// SeedNowRequest 立即播种请求，user_id 缺省为调用者本人
type SeedNowRequest struct {
	UserID string `json:"user_id" binding:"omitempty,uuid"`
}

// WalkWindowResponse 时间窗响应
type WalkWindowResponse struct {
	ID             string `json:"window_id"`
	UserID         string `json:"user_id"`
	DayOfWeek      int    `json:"day_of_week"`
	WindowStart    string `json:"window_start"`
	WindowEnd      string `json:"window_end"`
	EffectiveStart string `json:"effective_start,omitempty"`
	EffectiveEnd   string `json:"effective_end,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ── 待确认遛狗 ──

// PendingWalkListRequest 待确认遛狗查询参数，缺省为本周
type PendingWalkListRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// PendingWalkExportRequest 导出参数
type PendingWalkExportRequest struct {
	PendingWalkListRequest
	Format string `form:"format" binding:"omitempty,oneof=xlsx ics"`
}

// PendingWalkResponse 待确认遛狗响应
type PendingWalkResponse struct {
	ID          string `json:"pending_walk_id"`
	UserID      string `json:"user_id"`
	WindowID    string `json:"window_id,omitempty"`
	WalkDate    string `json:"walk_date"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}
