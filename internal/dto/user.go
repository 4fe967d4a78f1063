package dto

// ── 用户模块 DTO ──

// UpdateMeRequest 更新本人资料
type UpdateMeRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
}
